package common

import "fmt"

type Quadrant int

// The order of the constants is the traversal order of all full-tree queries.
const (
	NorthWest Quadrant = iota
	NorthEast
	SouthWest
	SouthEast
)

var Quadrants = [4]Quadrant{NorthWest, NorthEast, SouthWest, SouthEast}

func (q Quadrant) String() string {
	switch q {
	case NorthWest:
		return "topLeft"
	case NorthEast:
		return "topRight"
	case SouthWest:
		return "botLeft"
	case SouthEast:
		return "botRight"
	}
	return fmt.Sprintf("[!UNKNOWN Quadrant %d]", int(q))
}

// QuadrantOf determines the quadrant of this region the given point is routed to. Points on the split lines belong to
// the left and top halves.
func (r Region) QuadrantOf(p Point) Quadrant {
	mid := r.Midpoint()
	if p.X <= mid.X {
		if p.Y <= mid.Y {
			return NorthWest
		}
		return SouthWest
	}
	if p.Y <= mid.Y {
		return NorthEast
	}
	return SouthEast
}

// Quadrant returns the sub-region for the given quadrant. The split line is part of both adjacent quadrants (there's no
// +1 on the east and south quadrants), so siblings overlap by one unit. Since QuadrantOf routes points on the split
// line to the west/north, the overlapping row and column of the east/south quadrants are never populated.
func (r Region) Quadrant(q Quadrant) Region {
	mid := r.Midpoint()
	switch q {
	case NorthWest:
		return Region{r.TopLeft, mid}
	case NorthEast:
		return Region{Point{mid.X, r.Top()}, Point{r.Right(), mid.Y}}
	case SouthWest:
		return Region{Point{r.Left(), mid.Y}, Point{mid.X, r.Bottom()}}
	case SouthEast:
		return Region{mid, r.BottomRight}
	}
	panic(fmt.Sprintf("Unknown quadrant %d. This is a bug.", int(q)))
}
