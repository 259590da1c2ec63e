package common

import (
	"fmt"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"math"
	"strconv"
	"strings"
)

type Point struct {
	X int
	Y int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// DistanceTo returns the euclidean distance between both points. Equal offsets always produce bit-identical results,
// which the nearest-neighbor search relies on for its tie detection.
func (p Point) DistanceTo(other Point) float64 {
	return euclidean(float64(p.X)-float64(other.X), float64(p.Y)-float64(other.Y))
}

func (p Point) ToOrb() orb.Point {
	return orb.Point{float64(p.X), float64(p.Y)}
}

// Region is an axis-aligned rectangle. Both corners are inclusive. The y-axis points downwards, so the top-left corner
// holds the minimum and the bottom-right corner the maximum coordinates.
type Region struct {
	TopLeft     Point
	BottomRight Point
}

func NewRegion(minX int, minY int, maxX int, maxY int) Region {
	return Region{
		TopLeft:     Point{minX, minY},
		BottomRight: Point{maxX, maxY},
	}
}

// ParseRegion parses a region given as "minX,minY,maxX,maxY". Whitespace around the numbers is ignored.
func ParseRegion(s string) (Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Region{}, errors.Errorf("Region '%s' must consist of four comma separated integers", s)
	}

	var values [4]int
	for i, part := range parts {
		value, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return Region{}, errors.Wrapf(err, "Unable to parse value %d of region '%s'", i+1, s)
		}
		values[i] = value
	}

	return NewRegion(values[0], values[1], values[2], values[3]), nil
}

func (r Region) Left() int { return r.TopLeft.X }

func (r Region) Top() int { return r.TopLeft.Y }

func (r Region) Right() int { return r.BottomRight.X }

func (r Region) Bottom() int { return r.BottomRight.Y }

func (r Region) Width() int { return r.Right() - r.Left() }

func (r Region) Height() int { return r.Bottom() - r.Top() }

// IsValid is false when the top-left corner lies right of or below the bottom-right corner.
func (r Region) IsValid() bool {
	return r.Left() <= r.Right() && r.Top() <= r.Bottom()
}

// IsUnitCell is true for regions that can't be split any further, i.e. width and height are both at most 1.
func (r Region) IsUnitCell() bool {
	return r.Width() <= 1 && r.Height() <= 1
}

func (r Region) Contains(p Point) bool {
	return p.X >= r.Left() && p.X <= r.Right() && p.Y >= r.Top() && p.Y <= r.Bottom()
}

// HasRepresentableSize is false when the width or height of a valid region doesn't fit into an int.
func (r Region) HasRepresentableSize() bool {
	return r.Width() >= 0 && r.Height() >= 0
}

// Midpoint is floor((left+right)/2) and floor((top+bottom)/2), also for negative coordinates. It's computed from the
// width and height, so the sum of both corners never has to fit into an int.
func (r Region) Midpoint() Point {
	return Point{
		r.Left() + floorDiv(r.Width(), 2),
		r.Top() + floorDiv(r.Height(), 2),
	}
}

// DistanceTo returns the distance from the given point to the closest point of this region. It's 0 for points within
// the region and never greater than Point.DistanceTo for any point within the region.
func (r Region) DistanceTo(p Point) float64 {
	return euclidean(axisDistance(p.X, r.Left(), r.Right()), axisDistance(p.Y, r.Top(), r.Bottom()))
}

func (r Region) String() string {
	return fmt.Sprintf("%s-%s", r.TopLeft, r.BottomRight)
}

func (r Region) Bound() orb.Bound {
	return orb.Bound{
		Min: r.TopLeft.ToOrb(),
		Max: r.BottomRight.ToOrb(),
	}
}

func (r Region) ToPolygon() orb.Polygon {
	topLeft := r.TopLeft.ToOrb()
	bottomRight := r.BottomRight.ToOrb()
	return orb.Polygon{
		orb.Ring{
			topLeft,
			orb.Point{bottomRight.X(), topLeft.Y()},
			bottomRight,
			orb.Point{topLeft.X(), bottomRight.Y()},
			topLeft,
		},
	}
}

func euclidean(dx float64, dy float64) float64 {
	return math.Sqrt(dx*dx + dy*dy)
}

func axisDistance(value int, min int, max int) float64 {
	if value < min {
		return float64(min) - float64(value)
	}
	if value > max {
		return float64(value) - float64(max)
	}
	return 0
}

func floorDiv(a int, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
