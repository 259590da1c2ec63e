package importing

import (
	"cityquad/common"
	"cityquad/index"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/pkg/errors"
	"math"
	"strconv"
	"strings"
)

var WorldExtent = orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

// ParseExtent parses a geographic extent given as "minLon,minLat,maxLon,maxLat".
func ParseExtent(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, errors.Errorf("Extent '%s' must consist of four comma separated numbers", s)
	}

	var values [4]float64
	for i, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return orb.Bound{}, errors.Wrapf(err, "Unable to parse value %d of extent '%s'", i+1, s)
		}
		values[i] = value
	}

	extent := orb.Bound{Min: orb.Point{values[0], values[1]}, Max: orb.Point{values[2], values[3]}}
	if extent.Min.Lon() > extent.Max.Lon() || extent.Min.Lat() > extent.Max.Lat() {
		return orb.Bound{}, errors.Errorf("Extent '%s' has its minimum larger than its maximum", s)
	}
	return extent, nil
}

// Projection maps geographic coordinates of an extent linearly onto the integer coordinates of a region. North is at
// the top, i.e. at the minimum y coordinate of the region.
type Projection struct {
	Extent orb.Bound
	Target common.Region
}

// Project returns false for points outside the extent.
func (p Projection) Project(point orb.Point) (common.Point, bool) {
	if !p.Extent.Contains(point) {
		return common.Point{}, false
	}

	x := p.Target.Left() + scale(point.Lon()-p.Extent.Min.Lon(), p.Extent.Max.Lon()-p.Extent.Min.Lon(), p.Target.Width())
	y := p.Target.Top() + scale(p.Extent.Max.Lat()-point.Lat(), p.Extent.Max.Lat()-p.Extent.Min.Lat(), p.Target.Height())
	return common.Point{X: x, Y: y}, true
}

func scale(offset float64, extentSize float64, targetSize int) int {
	if extentSize <= 0 {
		return 0
	}
	return int(math.Floor(offset / extentSize * float64(targetSize)))
}

// LabelFromName turns an OSM name into a label: Whitespace becomes "_" and the name is cut to the maximum label length.
func LabelFromName(name string) string {
	label := []rune(strings.Join(strings.Fields(name), "_"))
	if len(label) > MaxLabelLength {
		label = label[:MaxLabelLength]
	}
	return string(label)
}

// osmCityHandler inserts all named nodes into the tree. When places are given, only nodes whose "place" tag has one of
// these values are used.
type osmCityHandler struct {
	tree       *index.QuadTree
	projection Projection
	places     map[string]bool
	stats      *Stats
}

func newOsmCityHandler(tree *index.QuadTree, extent orb.Bound, places []string, stats *Stats) *osmCityHandler {
	placeSet := map[string]bool{}
	for _, place := range places {
		placeSet[place] = true
	}

	return &osmCityHandler{
		tree:       tree,
		projection: Projection{Extent: extent, Target: tree.Bounds()},
		places:     placeSet,
		stats:      stats,
	}
}

func (h *osmCityHandler) Name() string {
	return "osmCityHandler"
}

func (h *osmCityHandler) Init() error {
	return nil
}

func (h *osmCityHandler) HandleNode(node *osm.Node) error {
	label := LabelFromName(node.Tags.Find("name"))
	if label == "" {
		return nil
	}
	if len(h.places) > 0 && !h.places[node.Tags.Find("place")] {
		return nil
	}

	h.stats.Records++

	position, ok := h.projection.Project(node.Point())
	if !ok {
		h.stats.Dropped++
		return nil
	}

	h.stats.add(h.tree.Insert(index.Entity{Position: position, Label: label}))
	return nil
}

func (h *osmCityHandler) Done() error {
	return nil
}
