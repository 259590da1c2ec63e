package index

import (
	"cityquad/common"
	"cityquad/util"
	"github.com/hauke96/sigolo/v2"
	"math"
	"testing"
)

var policies = []LeafPolicy{UnboundedSubdivision, UnitCellTermination}

func newTestTree(t *testing.T, policy LeafPolicy) *QuadTree {
	tree, err := NewQuadTree(common.NewRegion(0, 0, 128, 128), policy, true)
	util.AssertNil(t, err)
	return tree
}

func labels(entities []Entity) []string {
	result := []string{}
	for _, entity := range entities {
		result = append(result, entity.Label)
	}
	return result
}

func TestNewQuadTree_invalidBounds(t *testing.T) {
	// Act
	tree, err := NewQuadTree(common.NewRegion(1, 0, 0, 5), UnboundedSubdivision, true)

	// Assert
	util.AssertNil(t, tree)
	util.AssertError(t, "Invalid bounds (1, 0)-(0, 5): The top-left corner must not lie right of or below the bottom-right corner", err)
}

func TestNewQuadTree_boundsTooLarge(t *testing.T) {
	// Act
	tree, err := NewQuadTree(common.NewRegion(math.MinInt, 0, math.MaxInt, 0), UnitCellTermination, true)

	// Assert
	util.AssertNil(t, tree)
	util.AssertNotNil(t, err)
	util.AssertContains(t, "The width and height must not exceed", err.Error())
}

func TestQuadTree_boundsAtIntegerLimits(t *testing.T) {
	for _, policy := range policies {
		// Arrange
		tree, err := NewQuadTree(common.NewRegion(math.MaxInt-4000, math.MinInt, math.MaxInt, math.MinInt+4000), policy, true)
		util.AssertNil(t, err)

		// Act
		insertedA := tree.Insert(NewEntity(math.MaxInt-3000, math.MinInt+5, "a"))
		insertedB := tree.Insert(NewEntity(math.MaxInt-1000, math.MinInt+5, "b"))
		insertedC := tree.Insert(NewEntity(math.MaxInt, math.MinInt+4000, "c"))

		// Assert
		util.AssertTrue(t, insertedA)
		util.AssertTrue(t, insertedB)
		util.AssertTrue(t, insertedC)
		util.AssertEqual(t, 3, tree.Len())
		for _, region := range tree.Regions() {
			util.AssertTrue(t, region.IsValid())
			util.AssertTrue(t, tree.Bounds().Contains(region.TopLeft))
			util.AssertTrue(t, tree.Bounds().Contains(region.BottomRight))
		}

		entity, found := tree.Search(common.Point{X: math.MaxInt, Y: math.MinInt + 4000})
		util.AssertTrue(t, found)
		util.AssertEqual(t, "c", entity.Label)
	}
}

func TestNewQuadTree_unknownPolicy(t *testing.T) {
	// Act
	tree, err := NewQuadTree(common.NewRegion(0, 0, 1, 1), LeafPolicy(5), true)

	// Assert
	util.AssertNil(t, tree)
	util.AssertNotNil(t, err)
}

func TestQuadTree_scenarioFromCityExample(t *testing.T) {
	for _, policy := range policies {
		// Arrange
		sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)
		tree := newTestTree(t, policy)

		util.AssertTrue(t, tree.Insert(NewEntity(10, 10, "A")))
		util.AssertFalse(t, tree.Insert(NewEntity(10, 10, "B")))
		util.AssertTrue(t, tree.Insert(NewEntity(120, 120, "C")))

		// Act
		nearest, distance := tree.SearchNearest(common.Point{X: 0, Y: 0})
		withinRadius := tree.SearchWithinRadius(common.Point{X: 0, Y: 0}, 15)

		// Assert
		util.AssertEqual(t, 2, tree.Len())
		util.AssertApprox(t, 14.142135, distance, 0.000001)
		util.AssertEqual(t, []string{"A"}, labels(nearest))
		util.AssertEqual(t, []string{"A"}, labels(withinRadius))
	}
}

func TestQuadTree_insertOutOfBounds(t *testing.T) {
	for _, policy := range policies {
		// Arrange
		tree := newTestTree(t, policy)

		// Act & Assert
		util.AssertFalse(t, tree.Insert(NewEntity(-1, 10, "west")))
		util.AssertFalse(t, tree.Insert(NewEntity(10, 129, "south")))
		util.AssertTrue(t, tree.Insert(NewEntity(128, 128, "corner")))

		util.AssertEqual(t, 1, tree.Len())
		util.AssertEqual(t, []string{"corner"}, labels(tree.Entities()))
		util.AssertEqual(t, []string{"corner"}, labels(tree.SearchWithinRadius(common.Point{X: 0, Y: 0}, 1000)))

		_, found := tree.Search(common.Point{X: -1, Y: 10})
		util.AssertFalse(t, found)
	}
}

func TestQuadTree_unboundedPushesOccupantDown(t *testing.T) {
	// Arrange
	tree := newTestTree(t, UnboundedSubdivision)

	// Act
	tree.Insert(NewEntity(10, 10, "A"))
	util.AssertEqual(t, "A", tree.root.entity.Label)
	util.AssertFalse(t, tree.root.hasChildren())

	tree.Insert(NewEntity(100, 10, "B"))

	// Assert
	util.AssertNil(t, tree.root.entity)
	util.AssertEqual(t, "A", tree.root.children[common.NorthWest].entity.Label)
	util.AssertEqual(t, "B", tree.root.children[common.NorthEast].entity.Label)
	util.AssertNil(t, tree.root.children[common.SouthWest])
	util.AssertNil(t, tree.root.children[common.SouthEast])
	util.AssertEqual(t, common.NewRegion(0, 0, 64, 64), tree.root.children[common.NorthWest].region)
	util.AssertEqual(t, common.NewRegion(64, 0, 128, 64), tree.root.children[common.NorthEast].region)
}

func TestQuadTree_unboundedSplitsUntilEntitiesSeparate(t *testing.T) {
	// Arrange
	tree := newTestTree(t, UnboundedSubdivision)

	// Act
	util.AssertTrue(t, tree.Insert(NewEntity(0, 0, "A")))
	util.AssertTrue(t, tree.Insert(NewEntity(1, 1, "B")))

	// Assert
	_, foundA := tree.Search(common.Point{X: 0, Y: 0})
	_, foundB := tree.Search(common.Point{X: 1, Y: 1})
	util.AssertTrue(t, foundA)
	util.AssertTrue(t, foundB)

	stats := tree.Stats()
	util.AssertEqual(t, 2, stats.Entities)
	// 128 -> 64 -> 32 -> 16 -> 8 -> 4 -> 2 -> 1 -> 0
	util.AssertEqual(t, 8, stats.MaxDepth)
}

func TestQuadTree_unitCellDropsSecondEntityInSameCell(t *testing.T) {
	// Arrange
	tree, err := NewQuadTree(common.NewRegion(0, 0, 16, 16), UnitCellTermination, true)
	util.AssertNil(t, err)

	// Act & Assert
	util.AssertTrue(t, tree.Insert(NewEntity(0, 0, "first")))
	util.AssertFalse(t, tree.Insert(NewEntity(1, 1, "second")))
	util.AssertFalse(t, tree.Insert(NewEntity(1, 0, "third")))

	util.AssertEqual(t, 1, tree.Len())
	_, found := tree.Search(common.Point{X: 1, Y: 1})
	util.AssertFalse(t, found)
}

func TestQuadTree_unboundedKeepsEntitiesOfSameUnitCell(t *testing.T) {
	// Arrange
	tree, err := NewQuadTree(common.NewRegion(0, 0, 16, 16), UnboundedSubdivision, true)
	util.AssertNil(t, err)

	// Act
	util.AssertTrue(t, tree.Insert(NewEntity(0, 0, "first")))
	util.AssertTrue(t, tree.Insert(NewEntity(1, 1, "second")))
	util.AssertTrue(t, tree.Insert(NewEntity(1, 0, "third")))
	util.AssertTrue(t, tree.Insert(NewEntity(0, 1, "fourth")))

	// Assert
	util.AssertEqual(t, 4, tree.Len())
	for _, p := range []common.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 1}} {
		_, found := tree.Search(p)
		util.AssertTrue(t, found)
	}
}

func TestQuadTree_unitCellStoresEntitiesOnlyInUnitCells(t *testing.T) {
	// Arrange
	tree := newTestTree(t, UnitCellTermination)

	// Act
	tree.Insert(NewEntity(10, 10, "A"))
	tree.Insert(NewEntity(100, 70, "B"))
	tree.Insert(NewEntity(64, 64, "C"))

	// Assert
	tree.root.walk(0, func(node *quadNode, _ int) bool {
		if node.entity != nil {
			util.AssertTrue(t, node.region.IsUnitCell())
			util.AssertFalse(t, node.hasChildren())
		}
		return true
	})
	util.AssertEqual(t, 3, tree.Stats().Entities)
}

func TestQuadTree_zeroAreaBoundsAreSingleCell(t *testing.T) {
	for _, policy := range policies {
		// Arrange
		tree, err := NewQuadTree(common.NewRegion(5, 5, 5, 5), policy, true)
		util.AssertNil(t, err)

		// Act & Assert
		util.AssertTrue(t, tree.Insert(NewEntity(5, 5, "only")))
		util.AssertFalse(t, tree.Insert(NewEntity(5, 5, "again")))
		util.AssertFalse(t, tree.Insert(NewEntity(6, 5, "outside")))

		entity, found := tree.Search(common.Point{X: 5, Y: 5})
		util.AssertTrue(t, found)
		util.AssertEqual(t, "only", entity.Label)
		util.AssertEqual(t, 1, tree.Stats().Nodes)
	}
}

func TestQuadTree_negativeCoordinates(t *testing.T) {
	for _, policy := range policies {
		// Arrange
		tree, err := NewQuadTree(common.NewRegion(-50, -50, 50, 50), policy, true)
		util.AssertNil(t, err)

		points := []common.Point{{X: -50, Y: -50}, {X: -1, Y: -1}, {X: 0, Y: 0}, {X: -3, Y: 7}, {X: 49, Y: -21}, {X: 50, Y: 50}}

		// Act
		for i, p := range points {
			util.AssertTrue(t, tree.Insert(NewEntity(p.X, p.Y, string(rune('a'+i)))))
		}

		// Assert
		for _, p := range points {
			_, found := tree.Search(p)
			util.AssertTrue(t, found)
		}
	}
}

func TestQuadTree_searchWithTrace(t *testing.T) {
	// Arrange
	sigolo.SetDefaultLogLevel(sigolo.LOG_TRACE)
	tree, err := NewQuadTree(common.NewRegion(0, 0, 16, 16), UnitCellTermination, true)
	util.AssertNil(t, err)
	tree.Insert(NewEntity(1, 1, "A"))

	// Act
	entity, found, trace := tree.SearchWithTrace(common.Point{X: 1, Y: 1})

	// Assert
	util.AssertTrue(t, found)
	util.AssertEqual(t, "A", entity.Label)
	util.AssertEqual(t, []TraceStep{
		{Quadrant: common.NorthWest, Region: common.NewRegion(0, 0, 8, 8)},
		{Quadrant: common.NorthWest, Region: common.NewRegion(0, 0, 4, 4)},
		{Quadrant: common.NorthWest, Region: common.NewRegion(0, 0, 2, 2)},
		{Quadrant: common.NorthWest, Region: common.NewRegion(0, 0, 1, 1)},
	}, trace.Steps)
	util.AssertNotNil(t, trace.FoundIn)
	util.AssertEqual(t, common.NewRegion(0, 0, 1, 1), *trace.FoundIn)
}

func TestQuadTree_searchWithTraceStopsAtMissingChild(t *testing.T) {
	// Arrange
	tree, err := NewQuadTree(common.NewRegion(0, 0, 16, 16), UnitCellTermination, true)
	util.AssertNil(t, err)
	tree.Insert(NewEntity(1, 1, "A"))

	// Act
	_, found, trace := tree.SearchWithTrace(common.Point{X: 12, Y: 3})

	// Assert
	util.AssertFalse(t, found)
	util.AssertNil(t, trace.FoundIn)
	util.AssertEqual(t, []TraceStep{
		{Quadrant: common.NorthEast, Region: common.NewRegion(8, 0, 16, 8)},
	}, trace.Steps)
}

func TestQuadTree_pointOnSplitLineIsRoutedWestAndNorth(t *testing.T) {
	for _, policy := range policies {
		// Arrange
		tree := newTestTree(t, policy)
		tree.Insert(NewEntity(1, 1, "anchor"))

		// Act
		util.AssertTrue(t, tree.Insert(NewEntity(64, 64, "mid")))

		// Assert
		_, found, trace := tree.SearchWithTrace(common.Point{X: 64, Y: 64})
		util.AssertTrue(t, found)
		util.AssertEqual(t, common.NorthWest, trace.Steps[0].Quadrant)
		util.AssertNil(t, tree.root.children[common.SouthEast])
	}
}

func TestQuadTree_delete(t *testing.T) {
	for _, policy := range policies {
		// Arrange
		tree := newTestTree(t, policy)
		tree.Insert(NewEntity(10, 10, "A"))
		tree.Insert(NewEntity(120, 120, "C"))
		statsBefore := tree.Stats()

		// Act
		deleted, ok := tree.Delete(common.Point{X: 10, Y: 10})

		// Assert
		util.AssertTrue(t, ok)
		util.AssertEqual(t, "A", deleted.Label)
		util.AssertEqual(t, 1, tree.Len())
		_, found := tree.Search(common.Point{X: 10, Y: 10})
		util.AssertFalse(t, found)

		// Nodes are kept
		util.AssertEqual(t, statsBefore.Nodes, tree.Stats().Nodes)

		nearest, distance := tree.SearchNearest(common.Point{X: 0, Y: 0})
		util.AssertEqual(t, []string{"C"}, labels(nearest))
		util.AssertApprox(t, 169.705627, distance, 0.000001)
	}
}

func TestQuadTree_deleteTwiceIsNoOp(t *testing.T) {
	for _, policy := range policies {
		// Arrange
		tree := newTestTree(t, policy)
		tree.Insert(NewEntity(10, 10, "A"))
		tree.Insert(NewEntity(20, 10, "B"))
		tree.Delete(common.Point{X: 10, Y: 10})
		entitiesAfterFirstDelete := tree.Entities()

		// Act
		_, ok := tree.Delete(common.Point{X: 10, Y: 10})

		// Assert
		util.AssertFalse(t, ok)
		util.AssertEqual(t, 1, tree.Len())
		util.AssertEqual(t, entitiesAfterFirstDelete, tree.Entities())
	}
}

func TestQuadTree_deleteUnknownPoint(t *testing.T) {
	// Arrange
	tree := newTestTree(t, UnboundedSubdivision)
	tree.Insert(NewEntity(10, 10, "A"))

	// Act
	_, ok := tree.Delete(common.Point{X: 11, Y: 10})
	_, okOutside := tree.Delete(common.Point{X: 500, Y: 500})

	// Assert
	util.AssertFalse(t, ok)
	util.AssertFalse(t, okOutside)
	util.AssertEqual(t, 1, tree.Len())
}

func TestQuadTree_insertIntoDeletedSlot(t *testing.T) {
	for _, policy := range policies {
		// Arrange
		tree := newTestTree(t, policy)
		tree.Insert(NewEntity(10, 10, "A"))
		tree.Insert(NewEntity(120, 120, "C"))
		tree.Delete(common.Point{X: 10, Y: 10})

		// Act
		inserted := tree.Insert(NewEntity(10, 10, "B"))

		// Assert
		util.AssertTrue(t, inserted)
		entity, found := tree.Search(common.Point{X: 10, Y: 10})
		util.AssertTrue(t, found)
		util.AssertEqual(t, "B", entity.Label)
	}
}

func TestQuadTree_searchNearestTiesInTraversalOrder(t *testing.T) {
	for _, policy := range policies {
		// Arrange
		tree, err := NewQuadTree(common.NewRegion(0, 0, 16, 16), policy, true)
		util.AssertNil(t, err)
		tree.Insert(NewEntity(12, 8, "east"))
		tree.Insert(NewEntity(4, 8, "west"))
		tree.Insert(NewEntity(8, 12, "south"))
		tree.Insert(NewEntity(8, 4, "north"))
		tree.Insert(NewEntity(15, 15, "far"))

		// Act
		nearest, distance := tree.SearchNearest(common.Point{X: 8, Y: 8})

		// Assert
		util.AssertEqual(t, 4.0, distance)
		util.AssertEqual(t, []string{"north", "west", "east", "south"}, labels(nearest))
	}
}

func TestQuadTree_searchNearestOnEmptyTree(t *testing.T) {
	// Arrange
	tree := newTestTree(t, UnboundedSubdivision)

	// Act
	nearest, distance := tree.SearchNearest(common.Point{X: 3, Y: 3})

	// Assert
	util.AssertEqual(t, 0, len(nearest))
	util.AssertTrue(t, math.IsInf(distance, 1))
}

func TestQuadTree_searchWithinRadiusIsInclusive(t *testing.T) {
	// Arrange
	tree := newTestTree(t, UnboundedSubdivision)
	tree.Insert(NewEntity(3, 4, "border"))
	tree.Insert(NewEntity(4, 4, "outside"))
	tree.Insert(NewEntity(0, 0, "center"))

	// Act
	result := tree.SearchWithinRadius(common.Point{X: 0, Y: 0}, 5)

	// Assert
	util.AssertEqual(t, []string{"center", "border"}, labels(result))
	util.AssertEqual(t, 0, len(tree.SearchWithinRadius(common.Point{X: 0, Y: 0}, -1)))
	util.AssertEqual(t, 0, len(tree.SearchWithinRadius(common.Point{X: 0, Y: 0}, math.NaN())))
}

func TestQuadTree_destroy(t *testing.T) {
	for _, policy := range policies {
		// Arrange
		tree := newTestTree(t, policy)
		tree.Insert(NewEntity(10, 10, "A"))
		tree.Insert(NewEntity(90, 10, "B"))
		tree.Insert(NewEntity(90, 90, "C"))
		oldRoot := tree.root
		oldChild := oldRoot.children[common.NorthEast]

		// Act
		tree.Destroy()

		// Assert
		util.AssertEqual(t, 0, tree.Len())
		util.AssertEqual(t, 0, len(tree.Entities()))
		util.AssertEqual(t, Stats{Nodes: 1, Entities: 0, MaxDepth: 0}, tree.Stats())
		util.AssertFalse(t, oldRoot.hasChildren())
		util.AssertNil(t, oldChild.entity)

		// Still usable
		util.AssertTrue(t, tree.Insert(NewEntity(10, 10, "A")))
		util.AssertEqual(t, 1, tree.Len())
	}
}

func TestQuadTree_destroyPartialTree(t *testing.T) {
	// Arrange
	tree := newTestTree(t, UnboundedSubdivision)
	tree.Insert(NewEntity(100, 100, "A"))
	tree.Insert(NewEntity(120, 120, "B"))
	util.AssertNil(t, tree.root.children[common.NorthWest])

	// Act
	tree.Destroy()

	// Assert
	util.AssertEqual(t, 0, tree.Len())
}

func TestQuadTree_regions(t *testing.T) {
	// Arrange
	tree, err := NewQuadTree(common.NewRegion(0, 0, 16, 16), UnboundedSubdivision, true)
	util.AssertNil(t, err)
	tree.Insert(NewEntity(1, 1, "A"))
	tree.Insert(NewEntity(12, 12, "B"))

	// Act
	regions := tree.Regions()

	// Assert
	util.AssertEqual(t, []common.Region{
		common.NewRegion(0, 0, 16, 16),
		common.NewRegion(0, 0, 8, 8),
		common.NewRegion(8, 8, 16, 16),
	}, regions)
}
