package index

import (
	"cityquad/common"
	"github.com/hauke96/sigolo/v2"
	"github.com/pkg/errors"
	"math"
)

// QuadTree is a region quadtree over a fixed bounding region storing at most one entity per leaf. It's not safe for
// concurrent use.
type QuadTree struct {
	root    *quadNode
	bounds  common.Region
	policy  LeafPolicy
	pruning bool
	size    int
}

// TraceStep is one level of the descent of a point search: the quadrant the point was routed to and its bounds. The
// bounds are recorded even when the child node for this quadrant doesn't exist.
type TraceStep struct {
	Quadrant common.Quadrant
	Region   common.Region
}

type SearchTrace struct {
	Steps []TraceStep
	// FoundIn is the region of the node holding the found entity and nil when nothing has been found.
	FoundIn *common.Region
}

type Stats struct {
	Nodes    int
	Entities int
	MaxDepth int
}

// NewQuadTree creates an empty tree. The top-left corner of the bounds must not lie right of or below the bottom-right
// corner and the width and height must fit into an int. Bounds without any area are a single unit cell. When pruning is
// enabled, the distance queries skip subtrees that can't contain any result, which doesn't change their results.
func NewQuadTree(bounds common.Region, policy LeafPolicy, pruning bool) (*QuadTree, error) {
	if !bounds.IsValid() {
		return nil, errors.Errorf("Invalid bounds %s: The top-left corner must not lie right of or below the bottom-right corner", bounds)
	}
	if !bounds.HasRepresentableSize() {
		return nil, errors.Errorf("Invalid bounds %s: The width and height must not exceed %d", bounds, math.MaxInt)
	}
	if policy != UnboundedSubdivision && policy != UnitCellTermination {
		return nil, errors.Errorf("Unsupported leaf policy %s", policy)
	}

	sigolo.Debugf("Create quadtree with bounds %s, leaf policy %s and pruning=%t", bounds, policy, pruning)

	return &QuadTree{
		root:    newQuadNode(bounds),
		bounds:  bounds,
		policy:  policy,
		pruning: pruning,
	}, nil
}

func (t *QuadTree) Bounds() common.Region { return t.bounds }

func (t *QuadTree) Policy() LeafPolicy { return t.policy }

// Len returns the number of stored entities.
func (t *QuadTree) Len() int { return t.size }

// Insert stores the entity and returns true. It returns false and leaves the tree untouched when the entity lies
// outside the bounds or when the leaf policy drops it as a duplicate.
func (t *QuadTree) Insert(entity Entity) bool {
	if !t.bounds.Contains(entity.Position) {
		sigolo.Debugf("Ignore entity %s outside of bounds %s", entity, t.bounds)
		return false
	}

	var inserted bool
	switch t.policy {
	case UnitCellTermination:
		inserted = t.root.insertUnitCell(&entity)
	default:
		inserted = t.root.insertUnbounded(&entity)
	}

	if !inserted {
		sigolo.Debugf("Drop entity %s since its position is already occupied", entity)
		return false
	}

	t.size++
	if sigolo.ShouldLogTrace() {
		sigolo.Tracef("Inserted entity %s", entity)
	}
	return true
}

// Search returns the entity at exactly the given position.
func (t *QuadTree) Search(point common.Point) (Entity, bool) {
	entity := t.search(point, nil)
	if entity == nil {
		return Entity{}, false
	}
	return *entity, true
}

// SearchWithTrace works like Search but also returns the path of quadrants the search descended through.
func (t *QuadTree) SearchWithTrace(point common.Point) (Entity, bool, SearchTrace) {
	trace := SearchTrace{}
	entity := t.search(point, &trace)
	if entity == nil {
		return Entity{}, false, trace
	}
	return *entity, true, trace
}

func (t *QuadTree) search(point common.Point, trace *SearchTrace) *Entity {
	node := t.root
	for node != nil {
		if node.entity != nil && node.entity.Position == point {
			if trace != nil {
				region := node.region
				trace.FoundIn = &region
			}
			if sigolo.ShouldLogTrace() {
				sigolo.Tracef("Found entity %s in region %s", node.entity, node.region)
			}
			return node.entity
		}

		quadrant := node.region.QuadrantOf(point)
		quadrantRegion := node.region.Quadrant(quadrant)
		if trace != nil {
			trace.Steps = append(trace.Steps, TraceStep{Quadrant: quadrant, Region: quadrantRegion})
		}
		if sigolo.ShouldLogTrace() {
			sigolo.Tracef("Searching in %s quadrant %s", quadrant, quadrantRegion)
		}

		node = node.children[quadrant]
	}

	if sigolo.ShouldLogTrace() {
		sigolo.Tracef("No entity found at %s", point)
	}
	return nil
}

// SearchNearest returns all entities with the smallest distance to the given point together with this distance. Ties
// are determined by exact floating point equality and returned in traversal order (NW, NE, SW, SE, depth-first). An
// empty tree results in no entities and a distance of +Inf.
func (t *QuadTree) SearchNearest(point common.Point) ([]Entity, float64) {
	bestDistance := math.Inf(1)
	var bestMatches []Entity

	t.root.walk(0, func(node *quadNode, _ int) bool {
		if t.pruning && node.region.DistanceTo(point) > bestDistance {
			return false
		}

		if node.entity != nil {
			distance := point.DistanceTo(node.entity.Position)
			if distance < bestDistance {
				bestDistance = distance
				bestMatches = append(bestMatches[:0], *node.entity)
			} else if distance == bestDistance {
				bestMatches = append(bestMatches, *node.entity)
			}
		}
		return true
	})

	return bestMatches, bestDistance
}

// SearchWithinRadius returns all entities with a distance of at most the given radius to the point in traversal order
// (NW, NE, SW, SE, depth-first).
func (t *QuadTree) SearchWithinRadius(point common.Point, radius float64) []Entity {
	var result []Entity

	t.root.walk(0, func(node *quadNode, _ int) bool {
		if t.pruning && node.region.DistanceTo(point) > radius {
			return false
		}

		if node.entity != nil && point.DistanceTo(node.entity.Position) <= radius {
			result = append(result, *node.entity)
		}
		return true
	})

	return result
}

// Delete removes the entity at exactly the given position and returns it. The descent follows the same routing as the
// insertion and nodes are never merged or removed. Nothing happens when there's no such entity on the routed path.
func (t *QuadTree) Delete(point common.Point) (Entity, bool) {
	node := t.root
	for node != nil {
		if node.entity != nil && node.entity.Position == point {
			deleted := *node.entity
			node.entity = nil
			t.size--
			sigolo.Debugf("Deleted entity %s", deleted)
			return deleted, true
		}
		node = node.children[node.region.QuadrantOf(point)]
	}

	sigolo.Debugf("No entity to delete at %s", point)
	return Entity{}, false
}

// Destroy releases all nodes and entities. The tree can be used afterwards and behaves like a newly created one.
func (t *QuadTree) Destroy() {
	releasedNodes := t.root.release()
	sigolo.Debugf("Released %d nodes and %d entities", releasedNodes, t.size)

	t.root = newQuadNode(t.bounds)
	t.size = 0
}

// Entities returns all stored entities in traversal order.
func (t *QuadTree) Entities() []Entity {
	var entities []Entity
	t.root.walk(0, func(node *quadNode, _ int) bool {
		if node.entity != nil {
			entities = append(entities, *node.entity)
		}
		return true
	})
	return entities
}

// Regions returns the regions of all existing nodes in traversal order.
func (t *QuadTree) Regions() []common.Region {
	var regions []common.Region
	t.root.walk(0, func(node *quadNode, _ int) bool {
		regions = append(regions, node.region)
		return true
	})
	return regions
}

func (t *QuadTree) Stats() Stats {
	stats := Stats{}
	t.root.walk(0, func(node *quadNode, depth int) bool {
		stats.Nodes++
		if node.entity != nil {
			stats.Entities++
		}
		if depth > stats.MaxDepth {
			stats.MaxDepth = depth
		}
		return true
	})
	return stats
}
