package index

import (
	"cityquad/common"
	"cityquad/util"
)

// quadNode is either an inner node with up to four children or a leaf holding at most one entity. Absent children are
// nil, which means the area is empty and has never been explored.
type quadNode struct {
	region   common.Region
	entity   *Entity
	children [4]*quadNode
}

func newQuadNode(region common.Region) *quadNode {
	return &quadNode{region: region}
}

func (n *quadNode) hasChildren() bool {
	for _, child := range n.children {
		if child != nil {
			return true
		}
	}
	return false
}

func (n *quadNode) getOrCreateChild(quadrant common.Quadrant) *quadNode {
	if n.children[quadrant] == nil {
		n.children[quadrant] = newQuadNode(n.region.Quadrant(quadrant))
	}
	return n.children[quadrant]
}

func (n *quadNode) insertUnbounded(entity *Entity) bool {
	if n.entity == nil && !n.hasChildren() {
		n.entity = entity
		return true
	}

	if n.entity != nil {
		if n.entity.Position == entity.Position {
			return false
		}

		// Push the occupant down so that only leaves hold entities.
		occupant := n.entity
		n.entity = nil
		if !n.getOrCreateChild(n.region.QuadrantOf(occupant.Position)).insertUnbounded(occupant) {
			util.LogFatalBug("Unable to push entity %s down into a child of region %s", occupant, n.region)
		}
	}

	return n.getOrCreateChild(n.region.QuadrantOf(entity.Position)).insertUnbounded(entity)
}

func (n *quadNode) insertUnitCell(entity *Entity) bool {
	if n.region.IsUnitCell() {
		if n.entity != nil {
			return false
		}
		n.entity = entity
		return true
	}

	return n.getOrCreateChild(n.region.QuadrantOf(entity.Position)).insertUnitCell(entity)
}

// walk visits this node and all its descendants depth-first in the order NW, NE, SW, SE. The children of a node are
// skipped when visit returns false for it.
func (n *quadNode) walk(depth int, visit func(node *quadNode, depth int) bool) {
	if !visit(n, depth) {
		return
	}
	for _, child := range n.children {
		if child != nil {
			child.walk(depth+1, visit)
		}
	}
}

// release detaches all children and the entity, children first, and returns the number of released nodes.
func (n *quadNode) release() int {
	released := 0
	for i, child := range n.children {
		if child != nil {
			released += child.release()
			n.children[i] = nil
		}
	}
	n.entity = nil
	return released + 1
}
