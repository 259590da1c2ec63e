package index

import (
	"cityquad/common"
	"fmt"
)

// Entity is the payload of the tree: a labeled position.
type Entity struct {
	Position common.Point
	Label    string
}

func NewEntity(x int, y int, label string) Entity {
	return Entity{
		Position: common.Point{X: x, Y: y},
		Label:    label,
	}
}

func (e Entity) String() string {
	return fmt.Sprintf("%s %s", e.Label, e.Position)
}
