package index

import (
	"fmt"
	"github.com/pkg/errors"
	"strings"
)

// LeafPolicy determines when the subdivision of a region stops. Both policies differ in how many entities can be stored
// close to each other, so the results of distance queries differ as well. A tree uses exactly one policy for its whole
// lifetime.
type LeafPolicy int

const (
	// UnboundedSubdivision stores an entity in the first empty leaf on its path. An occupied leaf is split and its
	// occupant is pushed down until both entities have their own leaf. Only an entity at exactly the position of an
	// already stored one is dropped.
	UnboundedSubdivision LeafPolicy = iota

	// UnitCellTermination only stores entities in regions with a width and height of at most 1. The first entity in such
	// a unit cell stays, all later ones mapped to the same cell are dropped.
	UnitCellTermination
)

func (p LeafPolicy) String() string {
	switch p {
	case UnboundedSubdivision:
		return "unbounded"
	case UnitCellTermination:
		return "unit-cell"
	}
	return fmt.Sprintf("[!UNKNOWN LeafPolicy %d]", int(p))
}

func ParseLeafPolicy(s string) (LeafPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unbounded":
		return UnboundedSubdivision, nil
	case "unit-cell", "unitcell":
		return UnitCellTermination, nil
	}
	return UnboundedSubdivision, errors.Errorf("Unknown leaf policy '%s', expected 'unbounded' or 'unit-cell'", s)
}
