package history

import (
	"fmt"
	"math"
)

// NoParent is the sentinel parent id meaning "no parent".
const NoParent uint64 = math.MaxUint64

// MaxEpoch is the largest epoch a store accepts. The epoch index allocates one
// bucket per epoch up to the maximum, so absurd values are rejected early.
const MaxEpoch uint64 = 1 << 24

// Orphan is the parent pair of a first-generation entity.
var Orphan = [2]uint64{NoParent, NoParent}

// BirthRecord is the immutable fact that an entity was born at an epoch from
// up to two parents.
type BirthRecord struct {
	ChildID uint64    // Unique across the whole history
	Epoch   uint64    // Generation index
	Parents [2]uint64 // Parent ids, NoParent when absent
}

// HasParent reports whether parent slot i holds a real id.
func (b BirthRecord) HasParent(i int) bool {
	return i >= 0 && i < len(b.Parents) && b.Parents[i] != NoParent
}

// IsRoot reports whether the record has no parents at all.
func (b BirthRecord) IsRoot() bool {
	return !b.HasParent(0) && !b.HasParent(1)
}

// IsAsexual reports whether the entity descends from a single parent: the
// second slot is empty or repeats the first.
func (b BirthRecord) IsAsexual() bool {
	if !b.HasParent(0) {
		return false
	}
	return !b.HasParent(1) || b.Parents[1] == b.Parents[0]
}

// String formats the record as a text-format tuple.
func (b BirthRecord) String() string {
	return fmt.Sprintf("%d %d %s %s", b.ChildID, b.Epoch, formatParent(b.Parents[0]), formatParent(b.Parents[1]))
}

func formatParent(id uint64) string {
	if id == NoParent {
		return "-"
	}
	return fmt.Sprintf("%d", id)
}
