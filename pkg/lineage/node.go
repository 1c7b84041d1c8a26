package lineage

import "github.com/matzehuels/genealogy/pkg/history"

// Node is the layout entity of one birth record.
type Node struct {
	ID       uint64
	Epoch    int
	Parents  [2]uint64 // copied from the record, history.NoParent when absent
	Rank     int       // 0-based position within the epoch
	Position Point

	placed bool
}

func newNode(r history.BirthRecord) *Node {
	return &Node{ID: r.ChildID, Epoch: int(r.Epoch), Parents: r.Parents}
}

// Placed reports whether layout has assigned the node a position.
func (n *Node) Placed() bool { return n.placed }

// FirstParent returns the first parent id and whether it is set.
func (n *Node) FirstParent() (uint64, bool) {
	return n.Parents[0], n.Parents[0] != history.NoParent
}

// IsAsexual reports whether the node descends from a single parent.
func (n *Node) IsAsexual() bool {
	return history.BirthRecord{Parents: n.Parents}.IsAsexual()
}

// compareNodes orders nodes by first parent id, then child id. Child ids are
// unique, so no two distinct nodes compare equal.
func compareNodes(a, b *Node) int {
	switch {
	case a.Parents[0] < b.Parents[0]:
		return -1
	case a.Parents[0] > b.Parents[0]:
		return 1
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}
