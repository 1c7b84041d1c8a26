package lineage

import (
	"context"
	"slices"

	"github.com/matzehuels/genealogy/pkg/errors"
	"github.com/matzehuels/genealogy/pkg/history"
)

// Layout holds the ordered node sequence of every epoch and, once placed,
// their positions on a canvas.
//
// The zero value is an empty, unplaced layout. Use Order or Build.
type Layout struct {
	Canvas Canvas
	StepX  float64 // column width, Canvas.Width / epoch count

	epochs [][]*Node
	index  []map[uint64]int // per epoch: id -> rank
	placed bool
}

// Order builds the per-epoch node sequences of idx without positions.
// Nodes within an epoch are sorted by (first parent id, child id).
// An empty index yields an empty layout.
func Order(ctx context.Context, idx *history.EpochIndex) (*Layout, error) {
	n := idx.Count()
	l := &Layout{
		epochs: make([][]*Node, n),
		index:  make([]map[uint64]int, n),
	}
	for e := 0; e < n; e++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records := idx.Records(e)
		nodes := make([]*Node, len(records))
		for i, r := range records {
			nodes[i] = newNode(r)
		}
		slices.SortFunc(nodes, compareNodes)

		ids := make(map[uint64]int, len(nodes))
		for rank, node := range nodes {
			node.Rank = rank
			if _, dup := ids[node.ID]; !dup {
				ids[node.ID] = rank
			}
		}
		l.epochs[e] = nodes
		l.index[e] = ids
	}
	return l, nil
}

// Build orders idx and places it on canvas.
func Build(ctx context.Context, idx *history.EpochIndex, canvas Canvas) (*Layout, error) {
	l, err := Order(ctx, idx)
	if err != nil {
		return nil, err
	}
	if err := l.Place(ctx, canvas); err != nil {
		return nil, err
	}
	return l, nil
}

// Place assigns rank and position to every node for the given canvas.
// Positions depend only on epoch, rank, epoch size and canvas, so placing
// twice on the same canvas yields identical coordinates.
func (l *Layout) Place(ctx context.Context, canvas Canvas) error {
	if err := canvas.Validate(); err != nil {
		return err
	}
	l.placed = false
	l.Canvas = canvas
	l.StepX = 0
	if len(l.epochs) > 0 {
		l.StepX = canvas.Width / float64(len(l.epochs))
	}

	for e, nodes := range l.epochs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(nodes) == 0 {
			continue
		}
		x := l.ColumnX(e)
		stepY := canvas.Height / float64(len(nodes))
		for rank, node := range nodes {
			node.Rank = rank
			node.Position = Pt(x, stepY*(float64(rank)+0.5))
			node.placed = true
		}
	}
	l.placed = true
	return nil
}

// Placed reports whether positions have been assigned.
func (l *Layout) Placed() bool { return l != nil && l.placed }

// EpochCount returns the number of epochs.
func (l *Layout) EpochCount() int { return len(l.epochs) }

// Epoch returns the ordered nodes of epoch e, or nil if e is out of range.
// The returned slice should not be modified.
func (l *Layout) Epoch(e int) []*Node {
	if e < 0 || e >= len(l.epochs) {
		return nil
	}
	return l.epochs[e]
}

// Nodes returns every node, by ascending epoch then rank.
func (l *Layout) Nodes() []*Node {
	out := make([]*Node, 0, l.NodeCount())
	for _, nodes := range l.epochs {
		out = append(out, nodes...)
	}
	return out
}

// NodeCount returns the total number of nodes.
func (l *Layout) NodeCount() int {
	n := 0
	for _, nodes := range l.epochs {
		n += len(nodes)
	}
	return n
}

// ColumnX returns the horizontal center of epoch e's column.
func (l *Layout) ColumnX(e int) float64 { return l.StepX * (float64(e) + 0.5) }

// BoundaryX returns the x of the boundary between epochs e-1 and e.
func (l *Layout) BoundaryX(e int) float64 { return l.StepX * float64(e) }

// FindNode returns the node with the given id in epoch e. It reports
// INVALID_EPOCH when e is outside [0, EpochCount()); a missing id is not an
// error and yields (nil, false, nil).
func (l *Layout) FindNode(e int, id uint64) (*Node, bool, error) {
	if e < 0 || e >= len(l.epochs) {
		return nil, false, errors.New(errors.ErrCodeInvalidEpoch, "epoch %d out of range [0, %d)", e, len(l.epochs))
	}
	rank, ok := l.index[e][id]
	if !ok {
		return nil, false, nil
	}
	return l.epochs[e][rank], true, nil
}

// Parent resolves the first parent of n in the previous epoch. Nodes of
// epoch 0, nodes without a first parent and nodes whose parent is absent
// all resolve to (nil, false).
func (l *Layout) Parent(n *Node) (*Node, bool) {
	pid, ok := n.FirstParent()
	if !ok || n.Epoch == 0 {
		return nil, false
	}
	p, found, err := l.FindNode(n.Epoch-1, pid)
	if err != nil || !found {
		return nil, false
	}
	return p, true
}
