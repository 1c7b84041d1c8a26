package lineage

import (
	"context"
	"encoding/json"

	"github.com/matzehuels/genealogy/pkg/history"
)

// PlacedNode is the serializable view of a positioned node.
type PlacedNode struct {
	ID    uint64  `json:"id"`
	Epoch int     `json:"epoch"`
	Rank  int     `json:"rank"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Root  bool    `json:"root,omitempty"`
}

// Drawing is everything a renderer needs: the canvas, node positions and
// curve descriptors. It is plain data and safe to share between goroutines
// once built.
type Drawing struct {
	Canvas     Canvas       `json:"canvas"`
	EpochCount int          `json:"epochs"`
	StepX      float64      `json:"step_x"`
	Nodes      []PlacedNode `json:"nodes"`
	Curves     []Curve      `json:"curves"`
}

// NewDrawing captures a placed layout together with its curves.
func NewDrawing(l *Layout, curves []Curve) Drawing {
	d := Drawing{
		Canvas:     l.Canvas,
		EpochCount: l.EpochCount(),
		StepX:      l.StepX,
		Nodes:      make([]PlacedNode, 0, l.NodeCount()),
		Curves:     curves,
	}
	for _, n := range l.Nodes() {
		d.Nodes = append(d.Nodes, PlacedNode{
			ID:    n.ID,
			Epoch: n.Epoch,
			Rank:  n.Rank,
			X:     n.Position.X,
			Y:     n.Position.Y,
			Root:  n.Parents == history.Orphan,
		})
	}
	if d.Curves == nil {
		d.Curves = []Curve{}
	}
	return d
}

// Draw runs the whole engine: order, place, and build curves.
func Draw(ctx context.Context, idx *history.EpochIndex, canvas Canvas, opts CurveOptions) (Drawing, error) {
	l, err := Build(ctx, idx, canvas)
	if err != nil {
		return Drawing{}, err
	}
	curves, err := BuildCurves(ctx, l, opts)
	if err != nil {
		return Drawing{}, err
	}
	return NewDrawing(l, curves), nil
}

// CountKind returns the number of curves of kind k.
func (d Drawing) CountKind(k Kind) int {
	n := 0
	for _, c := range d.Curves {
		if c.Kind == k {
			n++
		}
	}
	return n
}

// MarshalDrawing serializes d as JSON.
func MarshalDrawing(d Drawing) ([]byte, error) { return json.Marshal(d) }

// UnmarshalDrawing decodes a drawing produced by MarshalDrawing.
func UnmarshalDrawing(data []byte) (Drawing, error) {
	var d Drawing
	err := json.Unmarshal(data, &d)
	return d, err
}
