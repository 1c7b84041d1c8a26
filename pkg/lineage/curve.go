package lineage

import (
	"context"
	"fmt"

	"github.com/matzehuels/genealogy/pkg/errors"
)

// DefaultInset is the fraction of the canvas height kept free above and
// below separator curves.
const DefaultInset = 0.02

// Kind tags what a curve depicts.
type Kind int

const (
	// KindSeparator is a straight vertical guide through an epoch's column.
	KindSeparator Kind = iota
	// KindLineage is a cubic curve from a child to its first parent.
	KindLineage
)

var kindNames = map[Kind]string{
	KindSeparator: "separator",
	KindLineage:   "lineage",
}

// String returns the kind name.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	s, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown curve kind %d", int(k))
	}
	return []byte(s), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	for kind, name := range kindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown curve kind %q", b)
}

// Style tags pick the ink a renderer uses for a curve.
type Style string

const (
	StyleSeparator      Style = "separator"
	StyleLineage        Style = "lineage"         // child of two parents
	StyleLineageAsexual Style = "lineage-asexual" // child of a single parent
)

// Curve is a geometric descriptor handed to a renderer. Separators have two
// control points, lineage curves four (a cubic Bézier). Curves carry ids as
// plain values and hold no references into the layout.
type Curve struct {
	Kind   Kind    `json:"kind"`
	Style  Style   `json:"style"`
	Points []Point `json:"points"`
	Epoch  int     `json:"epoch"`
	Child  uint64  `json:"child,omitempty"`
	Parent uint64  `json:"parent,omitempty"`
}

// CurveOptions configures BuildCurves.
type CurveOptions struct {
	// Inset is the fraction of the height left free at the top and bottom of
	// separators. Zero means DefaultInset; values are clamped to [0, 0.5).
	Inset float64

	SkipSeparators bool
	SkipLineage    bool
}

func (o CurveOptions) inset() float64 {
	switch {
	case o.Inset == 0:
		return DefaultInset
	case o.Inset < 0:
		return 0
	case o.Inset >= 0.5:
		return 0.49
	}
	return o.Inset
}

// BuildCurves produces the separator curves of every epoch followed by the
// lineage curves of every resolvable child, in ascending epoch order. The
// order is a convenience, not a guarantee callers should rely on.
//
// It fails with LAYOUT_NOT_COMPUTED if l has not been placed.
func BuildCurves(ctx context.Context, l *Layout, opts CurveOptions) ([]Curve, error) {
	if !l.Placed() {
		return nil, errors.New(errors.ErrCodeLayoutNotComputed, "curves requested before layout positions were assigned")
	}

	var curves []Curve
	if !opts.SkipSeparators {
		curves = append(curves, separators(l, opts.inset())...)
	}
	if opts.SkipLineage {
		return curves, nil
	}

	for e := 1; e < l.EpochCount(); e++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, child := range l.Epoch(e) {
			c, ok, err := lineageCurve(l, child)
			if err != nil {
				return nil, err
			}
			if ok {
				curves = append(curves, c)
			}
		}
	}
	return curves, nil
}

func separators(l *Layout, inset float64) []Curve {
	top := l.Canvas.Height * inset
	bottom := l.Canvas.Height * (1 - inset)
	out := make([]Curve, 0, l.EpochCount())
	for e := 0; e < l.EpochCount(); e++ {
		x := l.ColumnX(e)
		out = append(out, Curve{
			Kind:   KindSeparator,
			Style:  StyleSeparator,
			Points: []Point{Pt(x, top), Pt(x, bottom)},
			Epoch:  e,
		})
	}
	return out
}

// lineageCurve routes child -> boundary at child height -> boundary at
// parent height -> parent.
func lineageCurve(l *Layout, child *Node) (Curve, bool, error) {
	if !child.Placed() {
		return Curve{}, false, errors.New(errors.ErrCodeLayoutNotComputed, "node %d has no position", child.ID)
	}
	parent, ok := l.Parent(child)
	if !ok {
		return Curve{}, false, nil
	}
	if !parent.Placed() {
		return Curve{}, false, errors.New(errors.ErrCodeLayoutNotComputed, "node %d has no position", parent.ID)
	}

	bx := l.BoundaryX(child.Epoch)
	style := StyleLineage
	if child.IsAsexual() {
		style = StyleLineageAsexual
	}
	return Curve{
		Kind:  KindLineage,
		Style: style,
		Points: []Point{
			child.Position,
			Pt(bx, child.Position.Y),
			Pt(bx, parent.Position.Y),
			parent.Position,
		},
		Epoch:  child.Epoch,
		Child:  child.ID,
		Parent: parent.ID,
	}, true, nil
}
