package sink

import (
	"bytes"
	"fmt"
	"math"

	"github.com/gogpu/gg"

	"github.com/matzehuels/genealogy/pkg/lineage"
)

// RenderPNG rasterizes the drawing. Separators are drawn first so lineage
// curves stay on top.
func RenderPNG(d lineage.Drawing, opts ...Option) ([]byte, error) {
	r := newRenderer(opts...)
	w := int(math.Ceil(d.Canvas.Width * r.scale))
	h := int(math.Ceil(d.Canvas.Height * r.scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("png: empty canvas %gx%g", d.Canvas.Width, d.Canvas.Height)
	}

	dc := gg.NewContext(w, h)
	defer dc.Close()

	dc.ClearWithColor(gg.Hex(r.theme.Background))

	for _, pass := range []lineage.Kind{lineage.KindSeparator, lineage.KindLineage} {
		for _, c := range d.Curves {
			if c.Kind != pass {
				continue
			}
			if err := strokeCurve(dc, c, r.theme.pen(c.Style), r.scale); err != nil {
				return nil, fmt.Errorf("png: stroke %s curve: %w", c.Kind, err)
			}
		}
	}

	if r.showNodes && r.theme.NodeRadius > 0 {
		dc.SetHexColor(r.theme.Node)
		for _, n := range d.Nodes {
			dc.DrawCircle(n.X*r.scale, n.Y*r.scale, r.theme.NodeRadius*r.scale)
			if err := dc.Fill(); err != nil {
				return nil, fmt.Errorf("png: fill node %d: %w", n.ID, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("png: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func strokeCurve(dc *gg.Context, c lineage.Curve, p pen, scale float64) error {
	if p.width <= 0 || len(c.Points) < 2 {
		return nil
	}
	dc.SetHexColor(p.color)
	dc.SetLineWidth(p.width * scale)
	dc.SetDash(scaled(p.dash, scale)...)

	pts := c.Points
	dc.MoveTo(pts[0].X*scale, pts[0].Y*scale)
	if c.Kind == lineage.KindLineage && len(pts) == 4 {
		dc.CubicTo(
			pts[1].X*scale, pts[1].Y*scale,
			pts[2].X*scale, pts[2].Y*scale,
			pts[3].X*scale, pts[3].Y*scale,
		)
	} else {
		for _, pt := range pts[1:] {
			dc.LineTo(pt.X*scale, pt.Y*scale)
		}
	}
	return dc.Stroke()
}

func scaled(v []float64, s float64) []float64 {
	if len(v) == 0 {
		return nil
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x * s
	}
	return out
}
