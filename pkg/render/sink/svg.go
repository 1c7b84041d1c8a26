package sink

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/genealogy/pkg/lineage"
)

// RenderSVG writes the drawing as a standalone SVG document. Lineage curves
// become cubic paths, separators straight ones. The scale only changes the
// document's display size; coordinates stay in canvas units.
func RenderSVG(d lineage.Drawing, opts ...Option) []byte {
	r := newRenderer(opts...)
	t := r.theme

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		d.Canvas.Width, d.Canvas.Height, d.Canvas.Width*r.scale, d.Canvas.Height*r.scale)
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", t.Background)

	renderGroup(&buf, d.Curves, lineage.KindSeparator, t)
	renderGroup(&buf, d.Curves, lineage.KindLineage, t)

	if r.showNodes && t.NodeRadius > 0 {
		fmt.Fprintf(&buf, `  <g class="nodes" fill="%s">`+"\n", t.Node)
		for _, n := range d.Nodes {
			fmt.Fprintf(&buf, `    <circle id="node-%d" cx="%.2f" cy="%.2f" r="%.2f"/>`+"\n", n.ID, n.X, n.Y, t.NodeRadius)
		}
		buf.WriteString("  </g>\n")
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderGroup(buf *bytes.Buffer, curves []lineage.Curve, kind lineage.Kind, t Theme) {
	fmt.Fprintf(buf, `  <g class="%s" fill="none">`+"\n", kind)
	for _, c := range curves {
		if c.Kind != kind || len(c.Points) < 2 {
			continue
		}
		p := t.pen(c.Style)
		fmt.Fprintf(buf, `    <path class="%s" d="%s" stroke="%s" stroke-width="%.2f"%s/>`+"\n",
			c.Style, pathData(c), p.color, p.width, dashAttr(p.dash))
	}
	buf.WriteString("  </g>\n")
}

func pathData(c lineage.Curve) string {
	pts := c.Points
	var sb strings.Builder
	fmt.Fprintf(&sb, "M%.2f,%.2f", pts[0].X, pts[0].Y)
	if c.Kind == lineage.KindLineage && len(pts) == 4 {
		fmt.Fprintf(&sb, " C%.2f,%.2f %.2f,%.2f %.2f,%.2f",
			pts[1].X, pts[1].Y, pts[2].X, pts[2].Y, pts[3].X, pts[3].Y)
		return sb.String()
	}
	for _, pt := range pts[1:] {
		fmt.Fprintf(&sb, " L%.2f,%.2f", pt.X, pt.Y)
	}
	return sb.String()
}

func dashAttr(dash []float64) string {
	if len(dash) == 0 {
		return ""
	}
	parts := make([]string, len(dash))
	for i, d := range dash {
		parts[i] = fmt.Sprintf("%g", d)
	}
	return fmt.Sprintf(` stroke-dasharray="%s"`, strings.Join(parts, " "))
}
