// Package sink renders a [lineage.Drawing] into output formats.
//
// Sinks only read the drawing, so one drawing can be rendered to several
// formats concurrently.
//
//   - [RenderPNG] rasterizes with github.com/gogpu/gg
//   - [RenderSVG] writes one <path> per curve
//   - [RenderJSON] serializes the drawing itself
//
// Ink colors and stroke widths come from a [Theme]. Each curve's
// [lineage.Style] tag selects the pen:
//
//	png, err := sink.RenderPNG(d, sink.WithTheme(theme))
//	svg := sink.RenderSVG(d, sink.WithNodes())
package sink
