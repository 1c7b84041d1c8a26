// Package nodelink renders a genealogy as a classic node-link diagram.
//
// Where the lineage engine draws every epoch in its own column with curves
// back to the first parent, a node-link diagram shows the full parent graph,
// second parents included, and lets Graphviz choose the placement. It is
// handy for eyeballing small histories and for debugging loaders.
//
//	dot := nodelink.ToDOT(store, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [ToDOT] groups each epoch into a rank so Graphviz keeps generations on one
// row. Second-parent edges are dashed, and edges to parents missing from the
// history are dropped just like the lineage engine drops their curves.
//
// Rendering uses [github.com/goccy/go-graphviz], which embeds Graphviz as
// WebAssembly; no system installation is needed.
package nodelink
