// Package render groups the output backends of a lineage drawing.
//
//   - [sink]: PNG, SVG and JSON renderings of a [lineage.Drawing]
//   - [nodelink]: the child → parent graph as Graphviz DOT or SVG
//
// The sinks draw exactly the curves the engine produced. The node-link view
// is computed from the history instead, so it also shows second parents.
package render
