// Package lineage lays out the genealogy of an evolutionary run and turns it
// into curve descriptors for a 2-D renderer.
//
// # Overview
//
// The engine works in three stages, always in ascending epoch order:
//
//  1. [Order] turns the [history.EpochIndex] into one node sequence per epoch,
//     sorted by first parent id, then child id. Siblings end up adjacent and
//     the order never depends on input arrival order.
//  2. [Layout.Place] assigns every node a position on the canvas. Epochs are
//     columns of width W/epochCount; a node of rank r among n is centered at
//     y = (H/n)*(r+0.5) in its column.
//  3. [BuildCurves] emits one vertical separator per epoch and one cubic
//     lineage curve from each child to its resolved first parent.
//
// [Build] runs stages 1 and 2 together:
//
//	l, err := lineage.Build(ctx, store.Index(), lineage.Canvas{Width: 800, Height: 800})
//	curves, err := lineage.BuildCurves(ctx, l, lineage.CurveOptions{})
//
// # Lineage Curves
//
// A lineage curve leaves the child sideways, bends at the boundary between
// the child's and the parent's columns, and arrives at the parent:
//
//	P0 = child position
//	P1 = (boundary x, child y)
//	P2 = (boundary x, parent y)
//	P3 = parent position
//
// A child whose first parent is the sentinel, or is not present in the
// previous epoch, simply gets no curve.
//
// # Errors
//
// Misuse of the stages is reported immediately with coded errors from
// [errors]: INVALID_EPOCH for lookups outside [0, epochCount) and
// LAYOUT_NOT_COMPUTED for curve construction before positions exist.
// An empty history is valid and produces an empty layout and no curves.
//
// # Concurrency
//
// A Layout is built and read by a single goroutine. Long runs can be
// cancelled through the context, which is checked between epochs.
package lineage
