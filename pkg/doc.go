// Package pkg holds the libraries behind the genealogy tool.
//
// # Overview
//
// Genealogy draws the lineage of entities born across the epochs of an
// evolutionary process. Every entity has at most two parents born in the
// previous epoch; the drawing places each epoch in its own column and links
// every child to its first parent with a cubic curve.
//
//  1. [history] - birth records, the epoch index and file/MongoDB loaders
//  2. [lineage] - ordering, placement and curve construction
//  3. [render] - PNG, SVG, JSON and Graphviz output
//  4. [pipeline] - load → layout → render with caching
//  5. [api] - the pipeline over HTTP
//
// # Data Flow
//
//	births.txt / MongoDB
//	         ↓
//	    [history] Store → EpochIndex
//	         ↓
//	    [lineage] Layout → []Curve → Drawing
//	         ↓
//	    [render/sink] PNG / SVG / JSON
//
// # Quick Start
//
//	s, err := history.Import("births.txt", "")
//	if err != nil {
//	    return err
//	}
//	d, err := lineage.Draw(ctx, s.Index(), lineage.Square(800), lineage.CurveOptions{})
//	if err != nil {
//	    return err
//	}
//	png, err := sink.RenderPNG(d)
//
// Supporting packages: [cache], [config], [errors], [observability] and
// [buildinfo].
package pkg
