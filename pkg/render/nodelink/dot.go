package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/genealogy/pkg/history"
)

// Options configures node-link diagram generation.
type Options struct {
	// Detailed adds the epoch to every node label.
	Detailed bool

	// FirstParentOnly drops second-parent edges, matching what the lineage
	// engine draws.
	FirstParentOnly bool
}

// ToDOT converts a history to Graphviz DOT source. Edges point from child to
// parent; output is deterministic for a given history.
func ToDOT(s *history.Store, opts Options) string {
	idx := s.Index()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=RL;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=12, width=0.4, fixedsize=true];\n")
	buf.WriteString("  edge [arrowsize=0.5];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.2;\n")

	for e := 0; e < idx.Count(); e++ {
		records := sortedByChild(idx.Records(e))
		if len(records) == 0 {
			continue
		}
		fmt.Fprintf(&buf, "\n  subgraph epoch_%d {\n    rank=same;\n", e)
		for _, r := range records {
			fmt.Fprintf(&buf, "    %s [%s];\n", nodeID(r.ChildID), fmtAttrs(r, opts.Detailed))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, r := range s.Sorted() {
		for i, pid := range r.Parents {
			if !edgeWanted(s, r, i, opts) {
				continue
			}
			attrs := ""
			if i == 1 {
				attrs = " [style=dashed]"
			}
			fmt.Fprintf(&buf, "  %s -> %s%s;\n", nodeID(r.ChildID), nodeID(pid), attrs)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func edgeWanted(s *history.Store, r history.BirthRecord, i int, opts Options) bool {
	if !r.HasParent(i) || r.Epoch == 0 || !s.Contains(r.Parents[i]) {
		return false
	}
	if i == 1 && (opts.FirstParentOnly || r.Parents[1] == r.Parents[0]) {
		return false
	}
	return true
}

func nodeID(id uint64) string { return "n" + strconv.FormatUint(id, 10) }

func fmtAttrs(r history.BirthRecord, detailed bool) string {
	label := strconv.FormatUint(r.ChildID, 10)
	if detailed {
		label = fmt.Sprintf("%d\\nepoch %d", r.ChildID, r.Epoch)
	}
	attrs := fmt.Sprintf("label=\"%s\"", label)
	if r.IsRoot() {
		attrs += ", fillcolor=lightgrey"
	}
	return attrs
}

func sortedByChild(records []history.BirthRecord) []history.BirthRecord {
	s, err := history.FromRecords(records)
	if err != nil {
		return records
	}
	return s.Sorted()
}

// RenderSVG lays out and renders DOT source as SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	data, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(data), nil
}

// RenderPNG lays out and renders DOT source as PNG.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a
// pixel-sized one anchored at the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
