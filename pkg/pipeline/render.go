package pipeline

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/genealogy/pkg/history"
	"github.com/matzehuels/genealogy/pkg/lineage"
	"github.com/matzehuels/genealogy/pkg/render/nodelink"
	"github.com/matzehuels/genealogy/pkg/render/sink"
)

// Render produces every format in opts.Formats concurrently. The drawing
// and the store are shared read-only between the sinks. s is only needed
// for the Graphviz formats and may be nil otherwise.
func Render(ctx context.Context, s *history.Store, d lineage.Drawing, opts Options) (map[string][]byte, error) {
	if s != nil {
		s.Index()
	}
	var (
		mu        sync.Mutex
		artifacts = make(map[string][]byte, len(opts.Formats))
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		g.Go(func() error {
			data, err := RenderFormat(ctx, s, d, format, opts)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

// RenderFormat produces a single output format.
func RenderFormat(ctx context.Context, s *history.Store, d lineage.Drawing, format string, opts Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch format {
	case FormatPNG:
		return sink.RenderPNG(d, opts.renderOptions()...)
	case FormatSVG:
		return sink.RenderSVG(d, opts.renderOptions()...), nil
	case FormatJSON:
		return sink.RenderJSON(d, append(opts.renderOptions(), sink.WithIndent())...)
	case FormatDOT, FormatNodelink:
		if s == nil {
			return nil, fmt.Errorf("%s output needs the history", format)
		}
		dot := nodelink.ToDOT(s, nodelink.Options{Detailed: opts.ShowNodes})
		if format == FormatDOT {
			return []byte(dot), nil
		}
		return nodelink.RenderSVG(ctx, dot)
	default:
		return nil, ValidateFormat(format)
	}
}
