package pipeline

import (
	"context"

	"github.com/matzehuels/genealogy/pkg/history"
	"github.com/matzehuels/genealogy/pkg/lineage"
)

// Draw runs the layout engine on s.
func Draw(ctx context.Context, s *history.Store, opts Options) (lineage.Drawing, error) {
	return lineage.Draw(ctx, s.Index(), opts.Canvas(), opts.CurveOptions())
}
