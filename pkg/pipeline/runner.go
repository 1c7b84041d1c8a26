package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/genealogy/pkg/cache"
	"github.com/matzehuels/genealogy/pkg/history"
	"github.com/matzehuels/genealogy/pkg/lineage"
	"github.com/matzehuels/genealogy/pkg/observability"
)

// Runner executes the pipeline with caching. It holds no per-run state and
// may be shared between goroutines.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the per-stage cache expiry when positive.
	TTL time.Duration
}

// NewRunner returns a runner. A nil cache disables caching; a nil keyer
// selects the DefaultKeyer.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs load → draw → render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	result := &Result{}

	start := time.Now()
	s, hit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	if err := s.Index().RequireEpochs(); err != nil {
		return nil, err
	}
	result.Store = s
	result.HistoryHash = HashHistory(s)
	result.Stats.LoadTime = time.Since(start)
	result.Stats.Records = s.Len()
	result.CacheInfo.HistoryHit = hit

	r.Logger.Info("loaded history",
		"source", opts.SourceName(),
		"records", s.Len(),
		"widest_epoch", slices.Max(s.Index().Sizes()),
		"duration", result.Stats.LoadTime)

	start = time.Now()
	d, hit, err := r.DrawWithCacheInfo(ctx, s, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Drawing = d
	result.Stats.LayoutTime = time.Since(start)
	result.Stats.Epochs = d.EpochCount
	result.Stats.Nodes = len(d.Nodes)
	result.Stats.Curves = len(d.Curves)
	result.Stats.Lineages = d.CountKind(lineage.KindLineage)
	result.CacheInfo.DrawingHit = hit

	r.Logger.Info("computed layout",
		"epochs", d.EpochCount,
		"curves", len(d.Curves),
		"lineages", result.Stats.Lineages,
		"duration", result.Stats.LayoutTime)

	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, s, d, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo loads the history. Only MongoDB histories are cached:
// files and inline text are cheaper to re-read than to look up.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (s *history.Store, hit bool, err error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	source := opts.SourceName()
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, source)
	start := time.Now()
	defer func() {
		n := 0
		if s != nil {
			n = s.Len()
		}
		hooks.OnLoadComplete(ctx, source, n, time.Since(start), err)
	}()

	if opts.Mongo == nil {
		s, err = Load(ctx, opts)
		return s, false, err
	}

	key := r.Keyer.HistoryKey(opts.Mongo.URI + "/" + source)
	if !opts.Refresh {
		if data, ok := r.get(ctx, "history", key); ok {
			if cached, derr := decodeHistory(data); derr == nil {
				return cached, true, nil
			}
		}
	}

	s, err = Load(ctx, opts)
	if err != nil {
		return nil, false, err
	}
	if data, eerr := encodeHistory(s); eerr == nil {
		r.set(ctx, "history", key, data, cache.TTLHistory)
	}
	return s, false, nil
}

// Load is LoadWithCacheInfo without the hit flag.
func (r *Runner) Load(ctx context.Context, opts Options) (*history.Store, error) {
	s, _, err := r.LoadWithCacheInfo(ctx, opts)
	return s, err
}

// DrawWithCacheInfo computes the drawing of s, consulting the cache first.
func (r *Runner) DrawWithCacheInfo(ctx context.Context, s *history.Store, opts Options) (d lineage.Drawing, hit bool, err error) {
	if err := opts.ValidateForLayout(); err != nil {
		return lineage.Drawing{}, false, err
	}
	r.applyLogger(&opts)

	key := r.drawingKey(s, opts)
	if data, ok := r.get(ctx, "drawing", key); ok {
		if cached, derr := lineage.UnmarshalDrawing(data); derr == nil {
			return cached, true, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, s.Index().Count(), s.Len())
	start := time.Now()
	d, err = Draw(ctx, s, opts)
	hooks.OnLayoutComplete(ctx, len(d.Curves), time.Since(start), err)
	if err != nil {
		return lineage.Drawing{}, false, err
	}

	if data, merr := lineage.MarshalDrawing(d); merr == nil {
		r.set(ctx, "drawing", key, data, cache.TTLDrawing)
	}
	return d, false, nil
}

// Draw is DrawWithCacheInfo without the hit flag.
func (r *Runner) Draw(ctx context.Context, s *history.Store, opts Options) (lineage.Drawing, error) {
	d, _, err := r.DrawWithCacheInfo(ctx, s, opts)
	return d, err
}

// RenderWithCacheInfo renders every requested format. hit is true only when
// all formats came from the cache; otherwise the missing ones are rendered.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, s *history.Store, d lineage.Drawing, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	base := r.artifactBase(s, d, opts)
	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(base, opts.ArtifactKeyOpts(format))
		if data, ok := r.get(ctx, "artifact", key); ok {
			artifacts[format] = data
			continue
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, missing)
	start := time.Now()
	sub := opts
	sub.Formats = missing
	rendered, err := Render(ctx, s, d, sub)
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(base, opts.ArtifactKeyOpts(format))
		r.set(ctx, "artifact", key, data, cache.TTLArtifact)
		artifacts[format] = data
	}
	return artifacts, false, nil
}

// Render is RenderWithCacheInfo without the hit flag.
func (r *Runner) Render(ctx context.Context, s *history.Store, d lineage.Drawing, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, s, d, opts)
	return artifacts, err
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) drawingKey(s *history.Store, opts Options) string {
	return r.Keyer.DrawingKey(HashHistory(s), opts.DrawingKeyOpts())
}

// artifactBase identifies the inputs shared by all formats: the history
// (for the Graphviz formats) and the drawing options.
func (r *Runner) artifactBase(s *history.Store, d lineage.Drawing, opts Options) string {
	if s != nil {
		return cache.Hash([]byte(r.drawingKey(s, opts)))
	}
	h, _ := cache.HashJSON(d)
	return h
}

func (r *Runner) get(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "err", err)
		return nil, false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, keyType)
		r.Logger.Debug("cache hit", "type", keyType)
		return data, true
	}
	observability.Cache().OnCacheMiss(ctx, keyType)
	return nil, false
}

func (r *Runner) set(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if r.TTL > 0 {
		ttl = r.TTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
