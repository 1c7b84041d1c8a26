package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/genealogy/pkg/cache"
	"github.com/matzehuels/genealogy/pkg/config"
	"github.com/matzehuels/genealogy/pkg/errors"
	"github.com/matzehuels/genealogy/pkg/history"
	"github.com/matzehuels/genealogy/pkg/history/mongostore"
	"github.com/matzehuels/genealogy/pkg/lineage"
)

const sample = `# two founders, three children
0 0 - -
1 0 - -
2 1 0 -
3 1 1 0
4 1 7 -
`

// memCache counts sets so tests can see what the runner wrote.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"png", false},
		{"svg", false},
		{"json", false},
		{"dot", false},
		{"nodelink", false},
		{"pdf", true},
		{"PNG", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"png", []string{"png"}},
		{"png, SVG ,png,,json", []string{"png", "svg", "json"}},
	}
	for _, tt := range tests {
		got := ParseFormats(tt.in)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("ParseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{History: sample}
	if err := opts.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("canvas = %gx%g", opts.Width, opts.Height)
	}
	if opts.Inset != lineage.DefaultInset || opts.Scale != DefaultScale {
		t.Errorf("inset = %g, scale = %g", opts.Inset, opts.Scale)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatPNG {
		t.Errorf("formats = %v", opts.Formats)
	}
	if opts.Theme == nil || opts.Logger == nil {
		t.Error("theme and logger should be defaulted")
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no source", Options{}, errors.ErrCodeInvalidInput},
		{"bad history format", Options{History: sample, HistoryFormat: "csv"}, errors.ErrCodeInvalidFormat},
		{"bad mongo", Options{Mongo: &mongostore.Config{}}, errors.ErrCodeInvalidInput},
		{"negative width", Options{History: sample, Width: -1}, errors.ErrCodeInvalidInput},
		{"huge inset", Options{History: sample, Inset: 0.7}, errors.ErrCodeInvalidInput},
		{"bad format", Options{History: sample, Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if !errors.Is(err, tt.code) {
				t.Errorf("Validate() = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Canvas.Width = 1200
	cfg.Style.Lineage = "#ff0000"
	cfg.Style.ShowNodes = true

	opts := FromConfig(cfg)
	if opts.Width != 1200 || opts.Height != config.DefaultSize {
		t.Errorf("canvas = %gx%g", opts.Width, opts.Height)
	}
	if opts.Theme.Lineage != "#ff0000" || !opts.ShowNodes {
		t.Errorf("theme = %+v, show nodes = %v", opts.Theme, opts.ShowNodes)
	}
}

func TestSniffFormat(t *testing.T) {
	tests := map[string]string{
		"0 0 - -":                  history.FormatText,
		`  {"births": []}`:         history.FormatJSON,
		"births:\n  - child: 0":    history.FormatYAML,
		"---\nbirths: []":          history.FormatYAML,
		"# comment\n0,0,none,none": history.FormatText,
	}
	for in, want := range tests {
		if got := sniffFormat(in); got != want {
			t.Errorf("sniffFormat(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHashHistoryIgnoresOrder(t *testing.T) {
	a, _ := history.ReadText(strings.NewReader("0 0 - -\n1 1 0 -\n"))
	b, _ := history.ReadText(strings.NewReader("1 1 0 -\n0 0 - -\n"))
	c, _ := history.ReadText(strings.NewReader("0 0 - -\n1 1 0 0\n"))
	if HashHistory(a) != HashHistory(b) {
		t.Error("record order changed the hash")
	}
	if HashHistory(a) == HashHistory(c) {
		t.Error("different parents produced the same hash")
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	result, err := r.Execute(context.Background(), Options{
		History: sample,
		Width:   200,
		Height:  100,
		Formats: []string{FormatPNG, FormatSVG, FormatJSON, FormatDOT},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Stats.Records != 5 || result.Stats.Epochs != 2 || result.Stats.Nodes != 5 {
		t.Errorf("stats = %+v", result.Stats)
	}
	// 2 separators, lineage for children 2 and 3; child 4's parent is unknown.
	if result.Stats.Lineages != 2 || result.Stats.Curves != 4 {
		t.Errorf("curves = %d lineage, %d total", result.Stats.Lineages, result.Stats.Curves)
	}
	if len(result.Artifacts) != 4 {
		t.Fatalf("got %d artifacts", len(result.Artifacts))
	}

	img, err := png.Decode(bytes.NewReader(result.Artifacts[FormatPNG]))
	if err != nil {
		t.Fatalf("png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Errorf("png size = %dx%d", b.Dx(), b.Dy())
	}
	if !bytes.HasPrefix(result.Artifacts[FormatSVG], []byte("<svg")) {
		t.Error("svg artifact is not svg")
	}
	var decoded map[string]any
	if err := json.Unmarshal(result.Artifacts[FormatJSON], &decoded); err != nil {
		t.Errorf("json artifact: %v", err)
	}
	if !strings.Contains(string(result.Artifacts[FormatDOT]), "n3 -> n1;") {
		t.Errorf("dot artifact:\n%s", result.Artifacts[FormatDOT])
	}
}

func TestExecuteEmptyHistory(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{History: "# nothing here\n"})
	if !errors.Is(err, errors.ErrCodeEmptyHistory) {
		t.Errorf("error = %v, want EMPTY_HISTORY", err)
	}
}

func TestExecuteFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "births.json")
	doc := `{"births":[{"child":0,"epoch":0},{"child":1,"epoch":1,"parents":[0,null]}]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := NewRunner(nil, nil, nil).Execute(context.Background(), Options{Source: path, Formats: []string{FormatJSON}})
	if err != nil {
		t.Fatal(err)
	}
	if result.Drawing.CountKind(lineage.KindLineage) != 1 {
		t.Errorf("lineage curves = %d, want 1", result.Drawing.CountKind(lineage.KindLineage))
	}

	_, err = NewRunner(nil, nil, nil).Execute(context.Background(), Options{Source: path + ".missing"})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestRunnerCaching(t *testing.T) {
	c := newMemCache()
	r := NewRunner(c, nil, nil)
	ctx := context.Background()
	opts := Options{History: sample, Formats: []string{FormatSVG, FormatJSON}}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.DrawingHit || first.CacheInfo.RenderHit {
		t.Errorf("cold run hit the cache: %+v", first.CacheInfo)
	}
	// one drawing + two artifacts
	if c.sets != 3 {
		t.Errorf("cold run wrote %d entries, want 3", c.sets)
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.DrawingHit || !second.CacheInfo.RenderHit {
		t.Errorf("warm run missed the cache: %+v", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached svg differs from rendered svg")
	}

	// Reordered input is the same history.
	reordered := Options{History: "4 1 7 -\n3 1 1 0\n2 1 0 -\n1 0 - -\n0 0 - -\n", Formats: opts.Formats}
	third, err := r.Execute(ctx, reordered)
	if err != nil {
		t.Fatal(err)
	}
	if !third.CacheInfo.DrawingHit {
		t.Error("record order should not affect the drawing key")
	}

	// A new format renders only that format.
	opts.Formats = []string{FormatSVG, FormatDOT}
	fourth, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheInfo.RenderHit {
		t.Error("partially cached render reported a full hit")
	}
	if c.sets != 4 {
		t.Errorf("sets = %d, want 4 after rendering one new format", c.sets)
	}

	// A different canvas is a different drawing.
	opts.Width = 640
	fifth, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if fifth.CacheInfo.DrawingHit {
		t.Error("changed canvas hit the cached drawing")
	}
}

func TestRenderCancelled(t *testing.T) {
	s, _ := history.ReadText(strings.NewReader(sample))
	d, err := Draw(context.Background(), s, Options{Width: 100, Height: 100})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opts := Options{Formats: []string{FormatSVG, FormatPNG}}
	opts.SetRenderDefaults()
	if _, err := Render(ctx, s, d, opts); err == nil {
		t.Error("expected error from a cancelled context")
	}
}

func TestRenderGraphvizFreshStore(t *testing.T) {
	// The dot and nodelink sinks both read the store's epoch index from
	// separate goroutines; a store that never built its index must survive that.
	s, err := history.ReadText(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{Formats: []string{FormatDOT, FormatNodelink}}
	opts.SetRenderDefaults()

	artifacts, err := Render(context.Background(), s, lineage.Drawing{}, opts)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(string(artifacts[FormatDOT]), "n3 -> n1;") {
		t.Errorf("dot output missing first-parent edge:\n%s", artifacts[FormatDOT])
	}
	if !bytes.Contains(artifacts[FormatNodelink], []byte("<svg")) {
		t.Error("nodelink output is not SVG")
	}
}

func TestRenderGraphvizNeedsHistory(t *testing.T) {
	opts := Options{Formats: []string{FormatDOT}}
	opts.SetRenderDefaults()
	if _, err := RenderFormat(context.Background(), nil, lineage.Drawing{}, FormatDOT, opts); err == nil {
		t.Error("expected error rendering DOT without a history")
	}
}

func TestArtifactKeyOptsTheme(t *testing.T) {
	a := Options{}
	a.SetRenderDefaults()
	b := Options{}
	b.SetRenderDefaults()
	b.Theme.Lineage = "#123456"

	if a.ArtifactKeyOpts(FormatPNG) == b.ArtifactKeyOpts(FormatPNG) {
		t.Error("theme changes must change the artifact key")
	}
	if k := cache.NewDefaultKeyer(); k.ArtifactKey("x", a.ArtifactKeyOpts(FormatPNG)) == k.ArtifactKey("x", a.ArtifactKeyOpts(FormatSVG)) {
		t.Error("format must change the artifact key")
	}
}

func TestExtension(t *testing.T) {
	if Extension(FormatPNG) != "png" || Extension(FormatNodelink) != "nodelink.svg" {
		t.Errorf("Extension() = %q, %q", Extension(FormatPNG), Extension(FormatNodelink))
	}
}

func TestExampleHistoriesAgree(t *testing.T) {
	dir := filepath.Join("..", "..", "examples", "history")
	var hashes []string
	for _, name := range []string{"small.txt", "small.json", "small.yaml"} {
		s, err := history.Import(filepath.Join(dir, name), "")
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if s.Len() != 10 || s.Index().Count() != 4 {
			t.Errorf("%s: %d records in %d epochs", name, s.Len(), s.Index().Count())
		}
		hashes = append(hashes, HashHistory(s))
	}
	if hashes[0] != hashes[1] || hashes[1] != hashes[2] {
		t.Errorf("example formats disagree: %v", hashes)
	}
}

func TestExampleConfig(t *testing.T) {
	cfg, err := config.Load(filepath.Join("..", "..", "examples", "genealogy.toml"))
	if err != nil {
		t.Fatal(err)
	}
	opts := FromConfig(cfg)
	opts.History = sample
	if err := opts.Validate(); err != nil {
		t.Fatalf("options from example config: %v", err)
	}
	if opts.Width != 1200 || !opts.ShowNodes || opts.Theme.LineageWidth != 1.5 {
		t.Errorf("options = %+v", opts)
	}
}
