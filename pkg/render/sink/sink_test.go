package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"strings"
	"testing"

	"github.com/matzehuels/genealogy/pkg/history"
	"github.com/matzehuels/genealogy/pkg/lineage"
)

func testDrawing(t *testing.T) lineage.Drawing {
	t.Helper()
	s, err := history.FromRecords([]history.BirthRecord{
		{ChildID: 0, Epoch: 0, Parents: history.Orphan},
		{ChildID: 1, Epoch: 0, Parents: history.Orphan},
		{ChildID: 2, Epoch: 1, Parents: [2]uint64{0, history.NoParent}},
		{ChildID: 3, Epoch: 1, Parents: [2]uint64{1, 0}},
	})
	if err != nil {
		t.Fatal(err)
	}
	d, err := lineage.Draw(context.Background(), s.Index(), lineage.Canvas{Width: 120, Height: 80}, lineage.CurveOptions{})
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestRenderPNG(t *testing.T) {
	d := testDrawing(t)

	tests := []struct {
		name string
		opts []Option
		w, h int
	}{
		{"default", nil, 120, 80},
		{"scaled", []Option{WithScale(2)}, 240, 160},
		{"nodes", []Option{WithNodes(), WithTheme(Theme{
			Background: "#000", Separator: "#333", Lineage: "#fff", Asexual: "#0f0", Node: "#f00",
			SeparatorWidth: 1, LineageWidth: 2, NodeRadius: 3,
		})}, 120, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := RenderPNG(d, tt.opts...)
			if err != nil {
				t.Fatalf("RenderPNG: %v", err)
			}
			img, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if b := img.Bounds(); b.Dx() != tt.w || b.Dy() != tt.h {
				t.Errorf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.w, tt.h)
			}
		})
	}
}

func TestRenderPNGEmptyCanvas(t *testing.T) {
	if _, err := RenderPNG(lineage.Drawing{}); err == nil {
		t.Error("expected error for a zero-size canvas")
	}
}

func TestRenderSVG(t *testing.T) {
	d := testDrawing(t)
	svg := string(RenderSVG(d))

	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Fatalf("not an svg document:\n%s", svg)
	}
	if got := strings.Count(svg, "<path"); got != len(d.Curves) {
		t.Errorf("got %d paths, want %d", got, len(d.Curves))
	}
	if got := strings.Count(svg, " C"); got != d.CountKind(lineage.KindLineage) {
		t.Errorf("got %d cubic segments, want %d", got, d.CountKind(lineage.KindLineage))
	}
	for _, want := range []string{`class="lineage-asexual"`, `class="lineage"`, `stroke-dasharray="4 4"`, `viewBox="0 0 120.0 80.0"`} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %s", want)
		}
	}
	if strings.Contains(svg, "<circle") {
		t.Error("nodes drawn without WithNodes")
	}
}

func TestRenderSVGScale(t *testing.T) {
	d := testDrawing(t)

	tests := []struct {
		name  string
		scale float64
		want  string
	}{
		{"default", 0, `width="120" height="80"`},
		{"double", 2, `width="240" height="160"`},
		{"half", 0.5, `width="60" height="40"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svg := string(RenderSVG(d, WithScale(tt.scale)))
			if !strings.Contains(svg, tt.want) {
				t.Errorf("svg root missing %s:\n%s", tt.want, svg[:strings.Index(svg, "\n")])
			}
			if !strings.Contains(svg, `viewBox="0 0 120.0 80.0"`) {
				t.Error("scale changed the viewBox")
			}
		})
	}
}

func TestAsexualPen(t *testing.T) {
	theme := DefaultTheme()
	p := theme.pen(lineage.StyleLineageAsexual)
	if p.color != theme.Asexual || p.width != theme.LineageWidth || len(p.dash) != 0 {
		t.Errorf("asexual pen = %+v, want solid %s at width %g", p, theme.Asexual, theme.LineageWidth)
	}
	if sep := theme.pen(lineage.StyleSeparator); len(sep.dash) == 0 {
		t.Error("separator pen has no dash pattern")
	}

	svg := string(RenderSVG(testDrawing(t)))
	for _, line := range strings.Split(svg, "\n") {
		if strings.Contains(line, `class="lineage-asexual"`) {
			if strings.Contains(line, "stroke-dasharray") || !strings.Contains(line, `stroke="`+theme.Asexual+`"`) {
				t.Errorf("asexual path = %s", line)
			}
		}
	}
}

func TestRenderSVGNodes(t *testing.T) {
	d := testDrawing(t)
	theme := DefaultTheme()
	theme.NodeRadius = 2
	svg := string(RenderSVG(d, WithNodes(), WithTheme(theme)))
	if got := strings.Count(svg, "<circle"); got != len(d.Nodes) {
		t.Errorf("got %d circles, want %d", got, len(d.Nodes))
	}
}

func TestPathData(t *testing.T) {
	tests := []struct {
		name  string
		curve lineage.Curve
		want  string
	}{
		{
			"separator",
			lineage.Curve{Kind: lineage.KindSeparator, Points: []lineage.Point{lineage.Pt(1, 2), lineage.Pt(1, 8)}},
			"M1.00,2.00 L1.00,8.00",
		},
		{
			"lineage",
			lineage.Curve{Kind: lineage.KindLineage, Points: []lineage.Point{
				lineage.Pt(600, 400), lineage.Pt(400, 400), lineage.Pt(400, 200), lineage.Pt(200, 200),
			}},
			"M600.00,400.00 C400.00,400.00 400.00,200.00 200.00,200.00",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pathData(tt.curve); got != tt.want {
				t.Errorf("pathData() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderJSON(t *testing.T) {
	d := testDrawing(t)
	data, err := RenderJSON(d, WithIndent())
	if err != nil {
		t.Fatal(err)
	}

	var out struct {
		Epochs int             `json:"epochs"`
		Curves []lineage.Curve `json:"curves"`
		Theme  Theme           `json:"theme"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Epochs != 2 || len(out.Curves) != len(d.Curves) {
		t.Errorf("decoded %d epochs, %d curves", out.Epochs, len(out.Curves))
	}
	if out.Theme.Background != DefaultTheme().Background {
		t.Errorf("theme background = %q", out.Theme.Background)
	}
}

func TestThemeValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Theme)
		wantErr bool
	}{
		{"default", func(*Theme) {}, false},
		{"short hex", func(th *Theme) { th.Lineage = "#abc" }, false},
		{"named color", func(th *Theme) { th.Lineage = "red" }, true},
		{"missing hash", func(th *Theme) { th.Background = "ffffff" }, true},
		{"negative width", func(th *Theme) { th.LineageWidth = -1 }, true},
		{"negative dash", func(th *Theme) { th.SeparatorDash = []float64{2, -1} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := DefaultTheme()
			tt.modify(&th)
			if err := th.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
