package sink

import (
	"fmt"
	"regexp"

	"github.com/matzehuels/genealogy/pkg/lineage"
)

// Theme holds the inks and pens used by the raster and vector sinks.
type Theme struct {
	Background string `json:"background"`
	Separator  string `json:"separator"`
	Lineage    string `json:"lineage"`
	Asexual    string `json:"asexual"`
	Node       string `json:"node"`

	SeparatorWidth float64   `json:"separator_width"`
	LineageWidth   float64   `json:"lineage_width"`
	SeparatorDash  []float64 `json:"separator_dash,omitempty"`
	NodeRadius     float64   `json:"node_radius"`
}

// DefaultTheme returns black lineage on white with light grey separators.
func DefaultTheme() Theme {
	return Theme{
		Background:     "#ffffff",
		Separator:      "#c8c8c8",
		Lineage:        "#202020",
		Asexual:        "#1f6fb4",
		Node:           "#202020",
		SeparatorWidth: 1,
		LineageWidth:   1,
		SeparatorDash:  []float64{4, 4},
		NodeRadius:     0,
	}
}

var hexColorRe = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// Validate checks colors are hex strings and widths are not negative.
func (t Theme) Validate() error {
	colors := []struct{ name, value string }{
		{"background", t.Background},
		{"separator", t.Separator},
		{"lineage", t.Lineage},
		{"asexual", t.Asexual},
		{"node", t.Node},
	}
	for _, c := range colors {
		if !hexColorRe.MatchString(c.value) {
			return fmt.Errorf("%s color %q is not a hex color", c.name, c.value)
		}
	}
	if t.SeparatorWidth < 0 || t.LineageWidth < 0 || t.NodeRadius < 0 {
		return fmt.Errorf("stroke widths and node radius must not be negative")
	}
	for _, d := range t.SeparatorDash {
		if d < 0 {
			return fmt.Errorf("separator dash lengths must not be negative")
		}
	}
	return nil
}

type pen struct {
	color string
	width float64
	dash  []float64
}

func (t Theme) pen(s lineage.Style) pen {
	switch s {
	case lineage.StyleSeparator:
		return pen{t.Separator, t.SeparatorWidth, t.SeparatorDash}
	case lineage.StyleLineageAsexual:
		return pen{t.Asexual, t.LineageWidth, nil}
	default:
		return pen{t.Lineage, t.LineageWidth, nil}
	}
}
