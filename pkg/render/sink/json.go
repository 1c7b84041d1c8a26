package sink

import (
	"encoding/json"

	"github.com/matzehuels/genealogy/pkg/lineage"
)

type jsonOutput struct {
	lineage.Drawing
	Theme *Theme `json:"theme,omitempty"`
}

// RenderJSON serializes the drawing together with the theme it would be
// drawn with.
func RenderJSON(d lineage.Drawing, opts ...Option) ([]byte, error) {
	r := newRenderer(opts...)
	out := jsonOutput{Drawing: d, Theme: &r.theme}
	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}
