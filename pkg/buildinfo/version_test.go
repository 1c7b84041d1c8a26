package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFill(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}

	tests := []struct {
		name string
		in   Info
		want Info
	}{
		{
			"unstamped",
			Info{Version: "dev", Commit: "none", Date: "unknown"},
			Info{Version: "v0.3.1", Commit: "abc123", Date: "2026-01-02T03:04:05Z"},
		},
		{
			"stamped wins",
			Info{Version: "v1.0.0", Commit: "deadbeef", Date: "today"},
			Info{Version: "v1.0.0", Commit: "deadbeef", Date: "today"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fill(tt.in, bi); got != tt.want {
				t.Errorf("fill() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFillDevelVersion(t *testing.T) {
	got := fill(Info{Version: "dev", Commit: "none", Date: "unknown"}, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	if got.Version != "dev" {
		t.Errorf("Version = %q, want dev", got.Version)
	}
}

func TestTemplate(t *testing.T) {
	tmpl := Template()
	if !strings.HasPrefix(tmpl, "{{.Name}} version ") || !strings.Contains(tmpl, "commit: ") {
		t.Errorf("Template() = %q", tmpl)
	}
	if !strings.HasPrefix(UserAgent(), "genealogy/") {
		t.Errorf("UserAgent() = %q", UserAgent())
	}
}
