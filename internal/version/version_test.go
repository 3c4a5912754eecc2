package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func withPlainColor(t *testing.T) {
	t.Helper()
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })
}

func TestColoredPlain(t *testing.T) {
	withPlainColor(t)
	tests := []struct{ version, want string }{
		{"0.1.0-dev", "0.1.0-dev"},
		{"1.2.3", "1.2.3"},
		{"nightly", "nightly"},
	}
	orig := Version
	t.Cleanup(func() { Version = orig })
	for _, tt := range tests {
		Version = tt.version
		if got := Colored(); got != tt.want {
			t.Errorf("Colored() with %q = %q, want %q", tt.version, got, tt.want)
		}
	}
}

func TestColoredPaints(t *testing.T) {
	orig := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = orig })
	if got := Colored(); !strings.Contains(got, "\x1b[") {
		t.Fatalf("Colored() = %q has no escape codes", got)
	}
}

func TestInfo(t *testing.T) {
	withPlainColor(t)
	origCommit, origDate := GitCommit, BuildDate
	t.Cleanup(func() { GitCommit, BuildDate = origCommit, origDate })

	GitCommit, BuildDate = "", ""
	got := Info([]string{"3.2", "3.8"})
	if strings.Contains(got, "commit:") || !strings.Contains(got, "dialects: 3.2, 3.8") {
		t.Fatalf("Info() =\n%s", got)
	}

	GitCommit, BuildDate = "abc123", "2024-01-15T10:30:00Z"
	got = Info(nil)
	for _, want := range []string{"irforge " + Version, "commit:   abc123", "built:    2024-01-15T10:30:00Z"} {
		if !strings.Contains(got, want) {
			t.Errorf("Info() missing %q:\n%s", want, got)
		}
	}
}
