package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestColored(t *testing.T) {
	prev, prevNoColor := Version, color.NoColor
	t.Cleanup(func() { Version, color.NoColor = prev, prevNoColor })
	color.NoColor = true

	cases := map[string]string{
		"0.1.0-dev": "0.1.0-dev",
		"1.2.3":     "1.2.3",
		"nightly":   "nightly",
		"1.2":       "1.2",
	}
	for in, want := range cases {
		Version = in
		if got := Colored(); got != want {
			t.Errorf("Colored() with %q = %q, want %q", in, got, want)
		}
	}
}

func TestColoredAddsEscapes(t *testing.T) {
	prev, prevNoColor := Version, color.NoColor
	t.Cleanup(func() { Version, color.NoColor = prev, prevNoColor })
	color.NoColor = false

	Version = "1.2.3"
	if got := Colored(); got == "1.2.3" {
		t.Fatal("expected coloured output")
	}
}

func TestOverridableMetadata(t *testing.T) {
	prevCommit, prevDate := GitCommit, BuildDate
	t.Cleanup(func() { GitCommit, BuildDate = prevCommit, prevDate })

	GitCommit = "abc123def456"
	BuildDate = "2024-01-15T10:30:00Z"
	if GitCommit != "abc123def456" || BuildDate != "2024-01-15T10:30:00Z" {
		t.Fatal("metadata not overridable")
	}
}
