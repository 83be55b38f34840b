package ui

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"minipack/internal/buildpipeline"
)

func apply(m *progressModel, evs ...buildpipeline.Event) {
	for _, ev := range evs {
		m.applyEvent(ev)
	}
}

func TestProgressModelTracksModules(t *testing.T) {
	m := NewProgressModel("bundling src/entry.js", nil).(*progressModel)
	apply(m,
		buildpipeline.Event{Stage: buildpipeline.StageGraph, Status: buildpipeline.StatusWorking},
		buildpipeline.Event{File: "src/entry.js", Stage: buildpipeline.StageGraph, Status: buildpipeline.StatusDone},
		buildpipeline.Event{File: "src/log.js", Stage: buildpipeline.StageGraph, Status: buildpipeline.StatusDone},
		buildpipeline.Event{File: "src/log.js", Stage: buildpipeline.StageGraph, Status: buildpipeline.StatusDone},
	)
	if len(m.items) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(m.items))
	}
	if m.items[1].copies != 2 || m.items[1].status != "loaded" {
		t.Fatalf("unexpected row %+v", m.items[1])
	}
	if m.stageLabel != "resolving" {
		t.Fatalf("stage label = %q", m.stageLabel)
	}
	view := m.View()
	for _, want := range []string{"bundling src/entry.js (resolving)", "src/entry.js", "src/log.js", "x2"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestProgressModelFailure(t *testing.T) {
	m := NewProgressModel("bundling", nil).(*progressModel)
	apply(m, buildpipeline.Event{Stage: buildpipeline.StageEmit, Status: buildpipeline.StatusError, Err: errors.New("boom")})
	m.done = true
	if !m.failed || !strings.Contains(m.View(), "failed: bundling (error)") {
		t.Fatalf("failure not shown:\n%s", m.View())
	}
}

func TestProgressModelScrolls(t *testing.T) {
	m := NewProgressModel("bundling", nil).(*progressModel)
	for i := 0; i < maxRows+3; i++ {
		apply(m, buildpipeline.Event{File: fmt.Sprintf("mod%02d.js", i), Stage: buildpipeline.StageGraph, Status: buildpipeline.StatusDone})
	}
	if view := m.View(); !strings.Contains(view, "... 3 more") || strings.Contains(view, "mod00.js") || !strings.Contains(view, "mod14.js") {
		t.Fatalf("rows did not scroll:\n%s", view)
	}
}

func TestProgressFromStage(t *testing.T) {
	if got := progressFromStage(buildpipeline.StageWrite, buildpipeline.StatusDone); got != 1 {
		t.Fatalf("write done = %v", got)
	}
	if got := progressFromStage(buildpipeline.StageGraph, buildpipeline.StatusWorking); got != 0 {
		t.Fatalf("graph working = %v", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("src/very/long/path.js", 10); got != "src/..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("短い", 3); got != "短" {
		t.Fatalf("truncate wide = %q", got)
	}
	if got := truncate("a.js", 0); got != "a.js" {
		t.Fatalf("truncate zero = %q", got)
	}
}
