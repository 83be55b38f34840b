package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltersScopes(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopePass, true},
		{LevelPhase, ScopePass, true},
		{LevelPhase, ScopeModule, false},
		{LevelDetail, ScopeModule, true},
		{LevelDetail, ScopeNode, false},
		{LevelDebug, ScopeNode, true},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.scope); got != tc.want {
			t.Errorf("%s.ShouldEmit(%s) = %v, want %v", tc.level, tc.scope, got, tc.want)
		}
	}
}

func TestParseHelpers(t *testing.T) {
	if l, err := ParseLevel("DETAIL"); err != nil || l != LevelDetail {
		t.Fatalf("ParseLevel(DETAIL) = %v, %v", l, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if m, err := ParseMode("both"); err != nil || m != ModeBoth {
		t.Fatalf("ParseMode(both) = %v, %v", m, err)
	}
	if f, err := ParseFormat("ndjson"); err != nil || f != FormatNDJSON {
		t.Fatalf("ParseFormat(ndjson) = %v, %v", f, err)
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatNDJSON)

	root := Begin(tr, ScopePass, "build_graph", 0)
	child := Begin(tr, ScopeModule, "module:0", root.ID())
	child.WithExtra("imports", "2").End("entry.js")
	Begin(tr, ScopeNode, "edge", child.ID()).End("")
	root.End("")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 events (node scope filtered), got %d:\n%s", len(lines), buf.String())
	}
	var ev jsonEvent
	if err := json.Unmarshal([]byte(lines[2]), &ev); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if ev.Kind != "end" || ev.Name != "module:0" || ev.Extra["imports"] != "2" || ev.ParentID == 0 {
		t.Fatalf("unexpected module end event: %+v", ev)
	}
}

func TestRingTracerWrapsAndMultiFansOut(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	var buf bytes.Buffer
	multi := NewMultiTracer(LevelDebug, NewStreamTracer(&buf, LevelDebug, FormatText), ring)

	for _, name := range []string{"a", "b", "c", "d"} {
		Point(multi, ScopeNode, name, "", 0)
	}

	snap := ring.Snapshot()
	if len(snap) != 3 || snap[0].Name != "b" || snap[2].Name != "d" {
		t.Fatalf("unexpected ring contents: %+v", snap)
	}
	if strings.Count(buf.String(), "• ") != 4 {
		t.Fatalf("stream missed events:\n%s", buf.String())
	}
	if RingOf(multi) != ring {
		t.Fatal("RingOf should find the ring behind a MultiTracer")
	}

	var dump bytes.Buffer
	if err := ring.Dump(&dump, FormatText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(dump.String(), "• d") {
		t.Fatalf("dump missing last event:\n%s", dump.String())
	}
}

func TestContextPropagation(t *testing.T) {
	ctx := context.Background()
	if FromContext(ctx) != Nop {
		t.Fatal("empty context should yield Nop")
	}
	ring := NewRingTracer(8, LevelPhase)
	ctx = WithTracer(ctx, ring)
	span := Begin(FromContext(ctx), ScopePass, "emit", 0)
	ctx = WithSpan(ctx, span)
	if ParentID(ctx) != span.ID() || span.ID() == 0 {
		t.Fatalf("ParentID = %d, want %d", ParentID(ctx), span.ID())
	}
	if d := Begin(Nop, ScopePass, "x", 0).End(""); d != 0 {
		t.Fatalf("nop span reported duration %v", d)
	}
}

func TestNewWithLevelOffIsNop(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr != Nop {
		t.Fatalf("New(off) = %v, %v", tr, err)
	}
	tr, err = New(Config{Level: LevelPhase, Mode: ModeRing, RingSize: 2})
	if err != nil || RingOf(tr) == nil {
		t.Fatalf("New(ring) = %T, %v", tr, err)
	}
}
