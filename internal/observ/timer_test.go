package observ

import (
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	timer := NewTimer()
	if got := timer.Report(); len(got.Phases) != 0 || got.TotalMS != 0 {
		t.Fatalf("empty timer reported %+v", got)
	}
	g := timer.Begin("graph")
	e := timer.Begin("emit")
	if d := timer.End(g, "3 modules"); d < 0 {
		t.Fatalf("negative duration %v", d)
	}
	timer.End(e, "")
	if timer.End(7, "ignored") != 0 {
		t.Fatal("out of range End should be a no-op")
	}

	report := timer.Report()
	if len(report.Phases) != 2 || report.Phases[0].Name != "graph" || report.Phases[1].Name != "emit" {
		t.Fatalf("unexpected phases %+v", report.Phases)
	}
	if report.Phases[0].Note != "3 modules" {
		t.Fatalf("note lost: %+v", report.Phases[0])
	}
	sum := report.Phases[0].DurationMS + report.Phases[1].DurationMS
	if diff := report.TotalMS - sum; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("total %v != sum %v", report.TotalMS, sum)
	}

	summary := timer.Summary()
	for _, want := range []string{"timings:", "graph", "// 3 modules", "emit", "total"} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary missing %q:\n%s", want, summary)
		}
	}
}
