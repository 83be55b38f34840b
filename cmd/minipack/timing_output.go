package main

import (
	"fmt"
	"io"
	"time"

	"minipack/internal/buildpipeline"
)

var timedStages = []struct {
	stage buildpipeline.Stage
	verb  string
}{
	{buildpipeline.StageGraph, "resolved"},
	{buildpipeline.StageAnalyze, "analyzed"},
	{buildpipeline.StageEmit, "emitted"},
	{buildpipeline.StageWrite, "wrote"},
}

func printStageTimings(out io.Writer, timings buildpipeline.Timings) {
	if out == nil {
		return
	}
	for _, s := range timedStages {
		if !timings.Has(s.stage) {
			continue
		}
		fmt.Fprintf(out, "%s %.1f ms\n", s.verb, toMillis(timings.Duration(s.stage)))
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
