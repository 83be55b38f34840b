package buildpipeline

import (
	"path/filepath"
	"strings"
	"time"

	"minipack/internal/module"
)

// moduleProgress reports each descriptor as a finished file of StageGraph.
func moduleProgress(sink ProgressSink, baseDir string) func(*module.Descriptor) {
	if sink == nil {
		return nil
	}
	base := absBase(baseDir)
	return func(d *module.Descriptor) {
		sink.OnEvent(Event{File: displayPath(d.Source, base), Stage: StageGraph, Status: StatusDone})
	}
}

func absBase(baseDir string) string {
	base := strings.TrimSpace(baseDir)
	if base == "" {
		return ""
	}
	if abs, err := filepath.Abs(base); err == nil {
		return abs
	}
	return base
}

// displayPath shortens file relative to base when it lies underneath it.
func displayPath(file, base string) string {
	if file == "" {
		return ""
	}
	path := filepath.Clean(file)
	if base != "" {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if rel, err := filepath.Rel(base, path); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}
	return filepath.ToSlash(path)
}

func emitStage(sink ProgressSink, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}
