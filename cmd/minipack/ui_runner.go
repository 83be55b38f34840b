package main

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"minipack/internal/buildpipeline"
	"minipack/internal/ui"
)

type bundleOutcome struct {
	result buildpipeline.BundleResult
	err    error
}

// runBundleWithUI runs the pipeline in the background while the progress
// view renders on out.
func runBundleWithUI(ctx context.Context, title string, out io.Writer, req *buildpipeline.BundleRequest) (buildpipeline.BundleResult, error) {
	if req == nil {
		return buildpipeline.BundleResult{}, fmt.Errorf("missing bundle request")
	}
	events := make(chan buildpipeline.Event, 256)
	outcomeCh := make(chan bundleOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = buildpipeline.ChannelSink{Ch: events}
		res, err := buildpipeline.Bundle(ctx, &reqCopy)
		outcomeCh <- bundleOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, events)
	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithInput(nil))
	_, uiErr := program.Run()
	if uiErr != nil {
		// keep draining so the pipeline never blocks on a full channel
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
