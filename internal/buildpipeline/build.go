// Package buildpipeline runs the bundler end to end: graph construction,
// analysis, emission and delivery of the artifact.
package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"minipack/internal/bundle"
	"minipack/internal/graph"
	"minipack/internal/module"
	"minipack/internal/observ"
	"minipack/internal/project"
	"minipack/internal/source"
	"minipack/internal/trace"
	"minipack/internal/transform"
)

// ErrWrite marks a failure to deliver the artifact.
var ErrWrite = errors.New("write bundle")

// GraphRequest configures Module Table construction.
type GraphRequest struct {
	Entry      string
	BaseDir    string // display root for progress and diagnostics
	Dedupe     bool
	Jobs       int
	Target     string
	Extensions []string
	// Transformer overrides the esbuild transformer built from Target.
	Transformer module.Transformer
	Progress    ProgressSink
}

// GraphResult carries the table and the files it was read from.
type GraphResult struct {
	Table   graph.Table
	Files   *source.FileSet
	Timings Timings
	Report  observ.Report
}

// BundleRequest configures a full build.
type BundleRequest struct {
	GraphRequest
	Runtime bundle.Runtime
	// OutputPath receives the artifact; when empty it goes to Writer.
	OutputPath string
	Writer     io.Writer
}

// BundleResult captures the artifact and what produced it.
type BundleResult struct {
	GraphResult
	Analysis   *Analysis
	Artifact   []byte
	OutputPath string
}

type run struct {
	ctx     context.Context
	timer   *observ.Timer
	timings *Timings
	sink    ProgressSink
}

// stage runs fn as one timed phase with progress events.
func (r *run) stage(stage Stage, fn func() (string, error)) error {
	emitStage(r.sink, stage, StatusWorking, nil, 0)
	idx := r.timer.Begin(string(stage))
	note, err := fn()
	dur := r.timer.End(idx, note)
	r.timings.Set(stage, dur)
	if err != nil {
		emitStage(r.sink, stage, StatusError, err, dur)
		return err
	}
	emitStage(r.sink, stage, StatusDone, nil, dur)
	return nil
}

// Graph builds the Module Table for req.Entry.
func Graph(ctx context.Context, req *GraphRequest) (GraphResult, error) {
	var result GraphResult
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing graph request")
	}
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "graph", trace.ParentID(ctx))
	ctx = trace.WithSpan(ctx, span)

	r := &run{ctx: ctx, timer: observ.NewTimer(), timings: &result.Timings, sink: req.Progress}
	err := r.graph(req, &result)
	result.Report = r.timer.Report()
	if err != nil {
		span.End("error")
		return result, err
	}
	span.End("")
	return result, nil
}

func (r *run) graph(req *GraphRequest, result *GraphResult) error {
	if strings.TrimSpace(req.Entry) == "" {
		return fmt.Errorf("missing entry path")
	}
	tr := req.Transformer
	if tr == nil {
		esb, err := transform.NewESBuild(transform.Options{Target: req.Target})
		if err != nil {
			return err
		}
		tr = esb
	}
	files := source.NewFileSetWithBase(req.BaseDir)
	result.Files = files
	factory, err := module.NewFactory(module.FactoryConfig{Reader: files, Transformer: tr})
	if err != nil {
		return err
	}
	exts := project.NormalizeExtensions(req.Extensions)
	if len(exts) == 0 {
		exts = project.DefaultExtensions
	}
	builder := graph.NewBuilder(factory, graph.ExtensionResolver(exts), graph.Options{
		Dedupe:   req.Dedupe,
		Jobs:     req.Jobs,
		OnModule: moduleProgress(req.Progress, req.BaseDir),
	})
	return r.stage(StageGraph, func() (string, error) {
		table, err := builder.Build(r.ctx, req.Entry)
		if err != nil {
			return "", err
		}
		result.Table = table
		return fmt.Sprintf("%d modules", len(table)), nil
	})
}

// Bundle builds the graph, analyses it, emits the artifact and writes it.
func Bundle(ctx context.Context, req *BundleRequest) (BundleResult, error) {
	var result BundleResult
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing bundle request")
	}
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "bundle", trace.ParentID(ctx))
	ctx = trace.WithSpan(ctx, span)

	r := &run{ctx: ctx, timer: observ.NewTimer(), timings: &result.Timings, sink: req.Progress}
	err := r.bundle(req, &result)
	result.Report = r.timer.Report()
	if err != nil {
		span.End("error")
		return result, err
	}
	span.WithExtra("bytes", fmt.Sprint(len(result.Artifact))).End("")
	return result, nil
}

func (r *run) bundle(req *BundleRequest, result *BundleResult) error {
	if req.OutputPath == "" && req.Writer == nil {
		return fmt.Errorf("missing output: set an output path or a writer")
	}
	rt, err := bundle.ParseRuntime(string(req.Runtime))
	if err != nil {
		return err
	}
	if err := r.graph(&req.GraphRequest, &result.GraphResult); err != nil {
		return err
	}
	if err := r.stage(StageAnalyze, func() (string, error) {
		result.Analysis = Analyze(result.Table, result.Files)
		return result.Analysis.Summary(), nil
	}); err != nil {
		return err
	}
	if err := r.stage(StageEmit, func() (string, error) {
		span := trace.Begin(trace.FromContext(r.ctx), trace.ScopePass, "emit", trace.ParentID(r.ctx))
		out, err := bundle.Emit(result.Table, bundle.Options{Runtime: rt})
		if err != nil {
			span.End("error")
			return "", err
		}
		span.End(string(rt))
		result.Artifact = out
		return fmt.Sprintf("%s runtime, %d bytes", rt, len(out)), nil
	}); err != nil {
		return err
	}
	return r.stage(StageWrite, func() (string, error) {
		if req.OutputPath == "" {
			if _, err := req.Writer.Write(result.Artifact); err != nil {
				return "", fmt.Errorf("%w: %w", ErrWrite, err)
			}
			return "stdout", nil
		}
		if err := writeArtifact(req.OutputPath, result.Artifact); err != nil {
			return "", err
		}
		result.OutputPath = req.OutputPath
		return req.OutputPath, nil
	})
}

func writeArtifact(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("%w: create output dir: %w", ErrWrite, err)
	}
	// #nosec G306 -- the bundle is meant to be read by other tools
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrWrite, path, err)
	}
	return nil
}
