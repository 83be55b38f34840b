// Package graph discovers every module reachable from an entry file by
// breadth-first traversal and returns them as a Module Table.
package graph

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"minipack/internal/module"
	"minipack/internal/project"
	"minipack/internal/trace"
)

// Factory is the part of *module.Factory the builder needs.
type Factory interface {
	Build(ctx context.Context, path string) (*module.Descriptor, error)
	Claim() module.ID
	Materialize(ctx context.Context, id module.ID, path string) (*module.Descriptor, error)
}

// Resolver maps an import literal to a location, relative to dir.
type Resolver func(dir, importPath string) (string, error)

// ExtensionResolver resolves with project.ResolveImport and the given extensions.
func ExtensionResolver(extensions []string) Resolver {
	return func(dir, importPath string) (string, error) {
		return project.ResolveImport(dir, importPath, extensions)
	}
}

// Options tunes the traversal.
type Options struct {
	// Dedupe reuses one identity per canonical location instead of building
	// a fresh module for every import edge.
	Dedupe bool
	// Jobs > 1 materialises each BFS wave concurrently; the table is the same.
	Jobs int
	// OnModule is called for every new descriptor in identity order.
	OnModule func(*module.Descriptor)
}

// Builder runs graph construction.
type Builder struct {
	factory Factory
	resolve Resolver
	opts    Options
}

func NewBuilder(f Factory, resolve Resolver, opts Options) *Builder {
	if resolve == nil {
		resolve = ExtensionResolver(project.DefaultExtensions)
	}
	return &Builder{factory: f, resolve: resolve, opts: opts}
}

// node is the traversal bookkeeping kept next to each table slot.
type node struct {
	parent int // -1 for the entry
	key    string
}

type run struct {
	b     *Builder
	ctx   context.Context
	table Table
	nodes []node
	memo  *memo
}

// Build returns the Module Table rooted at entry, or the first failure.
// Nothing partial is returned on error.
func (b *Builder) Build(ctx context.Context, entry string) (Table, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePass, "build_graph", trace.ParentID(ctx))
	ctx = trace.WithSpan(ctx, span)

	abs, err := filepath.Abs(entry)
	if err != nil {
		span.End("error")
		return nil, fmt.Errorf("resolve entry %q: %w", entry, err)
	}

	r := &run{b: b, ctx: ctx, memo: newMemo(64)}
	if b.opts.Jobs > 1 {
		err = r.parallel(abs)
	} else {
		err = r.sequential(abs)
	}
	if err != nil {
		span.End("error")
		return nil, err
	}
	span.WithExtra("modules", fmt.Sprint(len(r.table))).End("")
	return r.table, nil
}

func (r *run) add(d *module.Descriptor, parent int, key string) {
	r.table = append(r.table, d)
	r.nodes = append(r.nodes, node{parent: parent, key: key})
	if r.b.opts.Dedupe {
		r.memo.put(key, d.ID)
	}
	if r.b.opts.OnModule != nil {
		r.b.opts.OnModule(d)
	}
}

// reuse returns an identity the edge from head to key must point at instead
// of a fresh module: the memoised one in dedupe mode, otherwise an ancestor
// with the same location, which is the only way a cycle can close.
func (r *run) reuse(head int, key string) (module.ID, bool) {
	if r.b.opts.Dedupe {
		return r.memo.get(key)
	}
	for i := head; i >= 0; i = r.nodes[i].parent {
		if r.nodes[i].key == key {
			id, err := module.IDFromInt(i)
			return id, err == nil
		}
	}
	return 0, false
}

func (r *run) resolveEdge(d *module.Descriptor, imp module.Import) (target, key string, err error) {
	dir := filepath.Dir(d.Source)
	target, err = r.b.resolve(dir, imp.Path)
	if err != nil {
		e := &module.Error{Kind: module.ErrResolution, Path: filepath.Join(dir, imp.Path), Err: err}
		return "", "", e.WithImporter(d.ID, imp)
	}
	return target, project.CanonicalPath(target), nil
}

func (r *run) traceEdge(from module.ID, imp module.Import, to module.ID, reused bool) {
	detail := fmt.Sprintf("%d %q -> %d", from, imp.Path, to)
	if reused {
		detail += " (reused)"
	}
	trace.Point(trace.FromContext(r.ctx), trace.ScopeNode, "import", detail, trace.ParentID(r.ctx))
}

func withImporter(err error, importer module.ID, imp module.Import) error {
	if me, ok := module.AsError(err); ok {
		return me.WithImporter(importer, imp)
	}
	return err
}

func (r *run) sequential(entry string) error {
	root, err := r.b.factory.Build(r.ctx, entry)
	if err != nil {
		return err
	}
	r.add(root, -1, project.CanonicalPath(entry))

	for head := 0; head < len(r.table); head++ {
		d := r.table[head]
		for _, imp := range d.Imports {
			if err := r.ctx.Err(); err != nil {
				return err
			}
			target, key, err := r.resolveEdge(d, imp)
			if err != nil {
				return err
			}
			if id, ok := r.reuse(head, key); ok {
				d.Mapping[imp.Path] = id
				r.traceEdge(d.ID, imp, id, true)
				continue
			}
			child, err := r.b.factory.Build(r.ctx, target)
			if err != nil {
				return withImporter(err, d.ID, imp)
			}
			d.Mapping[imp.Path] = child.ID
			r.traceEdge(d.ID, imp, child.ID, false)
			r.add(child, head, key)
		}
	}
	return nil
}

type job struct {
	parent int
	imp    module.Import
	target string
	key    string
	id     module.ID
}

// parallel claims identities for a whole wave of edges in discovery order,
// which is the order sequential BFS would assign them, then materialises
// the wave concurrently and appends it in identity order.
func (r *run) parallel(entry string) error {
	root, err := r.b.factory.Build(r.ctx, entry)
	if err != nil {
		return err
	}
	r.add(root, -1, project.CanonicalPath(entry))

	wave := []int{0}
	for len(wave) > 0 {
		jobs, err := r.claimWave(wave)
		if err != nil {
			return err
		}
		built, err := r.materialize(jobs)
		if err != nil {
			return err
		}

		wave = wave[:0]
		for i, d := range built {
			if int(d.ID) != len(r.table) {
				return fmt.Errorf("%w: wave produced module %d at slot %d", ErrBrokenTable, d.ID, len(r.table))
			}
			wave = append(wave, len(r.table))
			r.add(d, jobs[i].parent, jobs[i].key)
		}
	}
	return nil
}

func (r *run) claimWave(wave []int) ([]job, error) {
	var jobs []job
	pending := newMemo(0)
	for _, head := range wave {
		d := r.table[head]
		for _, imp := range d.Imports {
			if err := r.ctx.Err(); err != nil {
				return nil, err
			}
			target, key, err := r.resolveEdge(d, imp)
			if err != nil {
				return nil, err
			}
			id, ok := r.reuse(head, key)
			if !ok && r.b.opts.Dedupe {
				id, ok = pending.get(key)
			}
			if ok {
				d.Mapping[imp.Path] = id
				r.traceEdge(d.ID, imp, id, true)
				continue
			}
			id = r.b.factory.Claim()
			pending.put(key, id)
			d.Mapping[imp.Path] = id
			r.traceEdge(d.ID, imp, id, false)
			jobs = append(jobs, job{parent: head, imp: imp, target: target, key: key, id: id})
		}
	}
	return jobs, nil
}

func (r *run) materialize(jobs []job) ([]*module.Descriptor, error) {
	built := make([]*module.Descriptor, len(jobs))
	errs := make([]error, len(jobs))

	g, gctx := errgroup.WithContext(r.ctx)
	g.SetLimit(r.b.opts.Jobs)
	for i, j := range jobs {
		g.Go(func() error {
			d, err := r.b.factory.Materialize(gctx, j.id, j.target)
			if err != nil {
				errs[i] = withImporter(err, r.table[j.parent].ID, j.imp)
				return errs[i]
			}
			built[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, firstError(errs, err)
	}
	return built, nil
}

// firstError prefers the lowest-identity real failure over cancellations
// it caused in sibling jobs.
func firstError(errs []error, fallback error) error {
	for _, err := range errs {
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}
	return fallback
}
