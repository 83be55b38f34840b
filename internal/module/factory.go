package module

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"minipack/internal/jsparse"
	"minipack/internal/project"
	"minipack/internal/source"
	"minipack/internal/trace"
	"minipack/internal/transform"
)

// Reader loads source files; *source.FileSet implements it.
type Reader interface {
	Load(path string) (source.FileID, error)
	Get(id source.FileID) *source.File
}

// Parser turns a loaded file into a syntax tree.
type Parser interface {
	Parse(file *source.File) (*jsparse.Tree, error)
}

// Transformer turns a syntax tree into an executable CommonJS body.
type Transformer interface {
	Transform(tree *jsparse.Tree) (string, error)
}

// FactoryConfig wires the collaborators. Nil fields get defaults: a fresh
// FileSet, the tdewolff parser, static import extraction and esbuild at
// the default target.
type FactoryConfig struct {
	Reader      Reader
	Parser      Parser
	Imports     jsparse.ImportExtractor
	Transformer Transformer
}

// Factory builds descriptors and owns the identity counter of one run.
type Factory struct {
	reader      Reader
	parser      Parser
	imports     jsparse.ImportExtractor
	transformer Transformer

	mu   sync.Mutex
	next ID
}

func NewFactory(cfg FactoryConfig) (*Factory, error) {
	f := &Factory{
		reader:      cfg.Reader,
		parser:      cfg.Parser,
		imports:     cfg.Imports,
		transformer: cfg.Transformer,
	}
	if f.reader == nil {
		f.reader = source.NewFileSet()
	}
	if f.parser == nil {
		f.parser = jsparse.Parser{}
	}
	if f.imports == nil {
		f.imports = jsparse.StaticImports{}
	}
	if f.transformer == nil {
		tr, err := transform.NewESBuild(transform.Options{})
		if err != nil {
			return nil, err
		}
		f.transformer = tr
	}
	return f, nil
}

// Claim reserves the next identity.
func (f *Factory) Claim() ID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	return id
}

// Claimed reports how many identities have been handed out.
func (f *Factory) Claimed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int(f.next)
}

// Build assigns the next identity and builds the descriptor for path while
// holding the counter, so a failed build gives its identity back and the
// sequence stays dense.
func (f *Factory) Build(ctx context.Context, path string) (*Descriptor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.next
	d, err := f.Materialize(ctx, id, path)
	if err != nil {
		return nil, err
	}
	f.next++
	return d, nil
}

// Materialize builds the descriptor for an identity obtained from Claim.
// It is safe to call concurrently for distinct identities.
func (f *Factory) Materialize(ctx context.Context, id ID, path string) (*Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	span := trace.Begin(trace.FromContext(ctx), trace.ScopeModule, fmt.Sprintf("module:%d", id), trace.ParentID(ctx))
	defer span.End(path)

	fileID, err := f.reader.Load(path)
	if err != nil {
		return nil, &Error{Kind: ErrSourceRead, Path: path, Err: err}
	}
	file := f.reader.Get(fileID)
	if file == nil {
		return nil, &Error{Kind: ErrSourceRead, Path: path, Err: errors.New("file vanished from the file set")}
	}

	tree, err := f.parser.Parse(file)
	if err != nil {
		e := &Error{Kind: ErrParse, Path: path, Err: err}
		var se *jsparse.SyntaxError
		if errors.As(err, &se) && se.Span.File == file.ID && se.Line > 0 {
			e.HasSpan, e.Span = true, se.Span
		}
		return nil, e
	}
	imports := f.imports.Imports(tree)

	body, err := f.transformer.Transform(tree)
	if err != nil {
		e := &Error{Kind: ErrTransform, Path: path, Err: err}
		var te *transform.Error
		if errors.As(err, &te) {
			if off, ok := file.OffsetOf(te.Line, te.Column); ok {
				e.HasSpan, e.Span = true, source.Span{File: file.ID, Start: off, End: off}
			}
		}
		return nil, e
	}

	span.WithExtra("imports", fmt.Sprint(len(imports)))
	return &Descriptor{
		ID:          id,
		Source:      path,
		File:        file.ID,
		Imports:     imports,
		Body:        body,
		Mapping:     map[string]ID{},
		ContentHash: project.Digest(file.Hash),
	}, nil
}
