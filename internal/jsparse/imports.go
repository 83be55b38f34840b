package jsparse

import (
	"bytes"

	"fortio.org/safecast"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"

	"minipack/internal/source"
)

// Import is one statically declared import in declaration order.
type Import struct {
	Path string      // decoded string value of the literal
	Span source.Span // covers the string literal, quotes included
}

// ImportExtractor lists the import paths a tree declares.
type ImportExtractor interface {
	Imports(tree *Tree) []Import
}

// StaticImports extracts top-level `import ... from "x"`, `import "x"` and
// `export ... from "x"` declarations. Dynamic import() is not an edge.
type StaticImports struct{}

func (StaticImports) Imports(tree *Tree) []Import {
	if tree == nil || tree.AST == nil {
		return nil
	}
	literals := moduleLiterals(tree.File.Content)
	var (
		out    []Import
		cursor int
	)
	for _, stmt := range tree.AST.List {
		var raw []byte
		switch s := stmt.(type) {
		case *js.ImportStmt:
			raw = s.Module
		case *js.ExportStmt:
			raw = s.Module
		}
		if len(raw) < 2 {
			continue
		}
		path, err := Unquote(string(raw))
		if err != nil {
			// the parser accepted it, so keep the raw text rather than drop the edge
			path = string(raw[1 : len(raw)-1])
		}
		imp := Import{Path: path, Span: source.Span{File: tree.File.ID}}
		at, ok := literal{}, false
		for len(literals) > 0 && !ok {
			at, literals = literals[0], literals[1:]
			ok = bytes.Equal(tree.File.Content[at.start:at.end], raw)
		}
		if !ok {
			// lexer stopped early; fall back to the next textual occurrence
			if idx := bytes.Index(tree.File.Content[cursor:], raw); idx >= 0 {
				at, ok = literal{start: cursor + idx, end: cursor + idx + len(raw)}, true
			}
		}
		if ok {
			cursor = at.end
			s, errS := safecast.Conv[uint32](at.start)
			e, errE := safecast.Conv[uint32](at.end)
			if errS == nil && errE == nil {
				imp.Span.Start, imp.Span.End = s, e
			}
		}
		out = append(out, imp)
	}
	return out
}

type literal struct{ start, end int }

// moduleLiterals returns the offsets of string tokens that directly follow
// an `import` or `from` keyword. Comments and template text are tokens of
// their own, so a quoted path inside them is never a candidate.
func moduleLiterals(content []byte) []literal {
	l := js.NewLexer(parse.NewInputString(string(content)))
	var (
		out  []literal
		prev js.TokenType
		off  int
	)
	for {
		tt, data := l.Next()
		if tt == js.ErrorToken {
			return out
		}
		if (tt == js.DivToken || tt == js.DivEqToken) && !endsOperand(prev) {
			tt, data = l.RegExp()
			if tt == js.ErrorToken {
				return out
			}
		}
		start := off
		off += len(data)
		switch tt {
		case js.WhitespaceToken, js.LineTerminatorToken, js.CommentToken, js.CommentLineTerminatorToken:
			continue
		case js.StringToken:
			if prev == js.ImportToken || prev == js.FromToken {
				out = append(out, literal{start: start, end: off})
			}
		}
		prev = tt
	}
}

// endsOperand reports whether a `/` after tt is division rather than the
// start of a regular expression.
func endsOperand(tt js.TokenType) bool {
	switch tt {
	case js.StringToken, js.TemplateToken, js.TemplateEndToken, js.RegExpToken, js.PrivateIdentifierToken,
		js.CloseParenToken, js.CloseBracketToken, js.CloseBraceToken,
		js.ThisToken, js.SuperToken, js.TrueToken, js.FalseToken, js.NullToken:
		return true
	}
	return js.IsNumeric(tt) || js.IsIdentifier(tt)
}

// Paths returns the decoded import strings of imports, duplicates preserved.
func Paths(imports []Import) []string {
	out := make([]string, len(imports))
	for i, imp := range imports {
		out[i] = imp.Path
	}
	return out
}
