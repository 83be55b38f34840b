package jsparse

import (
	"errors"
	"fmt"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"

	"minipack/internal/source"
)

// Tree is a parsed module together with the file it was parsed from.
type Tree struct {
	File *source.File
	AST  *js.AST
}

// SyntaxError reports malformed source. Span points at the offending byte
// when the front end reports a position.
type SyntaxError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Span    source.Span
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Parser is the tdewolff-backed front end.
type Parser struct {
	Options js.Options
}

// Parse parses the content of file as an ES module.
func (p Parser) Parse(file *source.File) (*Tree, error) {
	if file == nil {
		return nil, errors.New("jsparse: nil file")
	}
	ast, err := js.Parse(parse.NewInputString(string(file.Content)), p.Options)
	if err != nil {
		return nil, syntaxError(file, err)
	}
	return &Tree{File: file, AST: ast}, nil
}

func syntaxError(file *source.File, err error) error {
	se := &SyntaxError{Path: file.Path, Message: err.Error(), Span: source.Span{File: file.ID}}
	var perr *parse.Error
	if errors.As(err, &perr) {
		se.Line, se.Column, _ = perr.Position()
		se.Message = perr.Message
		if off, ok := file.OffsetOf(se.Line, se.Column); ok {
			se.Span.Start, se.Span.End = off, off
			if int(off) < len(file.Content) {
				se.Span.End = off + 1
			}
		}
	}
	return se
}
