package diag

import (
	"minipack/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	// Path names the offending file when Primary cannot point into a loaded file
	// (unreadable sources have no FileID).
	Path  string
	Notes []Note
}
