package diag

import "minipack/internal/source"

type dedupKey struct {
	code  Code
	sev   Severity
	file  source.FileID
	path  string
	start uint32
	end   uint32
	msg   string
}

// DedupReporter wraps another Reporter and suppresses duplicate diagnostics
// with the same code, severity, primary location and message.
type DedupReporter struct {
	next  Reporter
	files *source.FileSet
	seen  map[dedupKey]struct{}
}

// NewDedupReporter returns a Reporter that forwards only unique diagnostics.
// With a non-nil files, spans in different loads of the same path count as
// the same location.
func NewDedupReporter(next Reporter, files *source.FileSet) *DedupReporter {
	return &DedupReporter{
		next:  next,
		files: files,
		seen:  make(map[dedupKey]struct{}),
	}
}

func (r *DedupReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if r == nil {
		return
	}
	key := dedupKey{
		code:  code,
		sev:   sev,
		file:  primary.File,
		start: primary.Start,
		end:   primary.End,
		msg:   msg,
	}
	if r.files != nil {
		if f := r.files.Get(primary.File); f != nil {
			key.file = 0
			key.path = f.Path
		}
	}
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(code, sev, primary, msg, notes)
	}
}
