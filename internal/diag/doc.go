// Package diag defines the diagnostic model shared by the bundler phases.
//
// A Diagnostic carries a Severity, a numeric Code with a stable string form
// (SYN/XFM/IO/PRJ/OBS prefixes), a short Message, a Primary span and optional
// Notes. Sources that never loaded (unreadable files) have no FileID, so the
// Path field names them instead.
//
// Producers emit through a Reporter; BagReporter stores into a Bag, which
// supports sorting and deduplication. Rendering lives in internal/diagfmt,
// except for the single-line short format used by tests and piped output.
package diag
