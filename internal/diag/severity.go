package diag

import "strings"

// Severity orders diagnostics from informational to fatal; comparisons such
// as sev >= SevWarning rely on that order.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityNames = [...]string{
	SevInfo:    "INFO",
	SevWarning: "WARNING",
	SevError:   "ERROR",
}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "UNKNOWN"
}

// label is the lower-case form used by the short format.
func (s Severity) label() string {
	return strings.ToLower(s.String())
}
