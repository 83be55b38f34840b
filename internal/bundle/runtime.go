package bundle

import (
	"fmt"
	"strings"
)

// Runtime selects the loader the registry is wrapped in.
type Runtime string

const (
	// RuntimeCached evaluates each module once and caches its exports.
	RuntimeCached Runtime = "cached"
	// RuntimeLazy re-executes a module on every require.
	RuntimeLazy Runtime = "lazy"
)

// DefaultRuntime is used when Options.Runtime is empty.
const DefaultRuntime = RuntimeCached

// ParseRuntime parses a runtime name; empty selects DefaultRuntime.
func ParseRuntime(s string) (Runtime, error) {
	switch Runtime(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultRuntime, nil
	case RuntimeCached:
		return RuntimeCached, nil
	case RuntimeLazy:
		return RuntimeLazy, nil
	default:
		return "", fmt.Errorf("unknown runtime %q (want cached or lazy)", s)
	}
}
