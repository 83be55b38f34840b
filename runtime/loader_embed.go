// Package runtimeembed provides the embedded runtime loaders that bundles
// are wrapped in.
package runtimeembed

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
)

//go:embed loader/*.js
var loaderFS embed.FS

// LoaderFS exposes the embedded loader sources.
func LoaderFS() fs.FS {
	return loaderFS
}

// Loader returns the source of loader/<name>.js without its trailing newline.
// The source is a function expression taking the module registry.
func Loader(name string) (string, error) {
	data, err := loaderFS.ReadFile("loader/" + name + ".js")
	if err != nil {
		return "", fmt.Errorf("unknown runtime loader %q: %w", name, err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}
