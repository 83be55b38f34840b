package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrEmptyImport is returned for an empty import literal.
var ErrEmptyImport = errors.New("empty import path")

// DefaultExtensions are tried when an import names a file without extension.
var DefaultExtensions = []string{".js", ".mjs", ".cjs"}

// ResolveImport joins importPath onto dir the way the original bundler did
// (so "/x.js" and "x.js" both land inside dir) and then probes, in order:
// the joined path itself, the joined path plus each extension, and the
// index file of a directory. When nothing exists the joined path is
// returned unchanged so the read reports the failure.
func ResolveImport(dir, importPath string, extensions []string) (string, error) {
	if strings.TrimSpace(importPath) == "" {
		return "", ErrEmptyImport
	}
	if strings.ContainsRune(importPath, 0) {
		return "", fmt.Errorf("import path %q contains a NUL byte", importPath)
	}
	joined := filepath.Join(dir, filepath.FromSlash(importPath))

	if isFile(joined) {
		return joined, nil
	}
	for _, ext := range extensions {
		if isFile(joined + ext) {
			return joined + ext, nil
		}
	}
	if info, err := os.Stat(joined); err == nil && info.IsDir() {
		for _, ext := range extensions {
			index := filepath.Join(joined, "index"+ext)
			if isFile(index) {
				return index, nil
			}
		}
	}
	return joined, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// CanonicalPath is the identity of a resolved location: absolute, cleaned,
// forward slashes, Unicode NFC. Two spellings of one file compare equal.
func CanonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return norm.NFC.String(filepath.ToSlash(abs))
}

// NormalizeExtensions trims, dedupes and dot-prefixes extension entries.
func NormalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	seen := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if seen[ext] {
			continue
		}
		seen[ext] = true
		out = append(out, ext)
	}
	return out
}
