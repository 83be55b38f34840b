// Package transform turns parsed modules into CommonJS bodies the bundle
// runtime can execute.
package transform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"minipack/internal/jsparse"
)

// Error is returned when the transformer rejects a module.
type Error struct {
	Path     string
	Line     int // 1-based, 0 when unknown
	Column   int // 1-based, 0 when unknown
	LineText string
	Message  string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// DefaultTarget is the dialect bodies are lowered to unless configured.
const DefaultTarget = "es2015"

var targets = map[string]api.Target{
	"es5":    api.ES5,
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"esnext": api.ESNext,
}

// Targets lists the accepted target names.
func Targets() []string {
	out := make([]string, 0, len(targets))
	for name := range targets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Options configures ESBuild.
type Options struct {
	Target string
}

// ESBuild rewrites ES module syntax into CommonJS with esbuild's transform API.
// esbuild takes source text rather than a syntax tree, so Transform reads
// tree.File and ignores tree.AST. Both parsers decode import literals by JS
// string rules, so every path jsparse extracts appears verbatim in a
// require call of the output.
type ESBuild struct {
	target api.Target
}

// NewESBuild validates opts and returns a transformer.
func NewESBuild(opts Options) (*ESBuild, error) {
	name := strings.ToLower(strings.TrimSpace(opts.Target))
	if name == "" {
		name = DefaultTarget
	}
	target, ok := targets[name]
	if !ok {
		return nil, fmt.Errorf("unknown transform target %q (want one of %s)", opts.Target, strings.Join(Targets(), ", "))
	}
	return &ESBuild{target: target}, nil
}

// Transform returns the CommonJS body of tree.
func (e *ESBuild) Transform(tree *jsparse.Tree) (string, error) {
	if tree == nil || tree.File == nil {
		return "", fmt.Errorf("transform: nil tree")
	}
	res := api.Transform(string(tree.File.Content), api.TransformOptions{
		Loader:     api.LoaderJS,
		Format:     api.FormatCommonJS,
		Target:     e.target,
		Sourcefile: tree.File.Path,
		LogLevel:   api.LogLevelSilent,
	})
	if len(res.Errors) > 0 {
		return "", messageError(tree.File.Path, res.Errors[0])
	}
	return string(res.Code), nil
}

func messageError(path string, msg api.Message) error {
	e := &Error{Path: path, Message: msg.Text}
	if loc := msg.Location; loc != nil {
		e.Line = loc.Line
		e.Column = loc.Column + 1
		e.LineText = loc.LineText
	}
	return e
}

// Passthrough returns module source unchanged. Useful for inputs that are
// already CommonJS and for tests that need byte-exact bodies.
type Passthrough struct{}

func (Passthrough) Transform(tree *jsparse.Tree) (string, error) {
	if tree == nil || tree.File == nil {
		return "", fmt.Errorf("transform: nil tree")
	}
	return string(tree.File.Content), nil
}
