package transform

import (
	"errors"
	"strings"
	"testing"

	"minipack/internal/jsparse"
	"minipack/internal/source"
)

func treeOf(t *testing.T, name, src string) *jsparse.Tree {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual(name, []byte(src))
	return &jsparse.Tree{File: fs.Get(id)}
}

func TestESBuildProducesCommonJS(t *testing.T) {
	tr, err := NewESBuild(Options{})
	if err != nil {
		t.Fatalf("NewESBuild: %v", err)
	}
	body, err := tr.Transform(treeOf(t, "entry.js", "import message from './message.js';\nexport const out = message;\n"))
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if !strings.Contains(body, `require("./message.js")`) {
		t.Fatalf("expected require call in body:\n%s", body)
	}
	if !strings.Contains(body, "module.exports") {
		t.Fatalf("expected module.exports assignment in body:\n%s", body)
	}
	if strings.Contains(body, "import message") {
		t.Fatalf("import declaration survived transform:\n%s", body)
	}
}

func TestESBuildRequiresEveryExtractedImport(t *testing.T) {
	src := "import message from './message.js';\n" +
		"import { a } from './a\\x2ejs';\n" +
		"import './side-effect.js';\n" +
		"export { name } from \"./n\\u0061me.js\";\n" +
		"export * from './all.js';\n" +
		"console.log(message, a);\n"
	fs := source.NewFileSet()
	tree, err := jsparse.Parser{}.Parse(fs.Get(fs.AddVirtual("entry.js", []byte(src))))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	paths := jsparse.Paths(jsparse.StaticImports{}.Imports(tree))
	if len(paths) != 5 {
		t.Fatalf("extracted %v", paths)
	}

	tr, err := NewESBuild(Options{})
	if err != nil {
		t.Fatalf("NewESBuild: %v", err)
	}
	body, err := tr.Transform(tree)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	for _, p := range paths {
		if call := `require("` + p + `")`; !strings.Contains(body, call) {
			t.Errorf("body has no %s:\n%s", call, body)
		}
	}
}

func TestESBuildUnknownTarget(t *testing.T) {
	if _, err := NewESBuild(Options{Target: "es1999"}); err == nil {
		t.Fatal("expected error for unknown target")
	}
	if _, err := NewESBuild(Options{Target: " ESNext "}); err != nil {
		t.Fatalf("target names are case-insensitive: %v", err)
	}
}

func TestESBuildRejectsInvalidInput(t *testing.T) {
	tr, err := NewESBuild(Options{Target: "es2020"})
	if err != nil {
		t.Fatal(err)
	}
	_, err = tr.Transform(treeOf(t, "bad.js", "let a = 1;\nlet a = 2;\n"))
	var te *Error
	if !errors.As(err, &te) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if te.Line != 2 || te.Path != "bad.js" {
		t.Fatalf("unexpected location %+v", te)
	}
}

func TestPassthrough(t *testing.T) {
	src := "module.exports = 42;\n"
	body, err := Passthrough{}.Transform(treeOf(t, "a.js", src))
	if err != nil || body != src {
		t.Fatalf("Passthrough = %q, %v", body, err)
	}
	if _, err := (Passthrough{}).Transform(nil); err == nil {
		t.Fatal("expected error for nil tree")
	}
}
