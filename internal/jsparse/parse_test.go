package jsparse

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"minipack/internal/source"
)

func parseString(t *testing.T, name, src string) (*source.FileSet, *Tree, error) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual(name, []byte(src))
	tree, err := Parser{}.Parse(fs.Get(id))
	return fs, tree, err
}

func TestStaticImportsDeclarationOrder(t *testing.T) {
	src := `import message from "./message.js";
import { a, b as c } from './ab.js';
import "./side-effect.js";
export { name } from "./name.js";
export * from "./all.js";
import again from "./message.js";
export const local = 1;
`
	_, tree, err := parseString(t, "entry.js", src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	imports := StaticImports{}.Imports(tree)
	got := Paths(imports)
	want := []string{"./message.js", "./ab.js", "./side-effect.js", "./name.js", "./all.js", "./message.js"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("imports = %v, want %v", got, want)
	}

	// duplicate literals get distinct spans
	first, last := imports[0].Span, imports[5].Span
	if first.Start == last.Start {
		t.Fatalf("duplicate imports share a span: %v", first)
	}
	if lit := src[first.Start:first.End]; lit != `"./message.js"` {
		t.Fatalf("span covers %q", lit)
	}
	if lit := src[imports[1].Span.Start:imports[1].Span.End]; lit != `'./ab.js'` {
		t.Fatalf("span covers %q", lit)
	}
}

func TestStaticImportsDecodeLiterals(t *testing.T) {
	src := "import v from './a\\x2ejs';\nexport * from \"./\\u0062.js\";\n"
	_, tree, err := parseString(t, "entry.js", src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	imports := StaticImports{}.Imports(tree)
	if got, want := Paths(imports), []string{"./a.js", "./b.js"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("imports = %v, want %v", got, want)
	}
	if lit := src[imports[0].Span.Start:imports[0].Span.End]; lit != `'./a\x2ejs'` {
		t.Fatalf("span covers %q, want the raw literal", lit)
	}
}

func TestStaticImportsSpanSkipsCommentsAndTemplates(t *testing.T) {
	src := `// see "./a.js" for details
/* import x from "./a.js" */
const hint = ` + "`import \"./a.js\"`" + `;
const re = /"\.\/a\.js"/;
import a from "./a.js";
`
	_, tree, err := parseString(t, "entry.js", src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	imports := StaticImports{}.Imports(tree)
	if len(imports) != 1 {
		t.Fatalf("expected one import, got %v", Paths(imports))
	}
	want := strings.LastIndex(src, `"./a.js"`)
	if got := int(imports[0].Span.Start); got != want {
		t.Fatalf("span starts at %d, want %d (%q)", got, want, src[got:])
	}
}

func TestStaticImportsNone(t *testing.T) {
	_, tree, err := parseString(t, "leaf.js", "export function add(a, b) { return a + b; }\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := (StaticImports{}).Imports(tree); len(got) != 0 {
		t.Fatalf("expected no imports, got %v", got)
	}
	if got := (StaticImports{}).Imports(nil); got != nil {
		t.Fatalf("nil tree must yield nil, got %v", got)
	}
}

func TestParseErrorCarriesPosition(t *testing.T) {
	fs, _, err := parseString(t, "broken.js", "const ok = 1;\nconst = ;\n")
	if err == nil {
		t.Fatal("expected parse error")
	}
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SyntaxError, got %T", err)
	}
	if se.Line != 2 {
		t.Fatalf("expected error on line 2, got %d (%v)", se.Line, err)
	}
	start, _ := fs.Resolve(se.Span)
	if start.Line != 2 {
		t.Fatalf("span resolves to line %d", start.Line)
	}
	if se.Path != "broken.js" {
		t.Fatalf("unexpected path %q", se.Path)
	}
}
