package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dop251/goja"
	"github.com/vmihailenco/msgpack/v5"

	"minipack/internal/diagfmt"
	"minipack/internal/testkit"
)

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

// execute runs a bundle with console.log captured.
func execute(t *testing.T, artifact string) []string {
	t.Helper()
	vm := goja.New()
	var logs []string
	console := vm.NewObject()
	if err := console.Set("log", func(v goja.Value) { logs = append(logs, v.String()) }); err != nil {
		t.Fatal(err)
	}
	if err := vm.Set("console", console); err != nil {
		t.Fatal(err)
	}
	if _, err := vm.RunString(artifact); err != nil {
		t.Fatalf("bundle failed: %v\n%s", err, artifact)
	}
	return logs
}

func TestInitThenBundleFromManifest(t *testing.T) {
	dir := t.TempDir()
	code, stdout, stderr := runCLI(t, "-C", dir, "init", "app")
	if code != 0 {
		t.Fatalf("init failed: %s", stderr)
	}
	for _, want := range []string{"minipack.toml", "src/entry.js", "src/message.js", "src/name.js"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("init output missing %q:\n%s", want, stdout)
		}
	}
	app := filepath.Join(dir, "app")

	code, stdout, stderr = runCLI(t, "-C", app, "bundle", "--timings")
	if code != 0 {
		t.Fatalf("bundle failed: %s", stderr)
	}
	if stdout != "" {
		t.Fatalf("bundle with a manifest output wrote to stdout:\n%s", stdout)
	}
	if !strings.Contains(stderr, "bundled 3 modules into dist/bundle.js") || !strings.Contains(stderr, "emitted") {
		t.Fatalf("unexpected stderr:\n%s", stderr)
	}
	data, err := os.ReadFile(filepath.Join(app, "dist", "bundle.js"))
	if err != nil {
		t.Fatal(err)
	}
	if logs := execute(t, string(data)); len(logs) != 1 || logs[0] != "hello world" {
		t.Fatalf("bundle logged %v", logs)
	}

	if code, _, stderr = runCLI(t, "-C", dir, "init", "app"); code == 0 || !strings.Contains(stderr, "already initialized") {
		t.Fatalf("second init should fail, got %d: %s", code, stderr)
	}
}

func TestBundleExplicitEntryToStdout(t *testing.T) {
	dir := testkit.WriteFiles(t, map[string]string{
		"main.js": "import { twice } from './util';\nconsole.log(String(twice(21)));\n",
		"util.js": "export function twice(n) { return n * 2; }\n",
	})
	code, stdout, stderr := runCLI(t, "-C", dir, "bundle", "main.js", "--runtime", "lazy", "--dedupe", "-j", "2")
	if code != 0 {
		t.Fatalf("bundle failed: %s", stderr)
	}
	if !strings.HasPrefix(stdout, "(function (modules) {") {
		t.Fatalf("stdout is not a bundle:\n%s", stdout)
	}
	if logs := execute(t, stdout); len(logs) != 1 || logs[0] != "42" {
		t.Fatalf("bundle logged %v", logs)
	}
}

func TestBundleReportsDiagnostics(t *testing.T) {
	cases := []struct {
		name  string
		files map[string]string
		want  []string
	}{
		{
			name:  "missing import",
			files: map[string]string{"entry.js": "import './gone.js';\n"},
			want:  []string{"entry.js:1:", "ERROR PRJ5001", "gone.js"},
		},
		{
			name:  "syntax error",
			files: map[string]string{"entry.js": "import './a.js';\n", "a.js": "const = 1;\n"},
			want:  []string{"a.js:1:", "ERROR SYN2001", "imported here"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := testkit.WriteFiles(t, tc.files)
			code, stdout, stderr := runCLI(t, "-C", dir, "--color", "off", "bundle", "entry.js")
			if code != 1 {
				t.Fatalf("exit code = %d", code)
			}
			if stdout != "" {
				t.Fatalf("failed bundle wrote output:\n%s", stdout)
			}
			for _, want := range tc.want {
				if !strings.Contains(stderr, want) {
					t.Fatalf("stderr missing %q:\n%s", want, stderr)
				}
			}
			if strings.HasPrefix(stderr, "error: ") || strings.Contains(stderr, "\nerror: ") {
				t.Fatalf("error printed twice:\n%s", stderr)
			}
		})
	}
}

func TestBundleDiagnosticFormats(t *testing.T) {
	dir := testkit.WriteFiles(t, map[string]string{"entry.js": "import './gone.js';\n"})

	code, _, stderr := runCLI(t, "-C", dir, "--diag-format", "short", "bundle", "entry.js")
	if code != 1 || !strings.HasPrefix(stderr, "error PRJ5001 entry.js:1:") {
		t.Fatalf("short output (%d):\n%s", code, stderr)
	}

	code, _, stderr = runCLI(t, "-C", dir, "--diag-format", "json", "--path-mode", "basename", "bundle", "entry.js")
	if code != 1 {
		t.Fatalf("exit code = %d", code)
	}
	var out diagfmt.DiagnosticsOutput
	if err := json.Unmarshal([]byte(stderr), &out); err != nil {
		t.Fatalf("stderr is not JSON: %v\n%s", err, stderr)
	}
	if out.Count != 1 || out.Diagnostics[0].Code != "PRJ5001" || out.Diagnostics[0].Location.File != "entry.js" {
		t.Fatalf("unexpected diagnostics: %+v", out)
	}
	if out.Diagnostics[0].Location.StartLine != 1 {
		t.Fatalf("start line = %d", out.Diagnostics[0].Location.StartLine)
	}

	code, _, stderr = runCLI(t, "-C", dir, "--diag-format", "xml", "bundle", "entry.js")
	if code != 1 || !strings.Contains(stderr, "unknown diagnostic format") {
		t.Fatalf("got %d: %s", code, stderr)
	}
}

func TestBundleWithoutManifestOrEntry(t *testing.T) {
	code, _, stderr := runCLI(t, "-C", t.TempDir(), "bundle")
	if code != 1 || !strings.Contains(stderr, "no minipack.toml found") {
		t.Fatalf("got %d: %s", code, stderr)
	}
	code, _, stderr = runCLI(t, "-C", t.TempDir(), "bundle", "x.js", "--ui", "sideways")
	if code != 1 || !strings.Contains(stderr, "invalid --ui value") {
		t.Fatalf("got %d: %s", code, stderr)
	}
}

var diamond = map[string]string{
	"entry.js":  "import './a.js';\nimport './b.js';\n",
	"a.js":      "import './shared.js';\n",
	"b.js":      "import './shared.js';\n",
	"shared.js": "export const x = 1;\n",
}

func TestGraphJSON(t *testing.T) {
	dir := testkit.WriteFiles(t, diamond)
	code, stdout, stderr := runCLI(t, "-C", dir, "graph", "entry.js", "--format", "json", "--timings")
	if code != 0 {
		t.Fatalf("graph failed: %s", stderr)
	}
	var dump graphDump
	if err := json.Unmarshal([]byte(stdout), &dump); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, stdout)
	}
	if dump.Entry != "entry.js" || len(dump.Modules) != 5 {
		t.Fatalf("unexpected dump: entry %q, %d modules", dump.Entry, len(dump.Modules))
	}
	if got := dump.Modules[0].Mapping; got["./a.js"] != 1 || got["./b.js"] != 2 {
		t.Fatalf("entry mapping = %v", got)
	}
	if len(dump.Duplicated) != 1 || dump.Duplicated[0] != "shared.js" {
		t.Fatalf("duplicated = %v", dump.Duplicated)
	}
	if dump.Timings == nil || dump.Diagnostics.Count != 1 || dump.Diagnostics.Diagnostics[0].Code != "OBS6001" {
		t.Fatalf("timings missing: %+v", dump.Diagnostics)
	}
	if dump.Modules[0].Body != "" {
		t.Fatal("bodies included without --bodies")
	}
}

func TestGraphMsgpackDedupe(t *testing.T) {
	dir := testkit.WriteFiles(t, diamond)
	code, stdout, stderr := runCLI(t, "-C", dir, "graph", "entry.js", "--format", "msgpack", "--dedupe", "--bodies")
	if code != 0 {
		t.Fatalf("graph failed: %s", stderr)
	}
	dec := msgpack.NewDecoder(strings.NewReader(stdout))
	dec.SetCustomStructTag("json")
	var dump graphDump
	if err := dec.Decode(&dump); err != nil {
		t.Fatalf("invalid msgpack: %v", err)
	}
	if len(dump.Modules) != 4 || len(dump.Duplicated) != 0 {
		t.Fatalf("dedupe produced %d modules, duplicated %v", len(dump.Modules), dump.Duplicated)
	}
	if len(dump.Batches) != 3 {
		t.Fatalf("batches = %v", dump.Batches)
	}
	if !strings.Contains(dump.Modules[3].Body, "exports") {
		t.Fatalf("body missing: %q", dump.Modules[3].Body)
	}
}

func TestGraphPrettyCycle(t *testing.T) {
	dir := testkit.WriteFiles(t, map[string]string{
		"entry.js": "import './a.js';\n",
		"a.js":     "import './b.js';\n",
		"b.js":     "import './a.js';\n",
	})
	code, stdout, stderr := runCLI(t, "-C", dir, "--color", "off", "graph", "entry.js")
	if code != 0 {
		t.Fatalf("graph failed: %s", stderr)
	}
	for _, want := range []string{"entry: entry.js", "modules (3):", "batches:", "cycles: 1 2", "bundle hash:"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("stdout missing %q:\n%s", want, stdout)
		}
	}
	if !strings.Contains(stderr, "WARNING PRJ5004") {
		t.Fatalf("cycle warning missing:\n%s", stderr)
	}

	code, _, stderr = runCLI(t, "-C", dir, "--quiet", "graph", "entry.js")
	if code != 0 || strings.Contains(stderr, "PRJ5004") {
		t.Fatalf("--quiet still printed warnings: %s", stderr)
	}
	if code, _, _ = runCLI(t, "-C", dir, "graph", "entry.js", "--format", "xml"); code != 1 {
		t.Fatal("unknown format accepted")
	}
}

func TestTraceToStderr(t *testing.T) {
	dir := testkit.WriteFiles(t, map[string]string{"entry.js": "export const x = 1;\n"})
	code, _, stderr := runCLI(t, "-C", dir, "--trace", "-", "graph", "entry.js")
	if code != 0 {
		t.Fatalf("graph failed: %s", stderr)
	}
	if !strings.Contains(stderr, "build_graph") {
		t.Fatalf("trace missing pass span:\n%s", stderr)
	}
}

func TestVersionJSON(t *testing.T) {
	code, stdout, _ := runCLI(t, "version", "--format", "json")
	if code != 0 {
		t.Fatal("version failed")
	}
	var p versionPayload
	if err := json.Unmarshal([]byte(stdout), &p); err != nil {
		t.Fatal(err)
	}
	if p.Tool != "minipack" || len(p.Runtimes) != 2 || len(p.Targets) == 0 {
		t.Fatalf("unexpected payload %+v", p)
	}
	code, stdout, _ = runCLI(t, "--color", "off", "version", "--full")
	if code != 0 || !strings.Contains(stdout, "runtimes: cached, lazy") {
		t.Fatalf("pretty version: %s", stdout)
	}
}
