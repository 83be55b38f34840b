// Package bundle serialises a Module Table into a single self-contained
// script: a registry literal wrapped in an embedded runtime loader.
package bundle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"minipack/internal/graph"
	"minipack/internal/module"
	runtimeembed "minipack/runtime"
)

// Options control emission.
type Options struct {
	Runtime Runtime
}

// Emit validates the table and returns the bundle artifact.
func Emit(table graph.Table, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, table, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write emits the artifact to w. Nothing is written when the table is broken
// or the runtime is unknown.
func Write(w io.Writer, table graph.Table, opts Options) error {
	if err := table.Validate(); err != nil {
		return err
	}
	rt, err := ParseRuntime(string(opts.Runtime))
	if err != nil {
		return err
	}
	loader, err := runtimeembed.Loader(string(rt))
	if err != nil {
		return err
	}
	var sb strings.Builder
	sb.WriteString("(")
	sb.WriteString(loader)
	sb.WriteString(")({\n")
	for _, d := range table {
		mapping, err := mappingLiteral(d)
		if err != nil {
			return err
		}
		fmt.Fprintf(&sb, "  %d: [\n", d.ID)
		sb.WriteString("    function (require, module, exports) {\n")
		sb.WriteString(d.Body)
		// the body may end in a line comment
		if !strings.HasSuffix(d.Body, "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString("    },\n")
		fmt.Fprintf(&sb, "    %s,\n", mapping)
		sb.WriteString("  ],\n")
	}
	sb.WriteString("});\n")
	_, err = io.WriteString(w, sb.String())
	return err
}

// mappingLiteral renders the mapping as a JSON object with sorted keys.
func mappingLiteral(d *module.Descriptor) (string, error) {
	m := d.Mapping
	if m == nil {
		m = map[string]module.ID{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return "", fmt.Errorf("module %d: encode mapping: %w", d.ID, err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
