package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"minipack/internal/buildpipeline"
	"minipack/internal/diag"
	"minipack/internal/diagfmt"
	"minipack/internal/module"
	"minipack/internal/observ"
	"minipack/internal/source"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph [entry]",
		Short: "Print the module table of an entry",
		Long: `Graph builds the module table exactly like bundle does and prints every
module with its import mapping, followed by topological batches, import
cycles and aggregate module hashes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, args)
		},
	}
	addGraphFlags(cmd)
	cmd.Flags().String("format", "pretty", "output format (pretty|json|msgpack)")
	cmd.Flags().Bool("bodies", false, "include transformed module bodies")
	return cmd
}

// graphDump is the serialised form of an analysed Module Table. The json
// tags are used for msgpack as well.
type graphDump struct {
	Entry       string                    `json:"entry"`
	Modules     []moduleDump              `json:"modules"`
	Batches     [][]module.ID             `json:"batches"`
	Cycles      []module.ID               `json:"cycles,omitempty"`
	Duplicated  []string                  `json:"duplicated,omitempty"`
	BundleHash  string                    `json:"bundle_hash"`
	Diagnostics diagfmt.DiagnosticsOutput `json:"diagnostics"`
	Timings     *observ.Report            `json:"timings,omitempty"`
}

type moduleDump struct {
	ID          module.ID            `json:"id"`
	Source      string               `json:"source"`
	Imports     []string             `json:"imports"`
	Mapping     map[string]module.ID `json:"mapping"`
	ContentHash string               `json:"content_hash"`
	ModuleHash  string               `json:"module_hash"`
	Body        string               `json:"body,omitempty"`
}

func runGraph(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "pretty", "json", "msgpack":
	default:
		return fmt.Errorf("unsupported format %q (must be pretty, json or msgpack)", format)
	}
	bodies, err := cmd.Flags().GetBool("bodies")
	if err != nil {
		return err
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	printer, err := newDiagPrinter(cmd)
	if err != nil {
		return err
	}
	opts, err := resolveBuildOptions(cmd, args)
	if err != nil {
		return err
	}

	res, err := buildpipeline.Graph(cmd.Context(), &buildpipeline.GraphRequest{
		Entry:      opts.entry,
		BaseDir:    opts.baseDir,
		Dedupe:     opts.dedupe,
		Jobs:       opts.jobs,
		Target:     opts.target,
		Extensions: opts.extensions,
	})
	if err != nil {
		return printer.fail(err, res.Files)
	}
	analysis := buildpipeline.Analyze(res.Table, res.Files)
	dump := makeGraphDump(opts.baseDir, res, analysis, bodies)

	out := cmd.OutOrStdout()
	switch format {
	case "json", "msgpack":
		bag := analysis.Bag
		if timings {
			dump.Timings = &res.Report
			bag.Merge(timingsBag(res.Report))
		}
		bag.Sort()
		dump.Diagnostics = diagfmt.BuildDiagnosticsOutput(bag, res.Files, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         printer.pathMode,
			Max:              printer.max,
			IncludeNotes:     true,
		})
		if format == "json" {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(dump)
		}
		enc := msgpack.NewEncoder(out)
		enc.SetCustomStructTag("json")
		return enc.Encode(dump)
	default:
		writeGraphPretty(out, dump)
		printer.print(analysis.Bag, res.Files)
		if timings {
			fmt.Fprint(cmd.ErrOrStderr(), res.Report.Summary())
		}
		return nil
	}
}

func makeGraphDump(baseDir string, res buildpipeline.GraphResult, a *buildpipeline.Analysis, bodies bool) graphDump {
	dump := graphDump{
		Modules:    make([]moduleDump, len(res.Table)),
		Batches:    a.Topo.Batches,
		Cycles:     a.Topo.Cycles,
		BundleHash: a.BundleHash().String(),
	}
	if entry := res.Table.Entry(); entry != nil {
		dump.Entry = displayPath(baseDir, entry.Source)
	}
	for _, name := range a.Index.Duplicated() {
		dump.Duplicated = append(dump.Duplicated, displayPath(baseDir, name))
	}
	for i, d := range res.Table {
		m := moduleDump{
			ID:          d.ID,
			Source:      displayPath(baseDir, d.Source),
			Imports:     d.ImportPaths(),
			Mapping:     d.Mapping,
			ContentHash: d.ContentHash.String(),
			ModuleHash:  a.Hashes[i].String(),
		}
		if m.Imports == nil {
			m.Imports = []string{}
		}
		if m.Mapping == nil {
			m.Mapping = map[string]module.ID{}
		}
		if bodies {
			m.Body = d.Body
		}
		dump.Modules[i] = m
	}
	return dump
}

func writeGraphPretty(w io.Writer, dump graphDump) {
	fmt.Fprintf(w, "entry: %s\n", dump.Entry)
	fmt.Fprintf(w, "modules (%d):\n", len(dump.Modules))
	width := 0
	for _, m := range dump.Modules {
		width = max(width, len(m.Source))
	}
	for _, m := range dump.Modules {
		edges := make([]string, 0, len(m.Mapping))
		seen := make(map[string]bool, len(m.Imports))
		for _, p := range m.Imports {
			if seen[p] {
				continue
			}
			seen[p] = true
			edges = append(edges, fmt.Sprintf("%q -> %d", p, m.Mapping[p]))
		}
		fmt.Fprintf(w, "  %3d  %-*s  %s  %s\n", m.ID, width, m.Source, short(m.ModuleHash), strings.Join(edges, ", "))
		if m.Body != "" {
			for _, line := range strings.Split(strings.TrimRight(m.Body, "\n"), "\n") {
				fmt.Fprintf(w, "       | %s\n", line)
			}
		}
	}
	fmt.Fprintln(w, "batches:")
	for i, batch := range dump.Batches {
		ids := make([]string, len(batch))
		for j, id := range batch {
			ids[j] = fmt.Sprint(id)
		}
		fmt.Fprintf(w, "  %d: %s\n", i, strings.Join(ids, " "))
	}
	if len(dump.Cycles) > 0 {
		ids := make([]string, len(dump.Cycles))
		for i, id := range dump.Cycles {
			ids[i] = fmt.Sprint(id)
		}
		fmt.Fprintf(w, "cycles: %s\n", strings.Join(ids, " "))
	}
	if len(dump.Duplicated) > 0 {
		fmt.Fprintf(w, "built more than once: %s\n", strings.Join(dump.Duplicated, ", "))
	}
	fmt.Fprintf(w, "bundle hash: %s\n", short(dump.BundleHash))
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

// timingsBag reports phase timings as one informational diagnostic.
func timingsBag(report observ.Report) *diag.Bag {
	d := diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, fmt.Sprintf("pipeline took %.2f ms", report.TotalMS))
	for _, p := range report.Phases {
		msg := fmt.Sprintf("%s %.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			msg += " (" + p.Note + ")"
		}
		d.WithNote(source.Span{}, msg)
	}
	bag := diag.NewBag(1)
	bag.Add(d)
	return bag
}
