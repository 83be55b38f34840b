package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"minipack/internal/bundle"
	"minipack/internal/transform"
	"minipack/internal/version"
)

const versionTagline = "one entry, one script"

type versionPayload struct {
	Tool      string   `json:"tool"`
	Version   string   `json:"version"`
	Tagline   string   `json:"tagline"`
	GitCommit string   `json:"git_commit,omitempty"`
	BuildDate string   `json:"build_date,omitempty"`
	Runtimes  []string `json:"runtimes"`
	Targets   []string `json:"targets"`
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show minipack build metadata",
		RunE:  runVersion,
	}
	cmd.Flags().Bool("full", false, "include commit, build date and supported targets")
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}

func runVersion(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	full, err := cmd.Flags().GetBool("full")
	if err != nil {
		return err
	}
	payload := versionPayload{
		Tool:      "minipack",
		Version:   strings.TrimSpace(version.Version),
		Tagline:   versionTagline,
		GitCommit: strings.TrimSpace(version.GitCommit),
		BuildDate: strings.TrimSpace(version.BuildDate),
		Runtimes:  []string{string(bundle.RuntimeCached), string(bundle.RuntimeLazy)},
		Targets:   transform.Targets(),
	}
	if payload.Version == "" {
		payload.Version = "dev"
	}

	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	case "pretty":
		colorValue, err := cmd.Root().PersistentFlags().GetString("color")
		if err != nil {
			return err
		}
		colored, err := readColor(colorValue, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		renderVersionPretty(cmd.OutOrStdout(), payload, colored, full)
		return nil
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
}

func renderVersionPretty(out io.Writer, p versionPayload, colored, full bool) {
	v := p.Version
	if colored && v == version.Version {
		v = version.Colored()
	}
	fmt.Fprintf(out, "minipack %s: %s\n", v, p.Tagline)
	if !full {
		return
	}
	fmt.Fprintf(out, "commit:   %s\n", valueOrUnknown(p.GitCommit))
	fmt.Fprintf(out, "built:    %s\n", valueOrUnknown(p.BuildDate))
	fmt.Fprintf(out, "runtimes: %s\n", strings.Join(p.Runtimes, ", "))
	fmt.Fprintf(out, "targets:  %s\n", strings.Join(p.Targets, ", "))
}

func valueOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
