package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"minipack/internal/buildpipeline"
)

func newBundleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bundle [entry]",
		Short: "Bundle an entry module and its imports into one script",
		Long: `Bundle follows the static imports of the entry module, transforms each
module into CommonJS and emits a single script. Without an entry argument the
entry and output come from minipack.toml. Without an output the script is
printed to stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBundle(cmd, args)
		},
	}
	addGraphFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "write the bundle to this file (- for stdout)")
	cmd.Flags().String("runtime", "cached", "runtime loader (cached|lazy)")
	cmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
	return cmd
}

func runBundle(cmd *cobra.Command, args []string) error {
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiValue)
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

	req := buildpipeline.BundleRequest{
		GraphRequest: buildpipeline.GraphRequest{
			Entry:      opts.entry,
			BaseDir:    opts.baseDir,
			Dedupe:     opts.dedupe,
			Jobs:       opts.jobs,
			Target:     opts.target,
			Extensions: opts.extensions,
		},
		Runtime:    opts.runtime,
		OutputPath: opts.output,
	}
	if opts.output == "" {
		req.Writer = cmd.OutOrStdout()
	}

	errOut := cmd.ErrOrStderr()
	var res buildpipeline.BundleResult
	if shouldUseTUI(mode, errOut) {
		title := "minipack bundle " + displayPath(opts.baseDir, opts.entry)
		res, err = runBundleWithUI(cmd.Context(), title, errOut, &req)
	} else {
		res, err = buildpipeline.Bundle(cmd.Context(), &req)
	}
	if timings {
		defer printStageTimings(errOut, res.Timings)
	}
	if err != nil {
		return printer.fail(err, res.Files)
	}

	if res.Analysis != nil {
		printer.print(res.Analysis.Bag, res.Files)
	}
	if res.OutputPath != "" && !printer.quiet {
		fmt.Fprintf(errOut, "bundled %d modules into %s (%s)\n",
			len(res.Table), displayPath(opts.baseDir, res.OutputPath), res.Analysis.BundleHash().Short())
	}
	return nil
}
