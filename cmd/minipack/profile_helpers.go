package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"minipack/internal/prof"
)

// setupProfiling starts the profilers requested by the persistent flags.
func setupProfiling(cmd *cobra.Command) (func(failed bool), error) {
	flags := cmd.Root().PersistentFlags()

	var cfg prof.Config
	var err error
	if cfg.CPUProfile, err = flags.GetString("cpu-profile"); err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if cfg.MemProfile, err = flags.GetString("mem-profile"); err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if cfg.RuntimeTrace, err = flags.GetString("runtime-trace"); err != nil {
		return nil, fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if !cfg.Enabled() {
		return func(bool) {}, nil
	}

	session, err := prof.Start(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to start profiling: %w", err)
	}
	errOut := cmd.ErrOrStderr()
	return func(bool) {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(errOut, "failed to write profiles: %v\n", err)
		}
	}, nil
}
