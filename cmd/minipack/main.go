// Package main implements the minipack CLI.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"minipack/internal/version"
)

// app carries per-invocation state shared by the commands.
type app struct {
	stdout   io.Writer
	stderr   io.Writer
	cleanups []func(failed bool)
}

func (a *app) finish(failed bool) {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i](failed)
	}
	a.cleanups = nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "minipack",
		Short: "Bundle JavaScript modules into a single script",
		Long: `minipack follows the static imports of an entry module, transforms every
module into CommonJS and emits one self-contained script with a small
runtime loader.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			traceCleanup, err := setupTracing(cmd)
			if err != nil {
				return err
			}
			a.cleanups = append(a.cleanups, traceCleanup)
			profCleanup, err := setupProfiling(cmd)
			if err != nil {
				return err
			}
			a.cleanups = append(a.cleanups, profCleanup)
			return nil
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringP("dir", "C", ".", "run as if minipack was started in this directory")
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	flags.String("diag-format", "pretty", "diagnostic format (pretty|short|json)")
	flags.String("path-mode", "relative", "how paths are shown in diagnostics (auto|absolute|relative|basename)")
	flags.String("trace", "", "trace output file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	flags.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	flags.Int("trace-ring-size", 4096, "events kept by the ring tracer")
	flags.String("cpu-profile", "", "write a CPU profile to file")
	flags.String("mem-profile", "", "write a heap profile to file")
	flags.String("runtime-trace", "", "write a Go runtime trace to file")

	root.AddCommand(newBundleCmd())
	root.AddCommand(newGraphCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// run executes the CLI and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	root := newRootCmd(a)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	a.finish(err != nil)
	if err != nil {
		reportError(root, err)
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
