package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"minipack/internal/bundle"
	"minipack/internal/project"
)

const noManifestMessage = "no " + project.ManifestName + " found\nplease specify the entry module explicitly, e.g.:\n  minipack bundle src/entry.js\nor run `minipack init`"

// buildOptions is the merge of minipack.toml and command-line flags; flags
// that were set explicitly win.
type buildOptions struct {
	entry      string
	output     string // empty means stdout
	baseDir    string
	runtime    bundle.Runtime
	dedupe     bool
	jobs       int
	target     string
	extensions []string
	manifest   *project.Manifest
}

func addGraphFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("dedupe", false, "build each source once and share its identity")
	cmd.Flags().IntP("jobs", "j", 1, "build modules of one BFS wave concurrently")
	cmd.Flags().String("target", "", "JavaScript target of the transformed bodies (default es2015)")
	cmd.Flags().StringSlice("ext", nil, "extensions probed for extensionless imports")
}

// workDir is --dir resolved to an absolute path.
func workDir(cmd *cobra.Command) (string, error) {
	dir, err := cmd.Root().PersistentFlags().GetString("dir")
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	return filepath.Abs(dir)
}

func resolveBuildOptions(cmd *cobra.Command, args []string) (buildOptions, error) {
	var opts buildOptions
	dir, err := workDir(cmd)
	if err != nil {
		return opts, err
	}
	manifest, found, err := project.LoadManifest(dir)
	if err != nil {
		return opts, err
	}
	flags := cmd.Flags()

	switch {
	case len(args) > 0 && strings.TrimSpace(args[0]) != "":
		opts.entry = absIn(dir, args[0])
		opts.baseDir = dir
	case found:
		opts.entry = manifest.EntryPath()
		opts.output = manifest.OutputPath()
	default:
		return opts, errors.New(noManifestMessage)
	}
	if found {
		opts.manifest = manifest
		opts.baseDir = manifest.Root
		cfg := manifest.Config
		opts.runtime = bundle.Runtime(cfg.Bundle.Runtime)
		opts.dedupe = cfg.Bundle.Dedupe
		opts.jobs = cfg.Bundle.Jobs
		opts.target = cfg.Transform.Target
		opts.extensions = manifest.Extensions()
	}

	if flags.Lookup("output") != nil && flags.Changed("output") {
		out, _ := flags.GetString("output")
		opts.output = ""
		if out != "-" {
			opts.output = absIn(dir, out)
		}
	}
	if flags.Lookup("runtime") != nil && (flags.Changed("runtime") || opts.runtime == "") {
		value, _ := flags.GetString("runtime")
		opts.runtime = bundle.Runtime(value)
	}
	if flags.Changed("dedupe") {
		opts.dedupe, _ = flags.GetBool("dedupe")
	}
	if flags.Changed("jobs") || !found {
		opts.jobs, _ = flags.GetInt("jobs")
	}
	if opts.jobs < 0 {
		return opts, fmt.Errorf("--jobs must not be negative")
	}
	if flags.Changed("target") {
		opts.target, _ = flags.GetString("target")
	}
	if flags.Changed("ext") {
		exts, _ := flags.GetStringSlice("ext")
		opts.extensions = project.NormalizeExtensions(exts)
	}
	if len(opts.extensions) == 0 {
		opts.extensions = project.DefaultExtensions
	}
	return opts, nil
}

func absIn(dir, p string) string {
	p = filepath.FromSlash(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}

// displayPath shortens path relative to root for messages.
func displayPath(root, path string) string {
	if root == "" || path == "" {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
