package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"minipack/internal/project"
)

// starterFiles seed a new project; existing files are left alone.
var starterFiles = []struct {
	path    string
	content string
}{
	{"src/entry.js", "import message from './message.js';\n\nconsole.log(message);\n"},
	{"src/message.js", "import { name } from './name.js';\n\nexport default `hello ${name}`;\n"},
	{"src/name.js", "export const name = 'world';\n"},
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Initialize a new minipack project",
		Long: `Initialize a new project by creating minipack.toml and a small module graph
under src/. If [path] is omitted, initializes the working directory; a missing
directory is created.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := workDir(cmd)
	if err != nil {
		return err
	}
	target := dir
	if len(args) > 0 && args[0] != "." {
		target = absIn(dir, args[0])
	}

	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := os.MkdirAll(target, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	manifestPath := filepath.Join(target, project.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}
	if err := os.WriteFile(manifestPath, []byte(project.DefaultManifest(starterFiles[0].path)), 0o600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Initialized minipack project in %s\n", displayPath(dir, target))
	fmt.Fprintf(out, "  - %s\n", project.ManifestName)
	for _, f := range starterFiles {
		path := filepath.Join(target, filepath.FromSlash(f.path))
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(out, "  - %s (existing)\n", f.path)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(f.content), 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.path, err)
		}
		fmt.Fprintf(out, "  - %s\n", f.path)
	}
	return nil
}
