package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestName is the project configuration file looked up by the CLI.
const ManifestName = "minipack.toml"

// ErrEntryMissing indicates that [bundle].entry is absent or blank.
var ErrEntryMissing = errors.New("missing [bundle].entry")

// Config mirrors minipack.toml.
type Config struct {
	Bundle    BundleConfig    `toml:"bundle"`
	Transform TransformConfig `toml:"transform"`
	Resolve   ResolveConfig   `toml:"resolve"`
}

type BundleConfig struct {
	Entry   string `toml:"entry"`
	Output  string `toml:"output"`
	Runtime string `toml:"runtime"` // cached | lazy
	Dedupe  bool   `toml:"dedupe"`
	Jobs    int    `toml:"jobs"`
}

type TransformConfig struct {
	Target string `toml:"target"`
}

type ResolveConfig struct {
	Extensions []string `toml:"extensions"`
}

// Manifest is a loaded minipack.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// FindManifest walks up from startDir looking for minipack.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadManifest finds and parses the manifest governing startDir.
// ok is false when there is none.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// LoadConfig parses and validates one manifest file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if !meta.IsDefined("bundle", "entry") || strings.TrimSpace(cfg.Bundle.Entry) == "" {
		return Config{}, fmt.Errorf("%s: %w", path, ErrEntryMissing)
	}
	switch cfg.Bundle.Runtime {
	case "", "cached", "lazy":
	default:
		return Config{}, fmt.Errorf("%s: invalid [bundle].runtime %q (expected cached|lazy)", path, cfg.Bundle.Runtime)
	}
	if cfg.Bundle.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: [bundle].jobs must not be negative", path)
	}
	cfg.Resolve.Extensions = NormalizeExtensions(cfg.Resolve.Extensions)
	return cfg, nil
}

// EntryPath resolves [bundle].entry against the manifest directory.
func (m *Manifest) EntryPath() string {
	return m.resolve(m.Config.Bundle.Entry)
}

// OutputPath resolves [bundle].output; empty means stdout.
func (m *Manifest) OutputPath() string {
	if strings.TrimSpace(m.Config.Bundle.Output) == "" {
		return ""
	}
	return m.resolve(m.Config.Bundle.Output)
}

// Extensions returns the configured resolution extensions or the defaults.
func (m *Manifest) Extensions() []string {
	if m == nil || len(m.Config.Resolve.Extensions) == 0 {
		return DefaultExtensions
	}
	return m.Config.Resolve.Extensions
}

func (m *Manifest) resolve(p string) string {
	p = filepath.FromSlash(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Root, p)
}

// DefaultManifest is the minipack.toml written by `minipack init`.
func DefaultManifest(entry string) string {
	return fmt.Sprintf(`[bundle]
entry = %q
output = "dist/bundle.js"
runtime = "cached"
dedupe = false
jobs = 1

[transform]
target = "es2015"

[resolve]
extensions = [".js", ".mjs"]
`, filepath.ToSlash(entry))
}
