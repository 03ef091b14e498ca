// Package config handles loading and saving cfgv options.
//
// Options follow the XDG Base Directory specification:
//   - Config: ~/.config/cfgv/config.yaml
//
// The option flags mirror the viewer's behavior switches: they are read
// once at startup into a snapshot and consumed read-only by the graph
// session. Saving is only done when the user changes an option at runtime.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ViewMode names the start-up projection.
type ViewMode string

const (
	// ViewSingle shows every basic block as its own node.
	ViewSingle ViewMode = "single"
	// ViewCombined shows each node-group as a single node.
	ViewCombined ViewMode = "combined"
)

// Valid reports whether m names a known view mode.
func (m ViewMode) Valid() bool {
	return m == ViewSingle || m == ViewCombined
}

// Options is the viewer's behavior configuration.
type Options struct {
	// AppendNodeID appends the rendering node id to each node's text.
	AppendNodeID bool `yaml:"append_node_id,omitempty"`
	// ManualRefresh defers repaints after selection/highlight changes
	// until the user asks for one.
	ManualRefresh bool `yaml:"manual_refresh,omitempty"`
	// HighlightSynthetic includes machine-generated super-groups when
	// highlighting a whole super-group list.
	HighlightSynthetic bool `yaml:"highlight_synthetic,omitempty"`
	// EnlargeGroupName pads one-line group names so combined nodes don't
	// collapse to slivers.
	EnlargeGroupName bool `yaml:"enlarge_group_name,omitempty"`
	// StartViewMode is the projection used when a file is opened.
	StartViewMode ViewMode `yaml:"start_view_mode,omitempty"`
	// Debug enables debug logging (same effect as CFGV_DEBUG=1).
	Debug bool `yaml:"debug,omitempty"`
}

// Default returns the options used when no config file exists.
func Default() Options {
	return Options{
		ManualRefresh:    true,
		EnlargeGroupName: true,
		StartViewMode:    ViewCombined,
	}
}

// Dir returns the XDG config directory for cfgv.
func Dir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "cfgv")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "cfgv")
}

// Path returns the full path to config.yaml.
func Path() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the options file from the XDG config directory.
// Returns Default() if the file doesn't exist.
func Load() (Options, error) {
	path := Path()
	if path == "" {
		return Default(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads options from a specific path.
// Returns Default() if the file doesn't exist.
func LoadFrom(path string) (Options, error) {
	opts := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return opts, nil
		}
		return opts, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("parsing config: %w", err)
	}

	if !opts.StartViewMode.Valid() {
		opts.StartViewMode = ViewCombined
	}

	return opts, nil
}

// Save writes the options to the XDG config directory.
func Save(opts Options) error {
	path := Path()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(opts, path)
}

// SaveTo writes the options to a specific path.
func SaveTo(opts Options, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(opts)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
