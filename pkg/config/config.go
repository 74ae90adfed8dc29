// Package config handles loading and saving pscope configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/pscope/config.yaml
//   - Data:    ~/.local/share/pscope/ (exported snapshots)
//   - State:   ~/.local/state/pscope/ (recent jobs)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// JobEntry is a registered job directory in the config.
type JobEntry struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// UIConfig holds viewer preference settings.
type UIConfig struct {
	Theme          string `yaml:"theme,omitempty"`           // dark, light
	DefaultZoom    int    `yaml:"default_zoom,omitempty"`    // initial viewport span in reference bases
	ReverseDisplay bool   `yaml:"reverse_display,omitempty"` // show reverse reads complemented by default
	ShowQualities  bool   `yaml:"show_qualities,omitempty"`  // overlay basecall quality bars
}

// TraceConfig controls chromatogram surface rendering.
type TraceConfig struct {
	SurfaceWidth  int     `yaml:"surface_width,omitempty"`  // pixels
	SurfaceHeight int     `yaml:"surface_height,omitempty"` // pixels
	VerticalZoom  float64 `yaml:"vertical_zoom,omitempty"`  // amplitude scale factor
}

// ExportConfig holds snapshot export defaults.
type ExportConfig struct {
	Format string `yaml:"format,omitempty"` // png, svg
	Dir    string `yaml:"dir,omitempty"`    // output directory
}

// WatchConfig controls live-reload behavior.
type WatchConfig struct {
	Enabled      *bool  `yaml:"enabled,omitempty"`
	PollInterval string `yaml:"poll_interval,omitempty"` // Go duration string
}

// Config is the top-level configuration for pscope.
type Config struct {
	Jobs      []JobEntry     `yaml:"jobs,omitempty"`
	Favorites map[int]string `yaml:"favorites,omitempty"` // number key (1-9) -> job name
	UI        UIConfig       `yaml:"ui,omitempty"`
	Trace     TraceConfig    `yaml:"trace,omitempty"`
	Export    ExportConfig   `yaml:"export,omitempty"`
	Watch     WatchConfig    `yaml:"watch,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Favorites: make(map[int]string),
		UI: UIConfig{
			Theme:       "dark",
			DefaultZoom: 100,
		},
		Trace: TraceConfig{
			SurfaceWidth:  1200,
			SurfaceHeight: 240,
			VerticalZoom:  1.0,
		},
		Export: ExportConfig{
			Format: "svg",
		},
	}
}

// ConfigDir returns the XDG config directory for pscope.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "pscope")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "pscope")
}

// DataDir returns the XDG data directory for pscope.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "pscope")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "pscope")
}

// StateDir returns the XDG state directory for pscope.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "pscope")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "pscope")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Favorites == nil {
		cfg.Favorites = make(map[int]string)
	}

	// A config with zoom 0 would collapse the viewport on startup.
	if cfg.UI.DefaultZoom < 1 {
		cfg.UI.DefaultZoom = DefaultConfig().UI.DefaultZoom
	}
	if cfg.Trace.SurfaceWidth < 1 {
		cfg.Trace.SurfaceWidth = DefaultConfig().Trace.SurfaceWidth
	}
	if cfg.Trace.SurfaceHeight < 1 {
		cfg.Trace.SurfaceHeight = DefaultConfig().Trace.SurfaceHeight
	}
	if cfg.Trace.VerticalZoom <= 0 {
		cfg.Trace.VerticalZoom = 1.0
	}

	for i := range cfg.Jobs {
		cfg.Jobs[i].Path = expandHome(cfg.Jobs[i].Path)
	}
	cfg.Export.Dir = expandHome(cfg.Export.Dir)

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// FindJob returns the job entry with the given name, or nil.
func (c Config) FindJob(name string) *JobEntry {
	for i := range c.Jobs {
		if strings.EqualFold(c.Jobs[i].Name, name) {
			return &c.Jobs[i]
		}
	}
	return nil
}

// FavoriteJob returns the job assigned to number key n (1-9), or nil.
func (c Config) FavoriteJob(n int) *JobEntry {
	name, ok := c.Favorites[n]
	if !ok {
		return nil
	}
	return c.FindJob(name)
}

// SetFavorite assigns a job name to a number key (1-9).
func (c *Config) SetFavorite(n int, jobName string) {
	if c.Favorites == nil {
		c.Favorites = make(map[int]string)
	}
	if jobName == "" {
		delete(c.Favorites, n)
	} else {
		c.Favorites[n] = jobName
	}
}

// WatchEnabled reports whether live-reload is on (default true).
func (c Config) WatchEnabled() bool {
	if c.Watch.Enabled == nil {
		return true
	}
	return *c.Watch.Enabled
}

// ResolvedPath returns the job path with ~ expanded.
func (e JobEntry) ResolvedPath() string {
	return expandHome(e.Path)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
