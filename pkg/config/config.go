// Package config loads and saves votemap configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/votemap/config.yaml
//   - State:  ~/.local/state/votemap/ (exports written without an explicit path)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/votemap/pkg/results"
)

// DataConfig names where the static datasets live.
type DataConfig struct {
	// Source is a local directory or an http(s) base URL.
	Source         string `yaml:"source,omitempty"`
	Districts      string `yaml:"districts,omitempty"`
	Constituencies string `yaml:"constituencies,omitempty"`
	Metadata       string `yaml:"metadata,omitempty"`
	// ElectionPattern is a fmt pattern taking the year, e.g. "elections-%d.json".
	ElectionPattern string        `yaml:"election_pattern,omitempty"`
	Timeout         time.Duration `yaml:"timeout,omitempty"`
}

// MapConfig holds viewport limits and the layer thresholds.
type MapConfig struct {
	ConstituencyMinZoom float64    `yaml:"constituency_min_zoom,omitempty"`
	LabelMinZoom        float64    `yaml:"label_min_zoom,omitempty"`
	InitialZoom         float64    `yaml:"initial_zoom,omitempty"`
	MinZoom             float64    `yaml:"min_zoom,omitempty"`
	MaxZoom             float64    `yaml:"max_zoom,omitempty"`
	Center              [2]float64 `yaml:"center,flow,omitempty"` // lat, lon
}

// SearchConfig tunes candidate search.
type SearchConfig struct {
	Debounce time.Duration `yaml:"debounce,omitempty"`
	Limit    int           `yaml:"limit,omitempty"`
	MinQuery int           `yaml:"min_query,omitempty"`
}

// WatchConfig controls reloading when local data files change.
type WatchConfig struct {
	Enabled   bool          `yaml:"enabled,omitempty"`
	Debounce  time.Duration `yaml:"debounce,omitempty"`
	ForcePoll bool          `yaml:"force_poll,omitempty"`
}

// ExportConfig holds defaults for snapshot rendering.
type ExportConfig struct {
	Width  int `yaml:"width,omitempty"`
	Height int `yaml:"height,omitempty"`
}

// Config is the top-level votemap configuration.
type Config struct {
	Data DataConfig `yaml:"data,omitempty"`
	// Years lists the election years in declared order. History walks them
	// in this order.
	Years []int `yaml:"years,flow,omitempty"`
	// DefaultYear seeds the overlay year cursor when no global year is active.
	DefaultYear int          `yaml:"default_year,omitempty"`
	Map         MapConfig    `yaml:"map,omitempty"`
	Search      SearchConfig `yaml:"search,omitempty"`
	Watch       WatchConfig  `yaml:"watch,omitempty"`
	Export      ExportConfig `yaml:"export,omitempty"`
}

// DefaultConfig returns a Config with the Tamil Nadu defaults.
func DefaultConfig() Config {
	return Config{
		Data: DataConfig{
			Source:          "data",
			Districts:       "tn-districts.geojson",
			Constituencies:  "tn-constituencies.geojson",
			Metadata:        "constituencies.json",
			ElectionPattern: "elections-%d.json",
			Timeout:         15 * time.Second,
		},
		Years:       []int{2021, 2016, 2011},
		DefaultYear: 2021,
		Map: MapConfig{
			ConstituencyMinZoom: 9,
			LabelMinZoom:        9,
			InitialZoom:         7,
			MinZoom:             6,
			MaxZoom:             14,
			Center:              [2]float64{11.1271, 78.6569},
		},
		Search: SearchConfig{
			Debounce: 300 * time.Millisecond,
			Limit:    50,
			MinQuery: 2,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: 200 * time.Millisecond,
		},
		Export: ExportConfig{
			Width:  1200,
			Height: 1400,
		},
	}
}

// ElectionFile returns the dataset file name for year.
func (c Config) ElectionFile(year int) string {
	return fmt.Sprintf(c.Data.ElectionPattern, year)
}

// IsRemote reports whether the data source is an http(s) URL.
func (c Config) IsRemote() bool {
	s := strings.ToLower(c.Data.Source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Validate reports the first inconsistency in c.
func (c Config) Validate() error {
	var errs []error
	if c.Data.Source == "" {
		errs = append(errs, errors.New("data.source is empty"))
	}
	if !strings.Contains(c.Data.ElectionPattern, "%d") {
		errs = append(errs, fmt.Errorf("data.election_pattern %q must contain %%d", c.Data.ElectionPattern))
	}
	if len(c.Years) == 0 {
		errs = append(errs, errors.New("years is empty"))
	}
	seen := make(map[int]bool, len(c.Years))
	for _, y := range c.Years {
		if seen[y] {
			errs = append(errs, fmt.Errorf("year %d listed twice", y))
		}
		seen[y] = true
	}
	if len(c.Years) > 0 && !seen[c.DefaultYear] {
		errs = append(errs, fmt.Errorf("default_year %d is not one of years %v", c.DefaultYear, c.Years))
	}
	if c.Map.MinZoom > c.Map.MaxZoom {
		errs = append(errs, fmt.Errorf("map.min_zoom %.0f exceeds map.max_zoom %.0f", c.Map.MinZoom, c.Map.MaxZoom))
	}
	if c.Search.MinQuery < results.MinQueryLen {
		errs = append(errs, fmt.Errorf("search.min_query must be at least %d", results.MinQueryLen))
	}
	if c.Search.Limit < 1 || c.Search.Limit > results.MaxMatches {
		errs = append(errs, fmt.Errorf("search.limit %d must be between 1 and %d", c.Search.Limit, results.MaxMatches))
	}
	return errors.Join(errs...)
}

// ConfigDir returns the XDG config directory for votemap.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "votemap")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "votemap")
}

// StateDir returns the XDG state directory for votemap.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "votemap")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "votemap")
}

// ConfigPath returns the full path to config.yaml. VOTEMAP_CONFIG wins
// over the XDG location.
func ConfigPath() string {
	if p := os.Getenv("VOTEMAP_CONFIG"); p != "" {
		return expandHome(p)
	}
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the default location.
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

	if !cfg.IsRemote() {
		cfg.Data.Source = expandHome(cfg.Data.Source)
	}
	return cfg, nil
}

// Save writes the config to the default location.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
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

// ApplyEnv overlays VOTEMAP_* environment overrides onto c.
func (c *Config) ApplyEnv() {
	if src := os.Getenv("VOTEMAP_DATA"); src != "" {
		c.Data.Source = src
		if !c.IsRemote() {
			c.Data.Source = expandHome(src)
		}
	}
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
