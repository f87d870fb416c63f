package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configFileName = "config.yaml"
	configDirName  = "scrollbook"
)

// Mouse reporting modes
const (
	MouseAuto = "auto"
	MouseAll  = "all"
	MouseCell = "cell"
	MouseOff  = "off"
)

// Log levels and modes
const (
	LevelNone   = "none"
	LevelNormal = "normal"
	LevelDebug  = "debug"

	ModeAppend    = "append"
	ModeOverwrite = "overwrite"
)

// ProbeConfig is the theme probe point, in rows from the top and columns
// from the right edge
type ProbeConfig struct {
	Top   float64 `yaml:"top"`
	Right float64 `yaml:"right"`
}

// ReaderConfig holds the reading position engine and terminal host settings
type ReaderConfig struct {
	SettleDelay     time.Duration `yaml:"settle_delay"`
	SnapGuard       time.Duration `yaml:"snap_guard"`
	HideDelay       time.Duration `yaml:"hide_delay"`
	ThemeRecheck    time.Duration `yaml:"theme_recheck"`
	SmoothDuration  time.Duration `yaml:"smooth_duration"`
	PreviewScale    float64       `yaml:"preview_scale"`
	ChapterOffset   float64       `yaml:"chapter_offset"`
	TouchBreakpoint float64       `yaml:"touch_breakpoint"`
	CellWidth       float64       `yaml:"cell_width"`
	ThemeProbe      ProbeConfig   `yaml:"theme_probe"`
	Mouse           string        `yaml:"mouse"`
	Touch           bool          `yaml:"touch"`
}

// LoggingConfig selects the file log
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Destination string `yaml:"destination,omitempty"`
	Mode        string `yaml:"mode,omitempty"`
}

// Config holds the application configuration
type Config struct {
	Reader  ReaderConfig  `yaml:"reader"`
	Logging LoggingConfig `yaml:"logging"`

	// Path to config file (not persisted)
	path string
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Reader: ReaderConfig{
			SettleDelay:     150 * time.Millisecond,
			SnapGuard:       200 * time.Millisecond,
			HideDelay:       700 * time.Millisecond,
			ThemeRecheck:    300 * time.Millisecond,
			SmoothDuration:  180 * time.Millisecond,
			PreviewScale:    0.28,
			ChapterOffset:   2,
			TouchBreakpoint: 767,
			CellWidth:       10,
			ThemeProbe:      ProbeConfig{Top: 1, Right: 1},
			Mouse:           MouseAuto,
		},
		Logging: LoggingConfig{
			Level: LevelNone,
			Mode:  ModeOverwrite,
		},
	}
}

// Load loads configuration from path, or from the default location when path
// is empty. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := getConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		// Config doesn't exist, return defaults
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read configuration: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unable to parse configuration %s: %w", path, err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Path returns the file the configuration was loaded from
func (c *Config) Path() string {
	return c.path
}

// Dump renders the configuration as YAML
func (c *Config) Dump() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal configuration: %w", err)
	}
	return data, nil
}

// Save persists the configuration to disk
func (c *Config) Save() error {
	if c.path == "" {
		p, err := getConfigPath()
		if err != nil {
			return err
		}
		c.path = p
	}
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return err
	}

	data, err := c.Dump()
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0600)
}

// Normalize replaces out of range values with defaults and returns the keys
// it had to fix
func (c *Config) Normalize() []string {
	def := Default()
	var fixed []string

	durations := []struct {
		key string
		val *time.Duration
		def time.Duration
	}{
		{"reader.settle_delay", &c.Reader.SettleDelay, def.Reader.SettleDelay},
		{"reader.snap_guard", &c.Reader.SnapGuard, def.Reader.SnapGuard},
		{"reader.hide_delay", &c.Reader.HideDelay, def.Reader.HideDelay},
		{"reader.theme_recheck", &c.Reader.ThemeRecheck, def.Reader.ThemeRecheck},
		{"reader.smooth_duration", &c.Reader.SmoothDuration, def.Reader.SmoothDuration},
	}
	for _, d := range durations {
		if *d.val <= 0 {
			*d.val = d.def
			fixed = append(fixed, d.key)
		}
	}

	if c.Reader.PreviewScale <= 0 || c.Reader.PreviewScale > 1 {
		c.Reader.PreviewScale = def.Reader.PreviewScale
		fixed = append(fixed, "reader.preview_scale")
	}
	if c.Reader.ChapterOffset < 0 {
		c.Reader.ChapterOffset = def.Reader.ChapterOffset
		fixed = append(fixed, "reader.chapter_offset")
	}
	if c.Reader.TouchBreakpoint <= 0 {
		c.Reader.TouchBreakpoint = def.Reader.TouchBreakpoint
		fixed = append(fixed, "reader.touch_breakpoint")
	}
	if c.Reader.CellWidth <= 0 {
		c.Reader.CellWidth = def.Reader.CellWidth
		fixed = append(fixed, "reader.cell_width")
	}
	if c.Reader.ThemeProbe.Top < 0 || c.Reader.ThemeProbe.Right < 0 {
		c.Reader.ThemeProbe = def.Reader.ThemeProbe
		fixed = append(fixed, "reader.theme_probe")
	}
	switch c.Reader.Mouse {
	case MouseAuto, MouseAll, MouseCell, MouseOff:
	default:
		c.Reader.Mouse = def.Reader.Mouse
		fixed = append(fixed, "reader.mouse")
	}

	switch c.Logging.Level {
	case LevelNone, LevelNormal, LevelDebug:
	default:
		c.Logging.Level = def.Logging.Level
		fixed = append(fixed, "logging.level")
	}
	switch c.Logging.Mode {
	case ModeAppend, ModeOverwrite:
	default:
		c.Logging.Mode = def.Logging.Mode
		fixed = append(fixed, "logging.mode")
	}
	return fixed
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config")
	}

	return filepath.Join(configDir, configDirName, configFileName), nil
}
