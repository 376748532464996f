package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DaemonConfig is the configuration for popkitd.
// Loaded from ~/.config/popkit/popkitd.toml
type DaemonConfig struct {
	Display  DisplayConfig  `toml:"display"`
	Behavior BehaviorConfig `toml:"behavior"`
	Audio    AudioConfig    `toml:"audio"`
	Theme    ThemeConfig    `toml:"theme"`
}

// DisplayConfig contains display-related settings.
type DisplayConfig struct {
	Monitor  int    `toml:"monitor"`   // 0 = focused, 1+ = specific monitor
	Position string `toml:"position"`  // Empty keeps the position carried by each alert
	OffsetX  int    `toml:"offset_x"`  // Pixels from screen edge for anchored positions
	OffsetY  int    `toml:"offset_y"`  // Pixels from screen edge for anchored positions
	MinWidth int    `toml:"min_width"` // Lower bound after resolving percentage widths
}

// BehaviorConfig contains behavior settings.
type BehaviorConfig struct {
	PauseOnHover   bool     `toml:"pause_on_hover"`  // Pause toast timers while the pointer is over the popup
	DaemonNotices  bool     `toml:"daemon_notices"`  // Toasts about popkitd's own reloads and errors
	NoticeInterval Duration `toml:"notice_interval"` // Minimum gap between repeats of one notice
}

// AudioConfig contains audio settings.
type AudioConfig struct {
	Enabled bool        `toml:"enabled"`
	Volume  int         `toml:"volume"` // 0-100
	Sounds  SoundConfig `toml:"sounds"`
}

// SoundConfig contains per-icon sound file paths.
type SoundConfig struct {
	Success  string `toml:"success"`
	Error    string `toml:"error"`
	Warning  string `toml:"warning"`
	Info     string `toml:"info"`
	Question string `toml:"question"`
}

// ThemeConfig contains theme settings.
type ThemeConfig struct {
	Name        string `toml:"name"`         // Theme name without .css extension
	ColorScheme string `toml:"color_scheme"` // "system", "light", or "dark"
}

// ColorScheme represents the color scheme preference.
type ColorScheme string

const (
	ColorSchemeSystem ColorScheme = "system"
	ColorSchemeLight  ColorScheme = "light"
	ColorSchemeDark   ColorScheme = "dark"
)

// ValidColorSchemes returns all valid color scheme values.
func ValidColorSchemes() []ColorScheme {
	return []ColorScheme{ColorSchemeSystem, ColorSchemeLight, ColorSchemeDark}
}

// DefaultDaemonConfig returns a new DaemonConfig with default values.
func DefaultDaemonConfig() *DaemonConfig {
	return &DaemonConfig{
		Display: DisplayConfig{
			Monitor:  0,
			OffsetX:  10,
			OffsetY:  10,
			MinWidth: 280,
		},
		Behavior: BehaviorConfig{
			PauseOnHover:   true,
			DaemonNotices:  true,
			NoticeInterval: Duration(5 * time.Second),
		},
		Audio: AudioConfig{
			Enabled: true,
			Volume:  80,
		},
		Theme: ThemeConfig{
			Name:        "default",
			ColorScheme: string(ColorSchemeSystem),
		},
	}
}

// DaemonConfigPath returns the path to the daemon config file.
func DaemonConfigPath() string {
	return filepath.Join(ConfigDir(), "popkitd.toml")
}

// LoadDaemonConfig loads the daemon configuration from path, or from
// DaemonConfigPath when path is empty.
// If the file doesn't exist, returns the default configuration.
func LoadDaemonConfig(path string) (*DaemonConfig, error) {
	if path == "" {
		path = DaemonConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultDaemonConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	config := DefaultDaemonConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// SaveDaemonConfig saves the daemon configuration to path.
func SaveDaemonConfig(path string, config *DaemonConfig) error {
	if path == "" {
		path = DaemonConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *DaemonConfig) Validate() error {
	if c.Display.Position != "" && !validPosition(c.Display.Position) {
		return fmt.Errorf("invalid position override %q", c.Display.Position)
	}

	if c.Display.Monitor < 0 {
		return fmt.Errorf("monitor must be 0 or greater, got %d", c.Display.Monitor)
	}

	if c.Display.MinWidth < 0 || c.Display.MinWidth > 4000 {
		return fmt.Errorf("min_width must be between 0 and 4000, got %d", c.Display.MinWidth)
	}

	if c.Behavior.NoticeInterval < 0 {
		return fmt.Errorf("notice_interval must not be negative, got %s", c.Behavior.NoticeInterval.Duration())
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Audio.Volume)
	}

	if !slices.Contains(ValidColorSchemes(), ColorScheme(c.Theme.ColorScheme)) {
		return fmt.Errorf("invalid color_scheme %q, must be one of: %v", c.Theme.ColorScheme, ValidColorSchemes())
	}

	return nil
}

// SoundForIcon returns the sound file path for the given icon name.
// Expands ~ to home directory.
func (c *DaemonConfig) SoundForIcon(icon string) string {
	var path string
	switch icon {
	case "success":
		path = c.Audio.Sounds.Success
	case "error":
		path = c.Audio.Sounds.Error
	case "warning":
		path = c.Audio.Sounds.Warning
	case "question":
		path = c.Audio.Sounds.Question
	default:
		path = c.Audio.Sounds.Info
	}
	return expandPath(path)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
