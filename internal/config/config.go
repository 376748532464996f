// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/popkit/internal/model"
)

// Default configuration values. These are the fixed presentation constants
// shared by every popup.
const (
	DefaultBackend      = "dbus"
	DefaultAppName      = "popkit"
	DefaultWidth        = "40%"
	DefaultPopupClass   = "swal2-large"
	DefaultPosition     = "center"
	DefaultToastTimer   = 3000 * time.Millisecond
	DefaultConfirmLabel = "Yes"
	DefaultCancelLabel  = "No"
	DefaultOKLabel      = "OK"
	DefaultConfirmColor = "#3085d6"
	DefaultCancelColor  = "#d33"
	DefaultLoadingTitle = "Loading..."
)

// Backend names accepted in [backend].name.
const (
	BackendDBus     = "dbus"
	BackendTerminal = "terminal"
	BackendDesktop  = "desktop"
	BackendPrint    = "print"
)

// ValidBackends returns all valid backend names.
func ValidBackends() []string {
	return []string{BackendDBus, BackendTerminal, BackendDesktop, BackendPrint}
}

// Config represents the popkit configuration.
type Config struct {
	Backend BackendConfig `toml:"backend"`
	Style   StyleConfig   `toml:"style"`
	Toast   ToastConfig   `toml:"toast"`
	Buttons ButtonsConfig `toml:"buttons"`
	Loading LoadingConfig `toml:"loading"`
}

// BackendConfig selects the rendering backend.
type BackendConfig struct {
	Name    string `toml:"name"`     // dbus, terminal, desktop, print
	AppName string `toml:"app_name"` // Sent as the freedesktop app_name
}

// StyleConfig holds presentation attributes shared by every popup.
type StyleConfig struct {
	Width      string `toml:"width"`       // "40%", "480px"
	PopupClass string `toml:"popup_class"` // CSS class applied to the popup
}

// ToastConfig holds settings for the timed toast variants.
type ToastConfig struct {
	Position    string   `toml:"position"`
	Timer       Duration `toml:"timer"` // "3s" or 3000
	ProgressBar bool     `toml:"progress_bar"`
}

// ButtonsConfig holds button labels and colours.
type ButtonsConfig struct {
	ConfirmLabel string `toml:"confirm_label"`
	CancelLabel  string `toml:"cancel_label"`
	OKLabel      string `toml:"ok_label"`
	ConfirmColor string `toml:"confirm_color"`
	CancelColor  string `toml:"cancel_color"`
}

// LoadingConfig holds settings for the loading indicator.
type LoadingConfig struct {
	Title string `toml:"title"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			Name:    DefaultBackend,
			AppName: DefaultAppName,
		},
		Style: StyleConfig{
			Width:      DefaultWidth,
			PopupClass: DefaultPopupClass,
		},
		Toast: ToastConfig{
			Position:    DefaultPosition,
			Timer:       Duration(DefaultToastTimer),
			ProgressBar: true,
		},
		Buttons: ButtonsConfig{
			ConfirmLabel: DefaultConfirmLabel,
			CancelLabel:  DefaultCancelLabel,
			OKLabel:      DefaultOKLabel,
			ConfirmColor: DefaultConfirmColor,
			CancelColor:  DefaultCancelColor,
		},
		Loading: LoadingConfig{
			Title: DefaultLoadingTitle,
		},
	}
}

// ConfigDir returns the popkit configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "popkit")
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(ValidBackends(), c.Backend.Name) {
		return fmt.Errorf("invalid backend %q, must be one of: %v", c.Backend.Name, ValidBackends())
	}

	if _, err := ParseWidth(c.Style.Width); err != nil {
		return err
	}

	if !validPosition(c.Toast.Position) {
		return fmt.Errorf("invalid toast position %q", c.Toast.Position)
	}

	if c.Toast.Timer < 0 {
		return fmt.Errorf("toast timer must not be negative, got %s", c.Toast.Timer.Duration())
	}

	return nil
}

func validPosition(p string) bool {
	return slices.Contains(model.ValidPositions(), model.Position(p))
}
