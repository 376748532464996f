package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDaemonConfig(t *testing.T) {
	cfg := DefaultDaemonConfig()

	assert.Equal(t, 0, cfg.Display.Monitor)
	assert.Empty(t, cfg.Display.Position)
	assert.True(t, cfg.Behavior.PauseOnHover)
	assert.True(t, cfg.Behavior.DaemonNotices)
	assert.Equal(t, 5*time.Second, cfg.Behavior.NoticeInterval.Duration())
	assert.True(t, cfg.Audio.Enabled)
	assert.Equal(t, 80, cfg.Audio.Volume)
	assert.Equal(t, "default", cfg.Theme.Name)
	assert.NoError(t, cfg.Validate())
}

func TestLoadDaemonConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "popkitd.toml")
	content := `
[display]
position = "top-end"
monitor = 2

[behavior]
daemon_notices = false
notice_interval = "30s"

[audio]
volume = 30

[audio.sounds]
error = "/usr/share/sounds/error.oga"

[theme]
color_scheme = "dark"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadDaemonConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "top-end", cfg.Display.Position)
	assert.Equal(t, 2, cfg.Display.Monitor)
	assert.Equal(t, 10, cfg.Display.OffsetX, "default kept")
	assert.Equal(t, 30, cfg.Audio.Volume)
	assert.False(t, cfg.Behavior.DaemonNotices)
	assert.Equal(t, 30*time.Second, cfg.Behavior.NoticeInterval.Duration())
	assert.True(t, cfg.Behavior.PauseOnHover, "default kept")
	assert.Equal(t, "/usr/share/sounds/error.oga", cfg.SoundForIcon("error"))
	assert.Equal(t, "dark", cfg.Theme.ColorScheme)
}

func TestLoadDaemonConfig_Missing(t *testing.T) {
	cfg, err := LoadDaemonConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultDaemonConfig(), cfg)
}

func TestDaemonConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*DaemonConfig)
	}{
		{"bad position", func(c *DaemonConfig) { c.Display.Position = "left" }},
		{"negative monitor", func(c *DaemonConfig) { c.Display.Monitor = -1 }},
		{"negative notice interval", func(c *DaemonConfig) { c.Behavior.NoticeInterval = Duration(-time.Second) }},
		{"volume too high", func(c *DaemonConfig) { c.Audio.Volume = 101 }},
		{"bad color scheme", func(c *DaemonConfig) { c.Theme.ColorScheme = "sepia" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultDaemonConfig()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveDaemonConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "popkitd.toml")

	cfg := DefaultDaemonConfig()
	cfg.Audio.Sounds.Success = "~/sounds/ok.wav"
	require.NoError(t, SaveDaemonConfig(path, cfg))

	loaded, err := LoadDaemonConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "~/sounds/ok.wav", loaded.Audio.Sounds.Success)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "sounds/ok.wav"), loaded.SoundForIcon("success"))
}

func TestSoundForIcon_FallsBackToInfo(t *testing.T) {
	cfg := DefaultDaemonConfig()
	cfg.Audio.Sounds.Info = "/tmp/info.wav"

	assert.Equal(t, "/tmp/info.wav", cfg.SoundForIcon("info"))
	assert.Equal(t, "/tmp/info.wav", cfg.SoundForIcon("rocket"))
}
