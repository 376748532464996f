package audio

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/jmylchreest/popkit/internal/config"
	"github.com/jmylchreest/popkit/internal/model"
)

// soundIcons are the icons a sound can be configured for.
var soundIcons = []model.Icon{
	model.IconSuccess,
	model.IconError,
	model.IconWarning,
	model.IconInfo,
	model.IconQuestion,
}

// Manager plays per-icon sounds for popups.
type Manager struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	player  *Player
	watcher *Watcher
	config  *config.DaemonConfig
	sounds  map[model.Icon]string
	onError func(err error)
}

// NewManager creates a manager on the system speaker.
func NewManager(cfg *config.DaemonConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return newManager(NewPlayer(logger), cfg, logger)
}

func newManager(player *Player, cfg *config.DaemonConfig, logger *slog.Logger) *Manager {
	if cfg == nil {
		cfg = config.DefaultDaemonConfig()
	}
	m := &Manager{
		logger:  logger,
		player:  player,
		watcher: NewWatcher(player.Invalidate, logger),
		config:  cfg,
	}
	m.loadSounds()
	return m
}

// loadSounds resolves the configured sound for each icon, skipping
// missing files.
func (m *Manager) loadSounds() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.player.SetVolume(float64(m.config.Audio.Volume) / 100.0)

	m.sounds = make(map[model.Icon]string)
	for _, icon := range soundIcons {
		path := m.config.SoundForIcon(string(icon))
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			m.logger.Warn("sound file not found", "icon", icon, "path", path)
			continue
		}
		m.sounds[icon] = path
	}
}

// SetErrorCallback sets the callback invoked when a configured sound cannot
// be decoded, at start and after each config reload.
func (m *Manager) SetErrorCallback(callback func(err error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onError = callback
}

// Sounds returns the resolved sound for each icon.
func (m *Manager) Sounds() map[model.Icon]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.sounds)
}

// Start preloads sounds and watches them for changes.
func (m *Manager) Start(ctx context.Context) error {
	m.preload()
	if err := m.watcher.Start(ctx); err != nil {
		return err
	}
	m.logger.Info("audio manager started", "sounds", len(m.Sounds()))
	return nil
}

func (m *Manager) preload() {
	m.mu.RLock()
	onError := m.onError
	m.mu.RUnlock()

	for _, path := range m.Sounds() {
		if err := m.player.Preload(path); err != nil {
			m.logger.Warn("failed to preload sound", "path", path, "error", err)
			if onError != nil {
				onError(fmt.Errorf("%s: %w", filepath.Base(path), err))
			}
		}
		if err := m.watcher.Watch(path); err != nil {
			m.logger.Debug("not watching sound", "path", path, "error", err)
		}
	}
}

// Stop shuts down playback and the watcher.
func (m *Manager) Stop() {
	_ = m.watcher.Stop()
	m.player.Close()
	m.logger.Debug("audio manager stopped")
}

// PlayForIcon plays the sound configured for icon. Unknown and empty icons
// use the info sound.
func (m *Manager) PlayForIcon(icon model.Icon) error {
	m.mu.RLock()
	enabled := m.config.Audio.Enabled
	path, ok := m.sounds[icon]
	if !ok {
		path, ok = m.sounds[model.IconInfo]
	}
	m.mu.RUnlock()

	if !enabled || !ok {
		return nil
	}
	return m.player.Play(path)
}

// PlayFile plays a specific file, as requested by a sound-file hint.
func (m *Manager) PlayFile(path string) error {
	m.mu.RLock()
	enabled := m.config.Audio.Enabled
	m.mu.RUnlock()

	if !enabled {
		return nil
	}
	return m.player.Play(path)
}

// UpdateConfig applies a reloaded configuration.
func (m *Manager) UpdateConfig(cfg *config.DaemonConfig) {
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()

	m.player.ClearCache()
	m.loadSounds()
	m.preload()
	m.logger.Debug("audio manager config updated")
}
