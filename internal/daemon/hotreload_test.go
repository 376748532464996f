package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/popkit/internal/config"
)

func startConfigWatcher(t *testing.T) (*ConfigWatcher, string, chan *config.DaemonConfig, chan error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "popkitd.toml")

	w := NewConfigWatcher(path, discardLogger())
	w.SetDebounce(10 * time.Millisecond)

	reloads := make(chan *config.DaemonConfig, 4)
	errs := make(chan error, 4)
	w.SetReloadCallback(func(c *config.DaemonConfig) { reloads <- c })
	w.SetErrorCallback(func(err error) { errs <- err })

	require.NoError(t, w.Start(t.Context(), config.DefaultDaemonConfig()))
	t.Cleanup(w.Stop)
	return w, path, reloads, errs
}

func TestConfigWatcher_Reload(t *testing.T) {
	w, path, reloads, _ := startConfigWatcher(t)
	assert.Equal(t, 80, w.Current().Audio.Volume)

	require.NoError(t, os.WriteFile(path, []byte("[audio]\nvolume = 30\n"), 0o644))

	select {
	case c := <-reloads:
		assert.Equal(t, 30, c.Audio.Volume)
	case <-time.After(2 * time.Second):
		t.Fatal("no reload")
	}
	assert.Equal(t, 30, w.Current().Audio.Volume)
}

func TestConfigWatcher_InvalidKeepsCurrent(t *testing.T) {
	w, path, _, errs := startConfigWatcher(t)

	require.NoError(t, os.WriteFile(path, []byte("not = [valid"), 0o644))

	select {
	case err := <-errs:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("no error reported")
	}
	assert.Equal(t, config.DefaultDaemonConfig(), w.Current())
}

func TestConfigWatcher_IgnoresOtherFiles(t *testing.T) {
	_, path, reloads, errs := startConfigWatcher(t)

	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "popkit.toml"), []byte("x"), 0o644))

	select {
	case <-reloads:
		t.Fatal("unexpected reload")
	case <-errs:
		t.Fatal("unexpected error")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestConfigWatcher_StopIdempotent(t *testing.T) {
	w := NewConfigWatcher(filepath.Join(t.TempDir(), "popkitd.toml"), discardLogger())
	w.Stop()
	require.NoError(t, w.Start(t.Context(), nil))
	w.Stop()
	w.Stop()
}
