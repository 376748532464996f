package theme

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type changeLog struct {
	mu    sync.Mutex
	paths []string
}

func (c *changeLog) add(p string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths = append(c.paths, p)
}

func (c *changeLog) get() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.paths...)
}

func TestWatcher_ReportsCSSChanges(t *testing.T) {
	dir := t.TempDir()
	var log changeLog

	w := NewWatcher(dir, log.add, nil)
	w.SetDebounce(20 * time.Millisecond)
	require.NoError(t, w.Start(context.Background()))
	defer func() { _ = w.Stop() }()
	assert.True(t, w.Running())

	writeCSS(t, dir, "notes.txt", "ignored")
	p := writeCSS(t, dir, "default.css", ".popkit-popup {}")

	require.Eventually(t, func() bool {
		return len(log.get()) > 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, p, log.get()[0])
}

func TestWatcher_Debounces(t *testing.T) {
	dir := t.TempDir()
	var log changeLog

	w := NewWatcher(dir, log.add, nil)
	w.SetDebounce(200 * time.Millisecond)
	require.NoError(t, w.Start(context.Background()))
	defer func() { _ = w.Stop() }()

	for range 5 {
		writeCSS(t, dir, "default.css", ".popkit-popup {}")
	}

	require.Eventually(t, func() bool {
		return len(log.get()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "themes")
	w := NewWatcher(dir, nil, nil)
	require.NoError(t, w.Start(context.Background()))
	assert.DirExists(t, dir)
	require.NoError(t, w.Stop())
	assert.False(t, w.Running())
	require.NoError(t, w.Stop())
}
