package vgrouter

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, Config{MaxRedirects: 10, Timeout: 0, LogLevel: slog.LevelInfo}, c)
}

func TestLoadConfigEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("VGROUTER_LOG_LEVEL=DEBUG\nVGROUTER_MAX_REDIRECTS=3\n"), 0644))

	// the environment wins over .env
	t.Setenv("VGROUTER_MAX_REDIRECTS", "5")
	t.Setenv("VGROUTER_NAV_TIMEOUT", "250ms")
	t.Cleanup(func() { os.Unsetenv("VGROUTER_LOG_LEVEL") })

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 5, c.MaxRedirects)
	assert.Equal(t, 250*time.Millisecond, c.Timeout)
	assert.Equal(t, slog.LevelDebug, c.LogLevel)

	o := defaultOptions()
	WithConfig(c)(&o)
	assert.Equal(t, 5, o.MaxRedirects)
	assert.Equal(t, 250*time.Millisecond, o.Timeout)
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("VGROUTER_NAV_TIMEOUT", "soon")
	_, err := LoadConfig()
	assert.Error(t, err)
}
