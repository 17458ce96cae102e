package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "blm.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("[order]\ncycle_policy = \"lenient\"\n"), 0644))

	w, err := NewWatcher(configPath)
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	reloaded := make(chan *Config, 1)
	w.OnReload(func(cfg *Config) error {
		select {
		case reloaded <- cfg:
		default:
		}
		return nil
	})
	w.Start()

	require.NoError(t, os.WriteFile(configPath, []byte("[order]\ncycle_policy = \"report\"\n"), 0644))

	select {
	case cfg := <-reloaded:
		assert.NotNil(t, cfg)
	case <-time.After(5 * time.Second):
		t.Fatal("reload callback was not invoked")
	}
}

func TestWatcherMissingFile(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}
