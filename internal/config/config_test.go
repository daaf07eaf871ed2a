package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/syncroot/roomsync/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roomsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "commerce", cfg.Session.Variant)
	assert.Equal(t, 30*time.Second, cfg.Session.AckTimeout)
	assert.Equal(t, "snapshots", cfg.Export.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
session:
  id: kiosk-7
  variant: arcade
  ack_timeout: 5s
channel:
  url: ws://sync.local/room
redis:
  addr: 127.0.0.1:6379
  ttl: 24h
http:
  addr: :8090
log:
  level: debug
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "kiosk-7", cfg.Session.ID)
	assert.Equal(t, "arcade", cfg.Session.Variant)
	assert.Equal(t, 5*time.Second, cfg.Session.AckTimeout)
	assert.Equal(t, "ws://sync.local/room", cfg.Channel.URL)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
	assert.Equal(t, ":8090", cfg.HTTP.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
channel:
  url: ws://from-file/room
`)
	t.Setenv("ROOMSYNC_CHANNEL_URL", "ws://from-env/room")
	t.Setenv("ROOMSYNC_LOG_LEVEL", "warn")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ws://from-env/room", cfg.Channel.URL)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown variant": "session:\n  variant: bogus\n",
		"bad log level":   "log:\n  level: loud\n",
		"zero timeout":    "session:\n  ack_timeout: -1s\n",
		"empty id":        "session:\n  id: \"\"\n",
		"not yaml":        ":\nnope::\n  - {",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}
