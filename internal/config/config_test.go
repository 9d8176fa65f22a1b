package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, time.Duration(0), cfg.Server.WriteTimeout, "write timeout must stay zero for SSE")
	assert.Equal(t, time.Duration(0), cfg.Server.IdleTimeout)
	assert.Equal(t, 60*time.Second, cfg.Game.RoomTTL)
	assert.Equal(t, 40*time.Second, cfg.Game.PlayerTTL)
	assert.Equal(t, 30*time.Second, cfg.Game.MoveDeadline)
	assert.Equal(t, 15, cfg.Game.MaxNameLength)

	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ServerConfig)
	}{
		{"empty port", func(c *ServerConfig) { c.Server.Port = "" }},
		{"empty host", func(c *ServerConfig) { c.Server.Host = "" }},
		{"empty jwt secret", func(c *ServerConfig) { c.Server.JWTSecret = "" }},
		{"zero room ttl", func(c *ServerConfig) { c.Game.RoomTTL = 0 }},
		{"negative player ttl", func(c *ServerConfig) { c.Game.PlayerTTL = -time.Second }},
		{"zero move deadline", func(c *ServerConfig) { c.Game.MoveDeadline = 0 }},
		{"zero token ttl", func(c *ServerConfig) { c.Game.TokenTTL = 0 }},
		{"zero keepalive", func(c *ServerConfig) { c.Game.KeepAliveInterval = 0 }},
		{"zero name length", func(c *ServerConfig) { c.Game.MaxNameLength = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Game.MoveDeadline)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	os.Setenv("PORT", "9999")
	os.Setenv("MOVE_DEADLINE", "45s")
	defer os.Unsetenv("PORT")
	defer os.Unsetenv("MOVE_DEADLINE")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.Game.MoveDeadline)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	content := []byte("server:\n  port: \"3333\"\ngame:\n  maxnamelength: 20\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "3333", cfg.Server.Port)
	assert.Equal(t, 20, cfg.Game.MaxNameLength)
}
