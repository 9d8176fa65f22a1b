package config

import (
	"fmt"
	"time"
)

// This file defines the configuration structures; loading is handled by
// viper in viper_config.go.

// ServerConfig is the root configuration.
type ServerConfig struct {
	Server ServerSettings `yaml:"server"`
	Game   GameSettings   `yaml:"game"`
}

// ServerSettings contains transport-level settings.
type ServerSettings struct {
	Port            string        `yaml:"port"`
	Host            string        `yaml:"host"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"` // 0 for SSE support
	IdleTimeout     time.Duration `yaml:"idleTimeout"`  // 0 for SSE support
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`

	// Rate limiting (golang.org/x/time/rate)
	RateLimit      float64 `yaml:"rateLimit"`
	RateLimitBurst int     `yaml:"rateLimitBurst"`

	MaxRequestSize int64 `yaml:"maxRequestSize"`

	// JWTSecret signs user tokens. Must be set outside development.
	JWTSecret string `yaml:"jwtSecret"`
}

// GameSettings contains the room and turn-engine timing knobs.
type GameSettings struct {
	RoomTTL           time.Duration `yaml:"roomTTL"`
	PlayerTTL         time.Duration `yaml:"playerTTL"`
	MoveDeadline      time.Duration `yaml:"moveDeadline"`
	TokenTTL          time.Duration `yaml:"tokenTTL"`
	KeepAliveInterval time.Duration `yaml:"keepAliveInterval"`
	MaxNameLength     int           `yaml:"maxNameLength"`
}

// DefaultConfig returns the server's built-in defaults, used when no
// config file overrides them.
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Port:            "8000",
			Host:            "127.0.0.1",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    0,
			IdleTimeout:     0,
			ShutdownTimeout: 30 * time.Second,
			RateLimit:       10,
			RateLimitBurst:  20,
			MaxRequestSize:  32 * 1024,
			JWTSecret:       "sternhalma-dev-secret-change-in-production",
		},
		Game: GameSettings{
			RoomTTL:           60 * time.Second,
			PlayerTTL:         40 * time.Second,
			MoveDeadline:      30 * time.Second,
			TokenTTL:          24 * time.Hour,
			KeepAliveInterval: 15 * time.Second,
			MaxNameLength:     15,
		},
	}
}

// Validate checks the configuration for values the server cannot run
// with.
func (c *ServerConfig) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port must be set")
	}
	if c.Server.Host == "" {
		return fmt.Errorf("server host must be set")
	}
	if c.Server.JWTSecret == "" {
		return fmt.Errorf("jwt secret must be set")
	}
	if c.Game.RoomTTL <= 0 {
		return fmt.Errorf("roomTTL must be positive")
	}
	if c.Game.PlayerTTL <= 0 {
		return fmt.Errorf("playerTTL must be positive")
	}
	if c.Game.MoveDeadline <= 0 {
		return fmt.Errorf("moveDeadline must be positive")
	}
	if c.Game.TokenTTL <= 0 {
		return fmt.Errorf("tokenTTL must be positive")
	}
	if c.Game.KeepAliveInterval <= 0 {
		return fmt.Errorf("keepAliveInterval must be positive")
	}
	if c.Game.MaxNameLength < 1 {
		return fmt.Errorf("maxNameLength must be at least 1")
	}
	return nil
}
