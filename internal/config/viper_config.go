package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration using Viper.
// Priority order: environment variables > config file > defaults.
func LoadConfig(configPath string) (*ServerConfig, error) {
	v := viper.New()

	v.SetConfigName("server")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/sternhalma")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Short env names alongside the SERVER_/GAME_ prefixed ones.
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.host", "HOST")
	v.BindEnv("server.jwtsecret", "JWT_SECRET")
	v.BindEnv("server.ratelimit", "RATE_LIMIT")
	v.BindEnv("server.ratelimitburst", "RATE_LIMIT_BURST")
	v.BindEnv("server.maxrequestsize", "MAX_REQUEST_SIZE")
	v.BindEnv("game.roomttl", "ROOM_TTL")
	v.BindEnv("game.playerttl", "PLAYER_TTL")
	v.BindEnv("game.movedeadline", "MOVE_DEADLINE")
	v.BindEnv("game.tokenttl", "TOKEN_TTL")

	defaults := DefaultConfig()
	v.SetDefault("server.port", defaults.Server.Port)
	v.SetDefault("server.host", defaults.Server.Host)
	v.SetDefault("server.readtimeout", defaults.Server.ReadTimeout)
	v.SetDefault("server.writetimeout", defaults.Server.WriteTimeout)
	v.SetDefault("server.idletimeout", defaults.Server.IdleTimeout)
	v.SetDefault("server.shutdowntimeout", defaults.Server.ShutdownTimeout)
	v.SetDefault("server.ratelimit", defaults.Server.RateLimit)
	v.SetDefault("server.ratelimitburst", defaults.Server.RateLimitBurst)
	v.SetDefault("server.maxrequestsize", defaults.Server.MaxRequestSize)
	v.SetDefault("server.jwtsecret", defaults.Server.JWTSecret)
	v.SetDefault("game.roomttl", defaults.Game.RoomTTL)
	v.SetDefault("game.playerttl", defaults.Game.PlayerTTL)
	v.SetDefault("game.movedeadline", defaults.Game.MoveDeadline)
	v.SetDefault("game.tokenttl", defaults.Game.TokenTTL)
	v.SetDefault("game.keepaliveinterval", defaults.Game.KeepAliveInterval)
	v.SetDefault("game.maxnamelength", defaults.Game.MaxNameLength)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !strings.Contains(err.Error(), "no such file or directory") {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
		// Config file not found; continue with env vars and defaults.
	}

	cfg := &ServerConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
