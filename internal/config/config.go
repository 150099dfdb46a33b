// Package config resolves runtime settings from the environment.
//
// Every setting has a default and a PUNCHLIST_-prefixed environment
// override. Invalid values never abort startup: they are logged and the
// default is used instead.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Settings keys. Each maps to an environment variable with the
// PUNCHLIST_ prefix, e.g. "port" reads PUNCHLIST_PORT.
const (
	KeyHost     = "host"
	KeyPort     = "port"
	KeyDB       = "db"
	KeyLogLevel = "log_level"
	KeySeedDemo = "seed_demo"
	KeyBaseURL  = "base_url"
)

const (
	DefaultHost     = "127.0.0.1"
	DefaultPort     = 8080
	DefaultDBPath   = "punchlist.db"
	DefaultLogLevel = "info"
)

// Config is the resolved runtime configuration.
type Config struct {
	Host     string
	Port     int
	DBPath   string
	LogLevel slog.Level
	SeedDemo bool

	// BaseURL is the HTTP endpoint the stdio bridge talks to. Defaults to
	// the address the server itself would listen on.
	BaseURL string
}

// Load reads the environment and returns the effective configuration.
func Load() Config {
	v := viper.New()
	v.SetEnvPrefix("PUNCHLIST")
	v.AutomaticEnv()

	v.SetDefault(KeyHost, DefaultHost)
	v.SetDefault(KeyPort, DefaultPort)
	v.SetDefault(KeyDB, DefaultDBPath)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeySeedDemo, false)
	v.SetDefault(KeyBaseURL, "")

	cfg := Config{
		Host:     v.GetString(KeyHost),
		Port:     v.GetInt(KeyPort),
		DBPath:   v.GetString(KeyDB),
		LogLevel: parseLogLevel(v.GetString(KeyLogLevel)),
		SeedDemo: v.GetBool(KeySeedDemo),
		BaseURL:  v.GetString(KeyBaseURL),
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		slog.Warn("port out of range, using default",
			"port", cfg.Port, "default", DefaultPort)
		cfg.Port = DefaultPort
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port)
	}

	return cfg
}

// ListenAddr returns the host:port pair the HTTP server binds to.
func (c Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		slog.Warn("unknown log level, using info", "level", s)
		return slog.LevelInfo
	}
}
