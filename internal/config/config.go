package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/park285/cheese-board/internal/obslog"
)

type AppConfig struct {
	RedisURL    string
	DatabaseURL string

	SessionTTL time.Duration

	ViewerAddr     string
	PNGSquareSize  int
	RecentGamesMax int

	MessagesDir string

	Log obslog.Config
}

// Load reads the environment. Nothing is required: components that need Redis or
// Postgres check for their URL themselves.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		SessionTTL:     24 * time.Hour,
		ViewerAddr:     ":8080",
		PNGSquareSize:  56,
		RecentGamesMax: 20,
		Log:            obslog.DefaultConfig(),
	}

	cfg.RedisURL = env("REDIS_URL")
	cfg.DatabaseURL = env("DATABASE_URL")
	cfg.MessagesDir = env("MESSAGES_DIR")

	if v := env("BOARD_SESSION_TTL"); v != "" {
		// seconds, or a Go duration such as 6h
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SessionTTL = time.Duration(n) * time.Second
		} else if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SessionTTL = d
		} else {
			return nil, errors.New("BOARD_SESSION_TTL must be seconds or a duration")
		}
	}
	if v := env("VIEWER_ADDR"); v != "" {
		cfg.ViewerAddr = v
	}
	if v := env("BOARD_PNG_SQUARE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PNGSquareSize = n
		}
	}
	if v := env("RECENT_GAMES_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RecentGamesMax = n
		}
	}

	// Logging
	if v := env("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := env("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := env("LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	cfg.Log.Console = envBool("LOG_TO_CONSOLE", cfg.Log.Console)
	cfg.Log.ToFile = envBool("LOG_TO_FILE", cfg.Log.ToFile)
	cfg.Log.Caller = envBool("LOG_CALLER", cfg.Log.Caller)

	if cfg.RedisURL != "" && !strings.HasPrefix(cfg.RedisURL, "redis://") && !strings.HasPrefix(cfg.RedisURL, "rediss://") {
		return nil, errors.New("REDIS_URL must use the redis:// or rediss:// scheme")
	}

	return cfg, nil
}

func env(k string) string { return strings.TrimSpace(os.Getenv(k)) }

func envBool(k string, def bool) bool {
	v := env(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
