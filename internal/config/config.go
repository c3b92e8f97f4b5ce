package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Storage names the two directories the service operates over. It is passed
// explicitly into the stores so tests can point them at temp dirs.
type Storage struct {
	PlansDir   string // markdown plan documents, one <planID>.md each
	ReviewsDir string // review state, one <planID>.json each
}

type Config struct {
	Port string

	Storage Storage

	// Change detection
	WatchDebounce     time.Duration
	WatchPollInterval time.Duration

	// CORS
	AllowedOrigin string
}

func Load() Config {
	home, _ := os.UserHomeDir()

	return Config{
		Port: envOr("PORT", "3335"),

		Storage: Storage{
			PlansDir:   envOr("PLANS_DIR", filepath.Join(home, ".claude", "plans")),
			ReviewsDir: envOr("REVIEWS_DIR", filepath.Join(home, ".claude", "plan-comments")),
		},

		WatchDebounce:     envDuration("WATCH_DEBOUNCE", 500*time.Millisecond),
		WatchPollInterval: envDuration("WATCH_POLL_INTERVAL", 100*time.Millisecond),

		AllowedOrigin: envOr("ALLOWED_ORIGIN", "*"),
	}
}

func (c Config) Validate() error {
	if c.Storage.PlansDir == "" {
		return fmt.Errorf("PLANS_DIR is required")
	}
	if c.Storage.ReviewsDir == "" {
		return fmt.Errorf("REVIEWS_DIR is required")
	}
	if c.Storage.PlansDir == c.Storage.ReviewsDir {
		return fmt.Errorf("PLANS_DIR and REVIEWS_DIR must be distinct")
	}
	if c.WatchDebounce <= 0 {
		return fmt.Errorf("WATCH_DEBOUNCE must be positive")
	}
	if c.WatchPollInterval <= 0 {
		return fmt.Errorf("WATCH_POLL_INTERVAL must be positive")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
