package environment

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// JudgeBaseURL is the judge REST API base path, e.g.
	// "http://localhost:8080/api".
	JudgeBaseURL string

	// NatsURL enables the push verdict source when set; empty means
	// poll over HTTP.
	NatsURL string

	PollInterval  time.Duration
	PollMaxWait   time.Duration
	BoardInterval time.Duration
}

// Read loads a .env file when present and falls back to defaults for
// anything unset. An absent .env is fine; the process environment wins
// either way.
func Read() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		JudgeBaseURL:  "http://localhost:8080/api",
		PollInterval:  2 * time.Second,
		PollMaxWait:   5 * time.Minute,
		BoardInterval: 15 * time.Second,
	}

	if v := os.Getenv("ARENA_JUDGE_URL"); v != "" {
		cfg.JudgeBaseURL = v
	}
	cfg.NatsURL = os.Getenv("ARENA_NATS_URL")

	var err error
	if cfg.PollInterval, err = durationEnv("ARENA_POLL_INTERVAL", cfg.PollInterval); err != nil {
		return nil, err
	}
	if cfg.PollMaxWait, err = durationEnv("ARENA_POLL_MAX_WAIT", cfg.PollMaxWait); err != nil {
		return nil, err
	}
	if cfg.BoardInterval, err = durationEnv("ARENA_BOARD_INTERVAL", cfg.BoardInterval); err != nil {
		return nil, err
	}
	return cfg, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
