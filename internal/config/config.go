// Package config provides environment-based configuration for colorvox.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for optional settings.
const (
	DefaultPort        = "8090"
	DefaultInterval    = 3 * time.Second
	DefaultFrontDevice = 0
	DefaultRearDevice  = 1
)

// Config holds the full application configuration.
type Config struct {
	// GeminiAPIKey authenticates against the vision service. Required.
	GeminiAPIKey string

	// Port is the dashboard HTTP port.
	Port string

	// Interval is the capture-and-classify cadence.
	Interval time.Duration

	// FrontDevice and RearDevice are the camera device indices
	// requested for each facing mode.
	FrontDevice int
	RearDevice  int

	// TTSBaseURL and TTSVoice configure the speech-synthesis endpoint.
	// Empty values fall back to the announce package defaults.
	TTSBaseURL string
	TTSVoice   string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// Load reads configuration from the environment, honoring a .env file
// if one is present. The returned error is fatal: the vision API key
// is the single required secret.
func Load() (*Config, error) {
	// Ignore the error: a missing .env file is fine.
	_ = godotenv.Load()

	cfg := &Config{
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		Port:         envOr("COLORVOX_PORT", DefaultPort),
		Interval:     envDuration("COLORVOX_INTERVAL", DefaultInterval),
		FrontDevice:  envInt("COLORVOX_FRONT_DEVICE", DefaultFrontDevice),
		RearDevice:   envInt("COLORVOX_REAR_DEVICE", DefaultRearDevice),
		TTSBaseURL:   os.Getenv("TTS_BASE_URL"),
		TTSVoice:     os.Getenv("TTS_VOICE"),
		LogLevel:     envOr("LOG_LEVEL", "info"),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required (get one at https://aistudio.google.com/apikey)")
	}

	return cfg, nil
}

// envOr returns the env value or a default if unset.
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envInt returns the env value parsed as int, or a default.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// envDuration returns the env value parsed as a duration, or a default.
// Accepts Go duration syntax ("3s", "1500ms") or plain seconds ("3").
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}
