package classify

import (
	"log/slog"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Config holds classifier configuration.
// Use functional options (WithXxx) to set these values.
type Config struct {
	// APIKey authenticates against the vision service. Required.
	APIKey string

	// BaseURL overrides the default API base URL (used in tests).
	BaseURL string

	// Model is the vision model name.
	Model string

	// Prompt is the instruction sent with every frame.
	Prompt string

	// Timeout bounds each classification request.
	Timeout time.Duration

	// Logger is the structured logger.
	Logger *slog.Logger
}

// Option is a functional option for configuring the classifier.
type Option func(*Config)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithModel sets the vision model name.
func WithModel(model string) Option {
	return func(c *Config) { c.Model = model }
}

// WithPrompt overrides the classification instruction.
func WithPrompt(prompt string) Option {
	return func(c *Config) { c.Prompt = prompt }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// DefaultConfig returns sensible defaults for Gemini Flash.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: defaultBaseURL,
		Model:   "gemini-2.0-flash",
		Prompt:  DefaultPrompt,
		Timeout: 15 * time.Second,
		Logger:  slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrNoAPIKey
	}
	return nil
}
