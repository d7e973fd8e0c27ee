package announce

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/colorvox/colorvox/internal/httpc"
)

// Defaults for the speech-synthesis endpoint.
const (
	DefaultBaseURL = "https://api.streamelements.com/kappa/v2/speech"
	DefaultVoice   = "Brian"
)

// Config holds synthesizer configuration.
type Config struct {
	// BaseURL is the synthesis endpoint the URL template is built on.
	BaseURL string

	// Voice selects the endpoint's voice.
	Voice string

	// Timeout bounds each fetch.
	Timeout time.Duration

	// Logger is the structured logger.
	Logger *slog.Logger
}

// Option is a functional option for configuring the client.
type Option func(*Config)

// WithBaseURL overrides the synthesis endpoint.
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithVoice sets the synthesis voice.
func WithVoice(voice string) Option {
	return func(c *Config) { c.Voice = voice }
}

// WithTimeout sets the fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: DefaultBaseURL,
		Voice:   DefaultVoice,
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

// Client fetches synthesized speech from a URL-template endpoint.
type Client struct {
	config *Config
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a speech-synthesis client.
func NewClient(opts ...Option) *Client {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	return &Client{
		config: cfg,
		http:   httpc.NewClient(cfg.Timeout),
		logger: cfg.Logger.With("component", "announce.client"),
	}
}

// SpeechURL builds the audio resource reference for the label by
// embedding the URL-encoded text in the endpoint template.
func (c *Client) SpeechURL(text string) string {
	sep := "?"
	if strings.Contains(c.config.BaseURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%svoice=%s&text=%s",
		c.config.BaseURL, sep, url.QueryEscape(c.config.Voice), url.QueryEscape(text))
}

// Fetch downloads the synthesized audio for the label. The response
// body is treated as directly playable audio.
func (c *Client) Fetch(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, "GET", c.SpeechURL(text), nil)
	if err != nil {
		return nil, fmt.Errorf("announce: create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("announce: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, fmt.Errorf("announce: synthesis error (status %d): %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("announce: read audio: %w", err)
	}

	c.logger.Debug("synthesized announcement",
		"text", text,
		"bytes", len(audio),
		"latency_ms", time.Since(start).Milliseconds(),
	)

	return audio, nil
}

// Close releases resources.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// Verify Client implements Synthesizer at compile time.
var _ Synthesizer = (*Client)(nil)
