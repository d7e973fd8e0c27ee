package classify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/colorvox/colorvox/internal/httpc"
)

// Gemini implements Classifier against the Gemini generateContent REST API.
type Gemini struct {
	config *Config
	client *http.Client
	logger *slog.Logger
}

// NewGemini creates a Gemini-backed color classifier.
func NewGemini(opts ...Option) (*Gemini, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Gemini{
		config: cfg,
		client: httpc.NewClient(cfg.Timeout),
		logger: cfg.Logger.With("component", "classify.gemini"),
	}, nil
}

// DominantColor sends one frame to Gemini and returns a single
// sanitized color word. There is no retry: the caller decides whether
// the next cycle tries again.
func (g *Gemini) DominantColor(ctx context.Context, jpeg []byte) (string, error) {
	start := time.Now()

	payload := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]interface{}{
					{"text": g.config.Prompt},
					{"inline_data": map[string]string{
						"mime_type": "image/jpeg",
						"data":      base64.StdEncoding.EncodeToString(jpeg),
					}},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature":     0.0,
			"maxOutputTokens": 10,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("classify: marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimSuffix(g.config.BaseURL, "/"), g.config.Model, g.config.APIKey)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("classify: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("classify: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", g.parseError(resp.StatusCode, respBody)
	}

	var result geminiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("classify: decode response: %w (body: %s)", err, truncate(string(respBody), 200))
	}

	if result.Error.Message != "" {
		return "", &APIError{StatusCode: resp.StatusCode, Message: result.Error.Message}
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w (raw: %s)", ErrEmptyLabel, truncate(string(respBody), 200))
	}

	label := SanitizeLabel(result.Candidates[0].Content.Parts[0].Text)
	if label == "" {
		return "", ErrEmptyLabel
	}

	g.logger.Debug("classified frame",
		"label", label,
		"bytes", len(jpeg),
		"latency_ms", time.Since(start).Milliseconds(),
		"model", g.config.Model,
	)

	return label, nil
}

// Close releases resources.
func (g *Gemini) Close() error {
	g.client.CloseIdleConnections()
	return nil
}

// parseError turns a non-200 response into an APIError.
func (g *Gemini) parseError(status int, body []byte) error {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	message := truncate(string(body), 200)
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}

	return &APIError{StatusCode: status, Message: message}
}

// geminiResponse is the response structure from the Gemini API.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// truncate shortens a string to maxLen characters.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// Verify Gemini implements Classifier at compile time.
var _ Classifier = (*Gemini)(nil)
