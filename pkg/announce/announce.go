// Package announce converts detected color labels into playable speech.
//
// The synthesis endpoint is addressed by a URL template that embeds the
// URL-encoded text, so a label maps directly to a fetchable audio
// resource. Every label change triggers a fresh synthesis fetch; the
// package performs no caching.
package announce

import (
	"context"
	"errors"
)

// ErrEmptyText is returned when asked to announce an empty label.
var ErrEmptyText = errors.New("announce: empty text")

// Synthesizer turns a short text label into playable audio.
type Synthesizer interface {
	// SpeechURL returns the audio resource reference for the label.
	SpeechURL(text string) string

	// Fetch downloads the synthesized audio for the label.
	Fetch(ctx context.Context, text string) ([]byte, error)

	// Close releases any resources held by the synthesizer.
	Close() error
}
