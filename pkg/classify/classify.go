// Package classify sends camera frames to a remote vision model and
// extracts the dominant color of the framed object.
//
// The remote model is instructed to answer with a single color word.
// Whatever comes back is trimmed and stripped of punctuation so the
// caller always receives one clean label (or an error).
package classify

import "context"

// Classifier labels the dominant color of an encoded image.
type Classifier interface {
	// DominantColor sends the JPEG payload to the vision service and
	// returns a single sanitized color word.
	DominantColor(ctx context.Context, jpeg []byte) (string, error)

	// Close releases any resources held by the classifier.
	Close() error
}

// DefaultPrompt is the fixed instruction sent with every frame.
// It constrains the model to one word with no punctuation.
const DefaultPrompt = "What is the dominant color of the main object in this image? " +
	"Answer with exactly one color word and nothing else. No punctuation."
