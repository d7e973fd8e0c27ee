package announce

import (
	"context"
	"sync"
)

// Mock implements Synthesizer for testing.
type Mock struct {
	// FetchFunc is called when Fetch is invoked.
	// If nil, returns a small placeholder clip.
	FetchFunc func(ctx context.Context, text string) ([]byte, error)

	mu      sync.Mutex
	fetched []string
}

// NewMock creates a mock synthesizer returning placeholder audio.
func NewMock() *Mock {
	return &Mock{
		FetchFunc: func(ctx context.Context, text string) ([]byte, error) {
			return []byte("ID3mock-audio"), nil
		},
	}
}

// SpeechURL returns a recognizable fake resource reference.
func (m *Mock) SpeechURL(text string) string {
	return "mock://speech/" + text
}

// Fetch calls FetchFunc and records the label.
func (m *Mock) Fetch(ctx context.Context, text string) ([]byte, error) {
	m.mu.Lock()
	m.fetched = append(m.fetched, text)
	m.mu.Unlock()

	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, text)
	}
	return nil, ErrEmptyText
}

// Close is a no-op.
func (m *Mock) Close() error { return nil }

// Fetched returns the labels fetched so far, in order.
func (m *Mock) Fetched() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.fetched))
	copy(out, m.fetched)
	return out
}

// Verify Mock implements Synthesizer at compile time.
var _ Synthesizer = (*Mock)(nil)
