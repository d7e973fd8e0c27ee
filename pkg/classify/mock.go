package classify

import (
	"context"
	"sync"
)

// Mock implements Classifier for testing.
// All methods can be customized via function fields.
type Mock struct {
	// DominantColorFunc is called when DominantColor is invoked.
	// If nil, returns "Blue".
	DominantColorFunc func(ctx context.Context, jpeg []byte) (string, error)

	// CloseFunc is called when Close is invoked.
	// If nil, returns nil.
	CloseFunc func() error

	mu    sync.Mutex
	calls int
}

// NewMock creates a mock classifier that always answers "Blue".
func NewMock() *Mock {
	return &Mock{
		DominantColorFunc: func(ctx context.Context, jpeg []byte) (string, error) {
			return "Blue", nil
		},
	}
}

// WithError returns a mock that always fails with err.
func WithError(err error) *Mock {
	return &Mock{
		DominantColorFunc: func(ctx context.Context, jpeg []byte) (string, error) {
			return "", err
		},
	}
}

// DominantColor calls DominantColorFunc and records the call.
func (m *Mock) DominantColor(ctx context.Context, jpeg []byte) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.DominantColorFunc != nil {
		return m.DominantColorFunc(ctx, jpeg)
	}
	return "", ErrEmptyLabel
}

// Close calls CloseFunc.
func (m *Mock) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Calls returns how many times DominantColor was invoked.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Verify Mock implements Classifier at compile time.
var _ Classifier = (*Mock)(nil)
