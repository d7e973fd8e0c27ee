package capture

import (
	"context"
	"sync"
)

// Mock implements Source for testing.
// All methods can be customized via function fields.
type Mock struct {
	// CaptureFrameFunc is called when CaptureFrame is invoked.
	// If nil, returns a tiny placeholder frame.
	CaptureFrameFunc func(ctx context.Context) (*Frame, error)

	// CloseFunc is called when Close is invoked.
	// If nil, returns nil.
	CloseFunc func() error

	mu       sync.Mutex
	captures int
	closes   int
}

// NewMock creates a mock source that returns a small static frame.
func NewMock() *Mock {
	return &Mock{
		CaptureFrameFunc: func(ctx context.Context) (*Frame, error) {
			return &Frame{
				JPEG:   []byte{0xFF, 0xD8, 0xFF, 0xD9}, // minimal JPEG marker pair
				Width:  640,
				Height: 480,
			}, nil
		},
	}
}

// CaptureFrame calls CaptureFrameFunc and records the call.
func (m *Mock) CaptureFrame(ctx context.Context) (*Frame, error) {
	m.mu.Lock()
	m.captures++
	m.mu.Unlock()

	if m.CaptureFrameFunc != nil {
		return m.CaptureFrameFunc(ctx)
	}
	return nil, ErrCameraUnavailable
}

// Close calls CloseFunc and records the call.
func (m *Mock) Close() error {
	m.mu.Lock()
	m.closes++
	m.mu.Unlock()

	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Captures returns how many times CaptureFrame was called.
func (m *Mock) Captures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.captures
}

// Closes returns how many times Close was called.
func (m *Mock) Closes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

// Verify Mock implements Source at compile time.
var _ Source = (*Mock)(nil)
