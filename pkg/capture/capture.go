// Package capture provides on-demand still frame capture from a camera.
//
// A Source takes a synchronous snapshot of the live camera feed and
// returns it as an encoded JPEG frame. There is no buffering across
// frames: every call reads the sensor's current image.
package capture

import (
	"context"
	"encoding/base64"
	"errors"
)

// Sentinel errors for common capture failures.
var (
	// ErrCameraUnavailable is returned when the device cannot be opened
	// (missing hardware, busy device, or permission denied).
	ErrCameraUnavailable = errors.New("capture: camera unavailable")

	// ErrEmptyFrame is returned when the device produced no image data.
	ErrEmptyFrame = errors.New("capture: empty frame")

	// ErrSourceClosed is returned when capturing from a closed source.
	ErrSourceClosed = errors.New("capture: source closed")
)

// Source is a camera that can take still snapshots on demand.
type Source interface {
	// CaptureFrame grabs the current frame as an encoded JPEG.
	CaptureFrame(ctx context.Context) (*Frame, error)

	// Close releases the underlying device. The source cannot be
	// reused afterwards; open a new one instead.
	Close() error
}

// Frame is a single captured still image.
type Frame struct {
	// JPEG is the compressed image data.
	JPEG []byte

	// Width and Height are the native capture resolution in pixels.
	Width  int
	Height int
}

// Base64 returns the raw base64 payload for transmission, with no
// data-URL header.
func (f *Frame) Base64() string {
	return base64.StdEncoding.EncodeToString(f.JPEG)
}

// DataURL returns the frame as a browser-displayable data URL.
func (f *Frame) DataURL() string {
	return "data:image/jpeg;base64," + f.Base64()
}
