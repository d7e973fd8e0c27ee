//go:build !gocv
// +build !gocv

package capture

import (
	"context"
	"fmt"
)

// Webcam is a stub used when the binary is built without the gocv tag.
type Webcam struct {
	device int
}

// OpenWebcam fails: camera capture requires the gocv build tag.
func OpenWebcam(device int) (*Webcam, error) {
	return nil, fmt.Errorf("%w: built without gocv tag", ErrCameraUnavailable)
}

// Device returns the device index this webcam was opened with.
func (w *Webcam) Device() int {
	return w.device
}

// CaptureFrame fails: built without the gocv tag.
func (w *Webcam) CaptureFrame(ctx context.Context) (*Frame, error) {
	return nil, fmt.Errorf("%w: built without gocv tag", ErrCameraUnavailable)
}

// Close is a no-op for the stub.
func (w *Webcam) Close() error {
	return nil
}

var _ Source = (*Webcam)(nil)
