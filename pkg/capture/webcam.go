//go:build gocv
// +build gocv

package capture

import (
	"context"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Webcam captures frames from a local video device via OpenCV.
type Webcam struct {
	device int
	cam    *gocv.VideoCapture

	mu     sync.Mutex
	closed bool
}

// OpenWebcam opens the video device with the given index.
func OpenWebcam(device int) (*Webcam, error) {
	cam, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("%w: device %d: %v", ErrCameraUnavailable, device, err)
	}
	if !cam.IsOpened() {
		cam.Close()
		return nil, fmt.Errorf("%w: device %d", ErrCameraUnavailable, device)
	}
	return &Webcam{device: device, cam: cam}, nil
}

// Device returns the device index this webcam was opened with.
func (w *Webcam) Device() int {
	return w.device
}

// CaptureFrame grabs the current frame and encodes it as JPEG.
func (w *Webcam) CaptureFrame(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrSourceClosed
	}

	img := gocv.NewMat()
	defer img.Close()

	if ok := w.cam.Read(&img); !ok || img.Empty() {
		return nil, ErrEmptyFrame
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return nil, fmt.Errorf("capture: encode jpeg: %w", err)
	}
	defer buf.Close()

	jpeg := make([]byte, len(buf.GetBytes()))
	copy(jpeg, buf.GetBytes())

	return &Frame{
		JPEG:   jpeg,
		Width:  img.Cols(),
		Height: img.Rows(),
	}, nil
}

// Close releases the video device.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	return w.cam.Close()
}

// Verify Webcam implements Source at compile time.
var _ Source = (*Webcam)(nil)
