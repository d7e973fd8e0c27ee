package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/colorvox/colorvox/pkg/announce"
	"github.com/colorvox/colorvox/pkg/capture"
	"github.com/colorvox/colorvox/pkg/classify"
)

// Fixed user-facing messages for the two error kinds.
const (
	MsgCameraFailed   = "Could not access the camera. Check permissions and try again."
	MsgClassifyFailed = "Could not identify the color. Please try again."
)

// DefaultInterval is the capture-and-classify cadence.
const DefaultInterval = 3 * time.Second

// ErrAlreadyActive is returned when starting an active session.
var ErrAlreadyActive = errors.New("session: already active")

// Opener opens a capture source for a facing mode.
type Opener func(f Facing) (capture.Source, error)

// ClipPlayer plays a fetched audio clip. Playback errors are logged by
// the controller, never surfaced to the user.
type ClipPlayer interface {
	Play(mp3 []byte) error
}

// State is a snapshot of the session exposed to the presentation layer.
type State struct {
	Status   Status `json:"status"`
	Facing   Facing `json:"facing"`
	Color    string `json:"color,omitempty"`
	AudioURL string `json:"audio_url,omitempty"`
	Message  string `json:"message,omitempty"`
	Busy     bool   `json:"busy"`
}

// Config wires the controller's collaborators.
type Config struct {
	// Opener opens the camera for a facing mode. Required.
	Opener Opener

	// Classifier labels captured frames. Required.
	Classifier classify.Classifier

	// Synthesizer turns labels into announcement audio. Required.
	Synthesizer announce.Synthesizer

	// Player plays fetched clips. Optional; nil disables playback.
	Player ClipPlayer

	// Interval is the cycle cadence. Zero means DefaultInterval.
	Interval time.Duration

	// OnState is invoked after every state change with a snapshot.
	// It must not call back into the controller.
	OnState func(State)

	// OnFrame is invoked with each captured JPEG (dashboard preview).
	OnFrame func(jpeg []byte)

	// Logger is the structured logger.
	Logger *slog.Logger
}

// Controller owns camera lifecycle, polling cadence, and status
// transitions. At most one classification call is in flight at a time;
// each activation carries an epoch so a late result from a previous
// activation is discarded instead of racing a fresh session.
type Controller struct {
	opener   Opener
	classer  classify.Classifier
	synth    announce.Synthesizer
	player   ClipPlayer
	interval time.Duration
	onState  func(State)
	onFrame  func([]byte)
	logger   *slog.Logger

	mu        sync.Mutex
	state     State
	source    capture.Source
	cancel    context.CancelFunc
	epoch     string
	inFlight  bool
	lastFrame []byte
	pending   []State
}

// NewController creates a session controller in the Ready state.
func NewController(cfg Config) *Controller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{
		opener:   cfg.Opener,
		classer:  cfg.Classifier,
		synth:    cfg.Synthesizer,
		player:   cfg.Player,
		interval: interval,
		onState:  cfg.OnState,
		onFrame:  cfg.OnFrame,
		logger:   logger.With("component", "session"),
		state:    State{Status: StatusReady, Facing: FacingFront},
	}
}

// State returns a snapshot of the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.state
	st.Busy = c.inFlight
	return st
}

// IsActive reports whether a capture cycle is running.
func (c *Controller) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

// LatestFrame returns the most recent captured JPEG, or nil.
func (c *Controller) LatestFrame() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastFrame == nil {
		return nil
	}
	out := make([]byte, len(c.lastFrame))
	copy(out, c.lastFrame)
	return out
}

// Start activates the session: requests camera access for the current
// facing mode and begins the recurring cycle. On camera failure the
// session transitions to Error and the camera is left off.
func (c *Controller) Start() error {
	c.mu.Lock()
	err := c.startLocked()
	states := c.takePendingLocked()
	c.mu.Unlock()

	c.notify(states)
	return err
}

// Stop deactivates the session: cancels the recurring cycle and
// releases the camera. Safe to call mid-request; the in-flight result
// is discarded via the epoch check.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.stopLocked()
	c.setStatusLocked(StatusStopped, "")
	states := c.takePendingLocked()
	c.mu.Unlock()

	c.notify(states)
}

// SetFacing switches the requested camera. If the session is active the
// current stream is released before the new one is requested.
func (c *Controller) SetFacing(f Facing) error {
	c.mu.Lock()
	if f == c.state.Facing {
		c.mu.Unlock()
		return nil
	}

	active := c.cancel != nil
	if active {
		c.stopLocked()
	}
	c.state.Facing = f

	var err error
	if active {
		err = c.startLocked()
	} else {
		c.emitLocked()
	}
	states := c.takePendingLocked()
	c.mu.Unlock()

	c.notify(states)
	return err
}

// ToggleFacing switches to the opposite camera.
func (c *Controller) ToggleFacing() error {
	return c.SetFacing(c.State().Facing.Opposite())
}

// startLocked opens the camera and launches the cycle goroutine.
func (c *Controller) startLocked() error {
	if c.cancel != nil {
		return ErrAlreadyActive
	}

	c.setStatusLocked(StatusInitializing, "")

	src, err := c.opener(c.state.Facing)
	if err != nil {
		c.logger.Error("camera open failed", "facing", c.state.Facing.String(), "error", err)
		c.setStatusLocked(StatusError, MsgCameraFailed)
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.source = src
	c.cancel = cancel
	c.epoch = uuid.NewString()
	c.setStatusLocked(StatusDetecting, "")

	go c.run(ctx, c.epoch, src)

	c.logger.Info("session started", "facing", c.state.Facing.String(), "interval", c.interval)
	return nil
}

// stopLocked cancels the cycle and releases the camera tracks.
func (c *Controller) stopLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.source != nil {
		if err := c.source.Close(); err != nil {
			c.logger.Warn("source close failed", "error", err)
		}
		c.source = nil
	}
	c.epoch = ""
}

// run drives the recurring cycle until ctx is cancelled.
func (c *Controller) run(ctx context.Context, epoch string, src capture.Source) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.cycle(ctx, epoch, src)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.cycle(ctx, epoch, src)
		}
	}
}

// cycle runs one capture-classify-announce round trip. A cycle is
// skipped while a previous classification call has not resolved.
func (c *Controller) cycle(ctx context.Context, epoch string, src capture.Source) {
	c.mu.Lock()
	if c.inFlight || c.epoch != epoch {
		c.mu.Unlock()
		return
	}
	c.inFlight = true
	c.mu.Unlock()

	// The guard drops as soon as the attempt has resolved, before any
	// status transition is applied.
	release := func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}

	frame, err := src.CaptureFrame(ctx)
	if err != nil {
		release()
		if ctx.Err() != nil {
			return
		}
		c.logger.Warn("capture failed", "error", err)
		c.fail(epoch, MsgClassifyFailed)
		return
	}

	c.mu.Lock()
	live := c.epoch == epoch
	if live {
		c.lastFrame = frame.JPEG
	}
	c.mu.Unlock()
	if !live {
		// The activation this capture belongs to is gone; its frame
		// must not reach the dashboard preview either.
		release()
		return
	}
	if c.onFrame != nil {
		c.onFrame(frame.JPEG)
	}

	label, err := c.classer.DominantColor(ctx, frame.JPEG)
	release()
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.logger.Warn("classification failed", "error", err)
		c.fail(epoch, MsgClassifyFailed)
		return
	}

	c.apply(ctx, epoch, label)
}

// fail transitions to Error with a fixed retry message. The cycle keeps
// ticking; a later success returns to Detecting.
func (c *Controller) fail(epoch, msg string) {
	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return
	}
	c.setStatusLocked(StatusError, msg)
	states := c.takePendingLocked()
	c.mu.Unlock()

	c.notify(states)
}

// apply records a classification result. A result equal to the current
// label (case-insensitive) does not replace it and is not re-announced.
// A result from a stale epoch is discarded entirely.
func (c *Controller) apply(ctx context.Context, epoch, label string) {
	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		c.logger.Debug("discarding stale result", "label", label)
		return
	}

	changed := !strings.EqualFold(label, c.state.Color)
	if changed {
		c.state.Color = label
		c.state.AudioURL = c.synth.SpeechURL(label)
	}
	c.setStatusLocked(StatusDetecting, "")
	states := c.takePendingLocked()
	c.mu.Unlock()

	c.notify(states)

	if changed {
		c.announce(ctx, label)
	}
}

// announce fetches and plays the clip for a new label. Failures are
// logged, never surfaced.
func (c *Controller) announce(ctx context.Context, label string) {
	audio, err := c.synth.Fetch(ctx, label)
	if err != nil {
		c.logger.Warn("synthesis failed", "label", label, "error", err)
		return
	}
	if c.player == nil {
		return
	}
	if err := c.player.Play(audio); err != nil {
		c.logger.Warn("playback failed", "label", label, "error", err)
	}
}

// setStatusLocked applies a status transition and queues a snapshot
// for notification (must hold mu).
func (c *Controller) setStatusLocked(s Status, msg string) {
	c.state.Status = s
	c.state.Message = msg
	c.emitLocked()
}

// emitLocked queues the current state for notification (must hold mu).
func (c *Controller) emitLocked() {
	c.state.Busy = c.inFlight
	c.pending = append(c.pending, c.state)
}

// takePendingLocked drains queued snapshots (must hold mu).
func (c *Controller) takePendingLocked() []State {
	states := c.pending
	c.pending = nil
	return states
}

// notify delivers queued snapshots outside the lock, in order.
func (c *Controller) notify(states []State) {
	if c.onState == nil {
		return
	}
	for _, st := range states {
		c.onState(st)
	}
}
