package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/colorvox/colorvox/pkg/announce"
	"github.com/colorvox/colorvox/pkg/capture"
	"github.com/colorvox/colorvox/pkg/classify"
	"github.com/colorvox/colorvox/pkg/session"
)

// stateRecorder collects OnState snapshots in order.
type stateRecorder struct {
	mu     sync.Mutex
	states []session.State
}

func (r *stateRecorder) record(st session.State) {
	r.mu.Lock()
	r.states = append(r.states, st)
	r.mu.Unlock()
}

func (r *stateRecorder) statuses() []session.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]session.Status, len(r.states))
	for i, st := range r.states {
		out[i] = st.Status
	}
	return out
}

func (r *stateRecorder) sawColor(color string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, st := range r.states {
		if st.Color == color {
			return true
		}
	}
	return false
}

// recordingOpener hands out capture mocks and logs open/close ordering.
type recordingOpener struct {
	mu      sync.Mutex
	events  []string
	sources []*capture.Mock
	err     error
}

func (o *recordingOpener) open(f session.Facing) (capture.Source, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.err != nil {
		return nil, o.err
	}

	src := capture.NewMock()
	src.CloseFunc = func() error {
		o.mu.Lock()
		o.events = append(o.events, "close")
		o.mu.Unlock()
		return nil
	}
	o.events = append(o.events, "open:"+f.String())
	o.sources = append(o.sources, src)
	return src, nil
}

func (o *recordingOpener) eventLog() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.events))
	copy(out, o.events)
	return out
}

func TestStartTransitionsToDetecting(t *testing.T) {
	rec := &stateRecorder{}
	opener := &recordingOpener{}

	ctrl := session.NewController(session.Config{
		Opener:      opener.open,
		Classifier:  classify.NewMock(),
		Synthesizer: announce.NewMock(),
		Interval:    time.Hour, // only the immediate first cycle runs
		OnState:     rec.record,
	})

	require.Equal(t, session.StatusReady, ctrl.State().Status)
	require.NoError(t, ctrl.Start())
	defer ctrl.Stop()

	statuses := rec.statuses()
	require.GreaterOrEqual(t, len(statuses), 2)
	require.Equal(t, session.StatusInitializing, statuses[0])
	require.Equal(t, session.StatusDetecting, statuses[1])

	require.Eventually(t, func() bool {
		return ctrl.State().Color == "Blue"
	}, time.Second, 5*time.Millisecond, "first cycle should record the mock label")
}

func TestStartCameraDenied(t *testing.T) {
	rec := &stateRecorder{}
	opener := &recordingOpener{err: capture.ErrCameraUnavailable}

	ctrl := session.NewController(session.Config{
		Opener:      opener.open,
		Classifier:  classify.NewMock(),
		Synthesizer: announce.NewMock(),
		OnState:     rec.record,
	})

	err := ctrl.Start()
	require.ErrorIs(t, err, capture.ErrCameraUnavailable)

	st := ctrl.State()
	require.Equal(t, session.StatusError, st.Status)
	require.Equal(t, session.MsgCameraFailed, st.Message)
	require.False(t, ctrl.IsActive(), "camera must be left off")
}

func TestStartTwiceFails(t *testing.T) {
	ctrl := session.NewController(session.Config{
		Opener:      (&recordingOpener{}).open,
		Classifier:  classify.NewMock(),
		Synthesizer: announce.NewMock(),
		Interval:    time.Hour,
	})
	require.NoError(t, ctrl.Start())
	defer ctrl.Stop()

	require.ErrorIs(t, ctrl.Start(), session.ErrAlreadyActive)
}

func TestFacingSwitchStopsOldStreamFirst(t *testing.T) {
	opener := &recordingOpener{}

	ctrl := session.NewController(session.Config{
		Opener:      opener.open,
		Classifier:  classify.NewMock(),
		Synthesizer: announce.NewMock(),
		Interval:    time.Hour,
	})
	require.NoError(t, ctrl.Start())
	defer ctrl.Stop()

	require.NoError(t, ctrl.SetFacing(session.FacingRear))
	require.Equal(t, session.FacingRear, ctrl.State().Facing)

	// The old stream's tracks stop before the new stream is requested.
	require.Equal(t, []string{"open:front", "close", "open:rear"}, opener.eventLog())
}

func TestToggleFacingWhileInactive(t *testing.T) {
	opener := &recordingOpener{}
	ctrl := session.NewController(session.Config{
		Opener:      opener.open,
		Classifier:  classify.NewMock(),
		Synthesizer: announce.NewMock(),
	})

	require.NoError(t, ctrl.ToggleFacing())
	require.Equal(t, session.FacingRear, ctrl.State().Facing)
	require.Empty(t, opener.eventLog(), "no camera request while inactive")
	require.Equal(t, session.StatusReady, ctrl.State().Status)
}

func TestSameLabelIsNotReplacedOrReannounced(t *testing.T) {
	rec := &stateRecorder{}
	synth := announce.NewMock()

	var mu sync.Mutex
	labels := []string{"Blue", "blue", "Red", "Red"}
	i := 0
	classer := &classify.Mock{
		DominantColorFunc: func(ctx context.Context, jpeg []byte) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			label := labels[min(i, len(labels)-1)]
			i++
			return label, nil
		},
	}

	ctrl := session.NewController(session.Config{
		Opener:      (&recordingOpener{}).open,
		Classifier:  classer,
		Synthesizer: synth,
		Interval:    10 * time.Millisecond,
		OnState:     rec.record,
	})
	require.NoError(t, ctrl.Start())
	defer ctrl.Stop()

	require.Eventually(t, func() bool {
		return ctrl.State().Color == "Red"
	}, time.Second, 5*time.Millisecond)

	// "blue" matched the displayed "Blue" case-insensitively: no
	// replacement, no second synthesis for it.
	require.False(t, rec.sawColor("blue"), "lowercase repeat must not replace the label")
	require.Equal(t, []string{"Blue", "Red"}, synth.Fetched())
}

func TestClassificationErrorKeepsCycling(t *testing.T) {
	var mu sync.Mutex
	failing := true
	classer := &classify.Mock{
		DominantColorFunc: func(ctx context.Context, jpeg []byte) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			if failing {
				return "", classify.ErrEmptyLabel
			}
			return "Green", nil
		},
	}

	opener := &recordingOpener{}
	ctrl := session.NewController(session.Config{
		Opener:      opener.open,
		Classifier:  classer,
		Synthesizer: announce.NewMock(),
		Interval:    10 * time.Millisecond,
	})
	require.NoError(t, ctrl.Start())
	defer ctrl.Stop()

	require.Eventually(t, func() bool {
		st := ctrl.State()
		return st.Status == session.StatusError && st.Message == session.MsgClassifyFailed
	}, time.Second, 5*time.Millisecond)

	// The next scheduled cycles still run after an error.
	mu.Lock()
	failing = false
	mu.Unlock()

	require.Eventually(t, func() bool {
		st := ctrl.State()
		return st.Status == session.StatusDetecting && st.Color == "Green"
	}, time.Second, 5*time.Millisecond)
}

func TestStopDuringInFlightCall(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	classer := &classify.Mock{
		DominantColorFunc: func(ctx context.Context, jpeg []byte) (string, error) {
			close(started)
			<-release
			// Simulate a late-arriving remote result that ignores
			// cancellation.
			return "Green", nil
		},
	}

	opener := &recordingOpener{}
	ctrl := session.NewController(session.Config{
		Opener:      opener.open,
		Classifier:  classer,
		Synthesizer: announce.NewMock(),
		Interval:    20 * time.Millisecond,
	})
	require.NoError(t, ctrl.Start())

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("classification never started")
	}

	ctrl.Stop()
	close(release)

	require.Equal(t, session.StatusStopped, ctrl.State().Status)
	require.False(t, ctrl.IsActive())

	opener.mu.Lock()
	src := opener.sources[0]
	opener.mu.Unlock()
	require.Equal(t, 1, src.Closes(), "tracks released on stop")

	// The stale result must not update the new display state, and the
	// recurring timer must not remain active.
	time.Sleep(80 * time.Millisecond)
	require.Empty(t, ctrl.State().Color, "stale result discarded")
	captures := src.Captures()
	time.Sleep(60 * time.Millisecond)
	require.Equal(t, captures, src.Captures(), "no further cycles after stop")
}

func TestStopDuringCaptureDropsFrame(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	var framesMu sync.Mutex
	var frames int

	opener := func(f session.Facing) (capture.Source, error) {
		return &capture.Mock{
			CaptureFrameFunc: func(ctx context.Context) (*capture.Frame, error) {
				close(started)
				<-release
				// Simulate a camera read that outlives the session.
				return &capture.Frame{JPEG: []byte{0xFF, 0xD8}}, nil
			},
		}, nil
	}

	ctrl := session.NewController(session.Config{
		Opener:      opener,
		Classifier:  classify.NewMock(),
		Synthesizer: announce.NewMock(),
		Interval:    time.Hour,
		OnFrame: func(jpeg []byte) {
			framesMu.Lock()
			frames++
			framesMu.Unlock()
		},
	})
	require.NoError(t, ctrl.Start())

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("capture never started")
	}

	ctrl.Stop()
	close(release)

	// The late frame belongs to the stopped activation: it must reach
	// neither the stored preview nor the dashboard broadcast.
	time.Sleep(50 * time.Millisecond)
	require.Nil(t, ctrl.LatestFrame(), "stale frame must not be stored")
	framesMu.Lock()
	defer framesMu.Unlock()
	require.Zero(t, frames, "stale frame must not be broadcast to the dashboard after Stop")
}

func TestErrorThenFreshActivation(t *testing.T) {
	opener := &recordingOpener{err: errors.New("denied")}
	ctrl := session.NewController(session.Config{
		Opener:      opener.open,
		Classifier:  classify.NewMock(),
		Synthesizer: announce.NewMock(),
		Interval:    time.Hour,
	})

	require.Error(t, ctrl.Start())
	require.Equal(t, session.StatusError, ctrl.State().Status)

	// Error returns to Initializing only via a fresh activation.
	opener.mu.Lock()
	opener.err = nil
	opener.mu.Unlock()

	require.NoError(t, ctrl.Start())
	defer ctrl.Stop()
	require.Equal(t, session.StatusDetecting, ctrl.State().Status)
}
