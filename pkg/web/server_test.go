package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/colorvox/colorvox/pkg/announce"
	"github.com/colorvox/colorvox/pkg/capture"
	"github.com/colorvox/colorvox/pkg/classify"
	"github.com/colorvox/colorvox/pkg/session"
	"github.com/colorvox/colorvox/pkg/web"
)

func newTestServer(t *testing.T, opener session.Opener) *web.Server {
	t.Helper()
	if opener == nil {
		opener = func(f session.Facing) (capture.Source, error) {
			return capture.NewMock(), nil
		}
	}
	ctrl := session.NewController(session.Config{
		Opener:      opener,
		Classifier:  classify.NewMock(),
		Synthesizer: announce.NewMock(),
		Interval:    time.Hour,
	})
	t.Cleanup(ctrl.Stop)
	return web.NewServer("0", ctrl)
}

func doJSON(t *testing.T, s *web.Server, method, path string, body []byte) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.App().Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed map[string]any
	if len(data) > 0 && resp.Header.Get("Content-Type") != "image/jpeg" {
		require.NoError(t, json.Unmarshal(data, &parsed), "body: %s", data)
	}
	return resp.StatusCode, parsed
}

func TestStatusEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	code, body := doJSON(t, s, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ready", body["status"])
	require.Equal(t, "front", body["facing"])
}

func TestStartStopEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	code, body := doJSON(t, s, http.MethodPost, "/api/session/start", nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "detecting", body["status"])

	code, body = doJSON(t, s, http.MethodPost, "/api/session/stop", nil)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "stopped", body["status"])
}

func TestStartCameraDenied(t *testing.T) {
	s := newTestServer(t, func(f session.Facing) (capture.Source, error) {
		return nil, capture.ErrCameraUnavailable
	})

	code, body := doJSON(t, s, http.MethodPost, "/api/session/start", nil)
	require.Equal(t, http.StatusConflict, code)
	require.Contains(t, body, "error")

	state, ok := body["state"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "error", state["status"])
	require.Equal(t, session.MsgCameraFailed, state["message"])
}

func TestFacingEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("explicit value", func(t *testing.T) {
		code, body := doJSON(t, s, http.MethodPost, "/api/facing", []byte(`{"facing":"rear"}`))
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "rear", body["facing"])
	})

	t.Run("empty body toggles", func(t *testing.T) {
		code, body := doJSON(t, s, http.MethodPost, "/api/facing", nil)
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "front", body["facing"])
	})

	t.Run("invalid value", func(t *testing.T) {
		code, _ := doJSON(t, s, http.MethodPost, "/api/facing", []byte(`{"facing":"sideways"}`))
		require.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("malformed body does not toggle", func(t *testing.T) {
		code, body := doJSON(t, s, http.MethodPost, "/api/facing", []byte(`{"facing":`))
		require.Equal(t, http.StatusBadRequest, code)
		require.Contains(t, body, "error")

		code, body = doJSON(t, s, http.MethodGet, "/api/status", nil)
		require.Equal(t, http.StatusOK, code)
		require.Equal(t, "front", body["facing"])
	})
}

func TestFrameAndSpeechEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("empty before activation", func(t *testing.T) {
		code, _ := doJSON(t, s, http.MethodGet, "/api/frame", nil)
		require.Equal(t, http.StatusNotFound, code)

		code, _ = doJSON(t, s, http.MethodGet, "/api/speech", nil)
		require.Equal(t, http.StatusNotFound, code)
	})

	code, _ := doJSON(t, s, http.MethodPost, "/api/session/start", nil)
	require.Equal(t, http.StatusOK, code)

	t.Run("populated after first cycle", func(t *testing.T) {
		require.Eventually(t, func() bool {
			code, _ := doJSON(t, s, http.MethodGet, "/api/frame", nil)
			return code == http.StatusOK
		}, 2*time.Second, 20*time.Millisecond)

		require.Eventually(t, func() bool {
			code, body := doJSON(t, s, http.MethodGet, "/api/speech", nil)
			return code == http.StatusOK && body["color"] == "Blue" && body["audio_url"] != ""
		}, 2*time.Second, 20*time.Millisecond)
	})
}

// startListening runs the server on a real port so websocket routes can
// be dialed; app.Test cannot carry an upgrade.
func startListening(t *testing.T, port string) *web.Server {
	t.Helper()
	ctrl := session.NewController(session.Config{
		Opener: func(f session.Facing) (capture.Source, error) {
			return capture.NewMock(), nil
		},
		Classifier:  classify.NewMock(),
		Synthesizer: announce.NewMock(),
		Interval:    time.Hour,
	})
	t.Cleanup(ctrl.Stop)

	srv := web.NewServer(port, ctrl)
	go srv.Start()
	t.Cleanup(func() { srv.Shutdown() })
	time.Sleep(100 * time.Millisecond)
	return srv
}

func TestStatusWebSocketSendsSnapshotFirst(t *testing.T) {
	startListening(t, "18085")

	ws, _, err := websocket.DefaultDialer.Dial("ws://localhost:18085/ws/status", nil)
	require.NoError(t, err)
	defer ws.Close()

	// New subscribers render immediately from the pushed snapshot,
	// without waiting for the next state change.
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var st map[string]any
	require.NoError(t, ws.ReadJSON(&st))
	require.Equal(t, "ready", st["status"])
	require.Equal(t, "front", st["facing"])
}

func TestCameraWebSocketStreamsFrames(t *testing.T) {
	srv := startListening(t, "18086")

	ws, _, err := websocket.DefaultDialer.Dial("ws://localhost:18086/ws/camera", nil)
	require.NoError(t, err)
	defer ws.Close()
	time.Sleep(100 * time.Millisecond)

	frame := []byte{0xFF, 0xD8, 0xFF, 0xD9}
	srv.BroadcastFrame(frame)

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	mt, data, err := ws.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, mt)
	require.Equal(t, frame, data)
}
