package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/colorvox/colorvox/pkg/hub"
	"github.com/colorvox/colorvox/pkg/session"
)

// handleStatus returns the current session snapshot.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.ctrl.State())
}

// handleStart activates the session.
func (s *Server) handleStart(c *fiber.Ctx) error {
	if err := s.ctrl.Start(); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
			"state": s.ctrl.State(),
		})
	}
	return c.JSON(s.ctrl.State())
}

// handleStop deactivates the session.
func (s *Server) handleStop(c *fiber.Ctx) error {
	s.ctrl.Stop()
	return c.JSON(s.ctrl.State())
}

// FacingRequest is the request body for the facing endpoint.
// An empty body toggles to the opposite camera.
type FacingRequest struct {
	Facing string `json:"facing"`
}

// handleFacing switches or toggles the camera facing mode.
func (s *Server) handleFacing(c *fiber.Ctx) error {
	var req FacingRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "malformed request body"})
		}
	}

	var err error
	if req.Facing == "" {
		err = s.ctrl.ToggleFacing()
	} else {
		var f session.Facing
		if f, err = session.ParseFacing(req.Facing); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		err = s.ctrl.SetFacing(f)
	}

	if err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
			"state": s.ctrl.State(),
		})
	}
	return c.JSON(s.ctrl.State())
}

// handleFrame returns the most recent captured JPEG.
func (s *Server) handleFrame(c *fiber.Ctx) error {
	frame := s.ctrl.LatestFrame()
	if frame == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no frame captured yet"})
	}
	c.Set(fiber.HeaderContentType, "image/jpeg")
	return c.Send(frame)
}

// handleSpeech returns the current announcement audio reference.
func (s *Server) handleSpeech(c *fiber.Ctx) error {
	st := s.ctrl.State()
	if st.AudioURL == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "nothing announced yet"})
	}
	return c.JSON(fiber.Map{
		"color":     st.Color,
		"audio_url": st.AudioURL,
	})
}

// handleStatusWS streams session snapshots over websocket.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	// Send the current state immediately so new clients render
	// without waiting for the next change.
	c.WriteJSON(s.ctrl.State())

	client := hub.NewClient(s.statusHub, c)
	client.Run()
}

// handleCameraWS streams binary JPEG preview frames over websocket.
func (s *Server) handleCameraWS(c *websocket.Conn) {
	client := hub.NewClient(s.cameraHub, c)
	client.Run()
}
