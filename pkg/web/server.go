// Package web provides the colorvox dashboard: a small HTTP API plus
// websocket feeds for live session state and camera preview frames.
package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/colorvox/colorvox/internal/log"
	"github.com/colorvox/colorvox/pkg/hub"
	"github.com/colorvox/colorvox/pkg/session"
)

// Server is the dashboard server.
type Server struct {
	app  *fiber.App
	port string

	ctrl *session.Controller

	// Hubs for websocket broadcast
	statusHub *hub.Hub
	cameraHub *hub.Hub
}

// NewServer creates a dashboard server around a session controller.
func NewServer(port string, ctrl *session.Controller) *Server {
	s := &Server{
		port:      port,
		ctrl:      ctrl,
		statusHub: hub.New("status"),
		cameraHub: hub.New("camera"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "ColorVox Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Post("/session/start", s.handleStart)
	api.Post("/session/stop", s.handleStop)
	api.Post("/facing", s.handleFacing)
	api.Get("/frame", s.handleFrame)
	api.Get("/speech", s.handleSpeech)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/camera", websocket.New(s.handleCameraWS))

	s.app = app
	return s
}

// Start starts the web server and blocks.
func (s *Server) Start() error {
	log.Info("dashboard listening", "addr", "http://localhost:"+s.port)

	go s.statusHub.Run()
	go s.cameraHub.Run()

	return s.app.Listen(":" + s.port)
}

// BroadcastState pushes a session snapshot to status subscribers.
// Wire this to the controller's OnState callback.
func (s *Server) BroadcastState(st session.State) {
	s.statusHub.BroadcastJSON(st)
}

// BroadcastFrame pushes a JPEG preview frame to camera subscribers.
// Wire this to the controller's OnFrame callback.
func (s *Server) BroadcastFrame(jpeg []byte) {
	s.cameraHub.BroadcastBinary(jpeg)
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Shutdown gracefully stops the web server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
