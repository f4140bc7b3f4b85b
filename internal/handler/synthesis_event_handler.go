package handler

import (
	"ai-synthesis-be/internal/pkg/logger"
	internalWS "ai-synthesis-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const eventHandlerModule = "SynthesisEventHandler"

// SynthesisEventHandler streams completed syntheses to WebSocket clients
type SynthesisEventHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewSynthesisEventHandler(hub *internalWS.Hub, log logger.ILogger) *SynthesisEventHandler {
	return &SynthesisEventHandler{
		hub:    hub,
		logger: log,
	}
}

// ServeWs upgrades the request. Authentication, when enabled, runs before this as route middleware.
func (h *SynthesisEventHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info(eventHandlerModule, "Starting WebSocket session", map[string]interface{}{"remote": conn.RemoteAddr().String()})
		internalWS.ServeWs(h.hub, conn)
		h.logger.Info(eventHandlerModule, "WebSocket session ended", map[string]interface{}{"remote": conn.RemoteAddr().String()})
	})(c)
}

// RegisterRoutes mounts the event stream under the synthesis group
func (h *SynthesisEventHandler) RegisterRoutes(router fiber.Router, middlewares ...fiber.Handler) {
	handlers := append(middlewares, h.ServeWs)
	router.Get("/synthesis/v1/events", handlers...)
}
