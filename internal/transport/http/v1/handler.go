// Package v1 provides the HTTP handlers for the query engine API.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pitwall/paddock/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	engine *service.Engine
}

// NewHandler creates a new handler.
func NewHandler(engine *service.Engine) *Handler {
	return &Handler{
		engine: engine,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/query", h.ProcessQuery)

	e.POST("/v1/confirmations/:confirmation_id/resolve", h.ResolveConfirmation)
	e.GET("/v1/sessions/:session_id/confirmations", h.GetPendingConfirmations)

	e.GET("/v1/sessions/:session_id/history", h.GetHistory)
	e.DELETE("/v1/sessions/:session_id", h.DeleteSession)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}
