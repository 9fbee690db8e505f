// Package http provides the HTTP server for the query engine.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pitwall/paddock/internal/service"
	v1 "github.com/pitwall/paddock/internal/transport/http/v1"
)

// NewServer creates and configures the HTTP server exposing the query,
// confirmation, and session APIs.
func NewServer(engine *service.Engine) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Handlers
	handler := v1.NewHandler(engine)
	handler.RegisterRoutes(e)

	return e
}
