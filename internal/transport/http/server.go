// Package http provides the HTTP server for parley.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/parley-sim/parley/internal/hub"
	"github.com/parley-sim/parley/internal/service"
	v1 "github.com/parley-sim/parley/internal/transport/http/v1"
	"github.com/parley-sim/parley/internal/transport/ws"
)

// NewServer creates and configures the HTTP server. It carries the v1 session
// API and the WebSocket stream bridge on one listener.
func NewServer(svc *service.Service, h *hub.Hub, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Handlers
	v1Handler := v1.NewHandler(svc, h, log)
	wsServer := ws.NewServer(svc, h, log)

	// Register Routes
	v1Handler.RegisterRoutes(e)
	wsServer.RegisterRoutes(e)

	return e
}
