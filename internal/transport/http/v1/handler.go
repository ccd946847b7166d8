// Package v1 implements the public session API.
package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/parley-sim/parley/domain"
	"github.com/parley-sim/parley/internal/hub"
	"github.com/parley-sim/parley/internal/service"
)

// Handler handles v1 API requests.
type Handler struct {
	service *service.Service
	hub     *hub.Hub
	log     zerolog.Logger
}

// NewHandler creates a new v1 handler.
func NewHandler(svc *service.Service, h *hub.Hub, log zerolog.Logger) *Handler {
	return &Handler{
		service: svc,
		hub:     h,
		log:     log.With().Str("component", "api").Logger(),
	}
}

// RegisterRoutes registers the v1 routes.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/sessions", h.CreateSession)
	e.GET("/v1/sessions/:session_id", h.GetSession)
	e.POST("/v1/sessions/:session_id/start", h.StartSession)
	e.POST("/v1/sessions/:session_id/pause", h.PauseSession)
	e.POST("/v1/sessions/:session_id/resume", h.ResumeSession)
	e.POST("/v1/sessions/:session_id/end", h.EndSession)
	e.POST("/v1/sessions/:session_id/messages", h.PostMessage)
	e.GET("/v1/sessions/:session_id/messages", h.GetSessionMessages)
	e.GET("/v1/sessions/:session_id/stream", h.StreamSession)
	e.GET("/v1/sessions/:session_id/analysis", h.GetAnalysis)
}

// jsonError maps domain errors onto HTTP status codes. Lifecycle violations
// are the client's stale view of the session, hence 409.
func jsonError(c echo.Context, err error) error {
	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}
	var invalid *domain.InvalidStateTransitionError
	if errors.As(err, &invalid) {
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
