package v1

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/parley-sim/parley/domain"
)

// CreateSessionRequest is the body for POST /v1/sessions.
type CreateSessionRequest struct {
	Name   string `json:"name"`
	Preset string `json:"preset"`
}

// CreateSession creates a new PENDING session.
// POST /v1/sessions
func (h *Handler) CreateSession(c echo.Context) error {
	var req CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}

	session, err := h.service.CreateSession(c.Request().Context(), req.Name, req.Preset)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, session)
}

// GetSession returns a session with its messages.
// GET /v1/sessions/:session_id
func (h *Handler) GetSession(c echo.Context) error {
	session, messages, err := h.service.GetSession(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session":  session,
		"messages": messages,
	})
}

// StartSession transitions a session to ACTIVE.
// POST /v1/sessions/:session_id/start
func (h *Handler) StartSession(c echo.Context) error {
	session, err := h.service.StartSession(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// PauseSession transitions a session to PAUSED.
// POST /v1/sessions/:session_id/pause
func (h *Handler) PauseSession(c echo.Context) error {
	session, err := h.service.PauseSession(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// ResumeSession transitions a PAUSED session back to ACTIVE.
// POST /v1/sessions/:session_id/resume
func (h *Handler) ResumeSession(c echo.Context) error {
	session, err := h.service.ResumeSession(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// EndSessionRequest is the body for POST /v1/sessions/:session_id/end.
type EndSessionRequest struct {
	Errored bool `json:"errored"`
}

// EndSession completes a session, or marks it errored.
// POST /v1/sessions/:session_id/end
func (h *Handler) EndSession(c echo.Context) error {
	var req EndSessionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	session, err := h.service.EndSession(c.Request().Context(), c.Param("session_id"), req.Errored)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// PostMessageRequest is the body for POST /v1/sessions/:session_id/messages.
type PostMessageRequest struct {
	Content  string          `json:"content"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// PostMessage appends a user message and triggers generation. The response
// acknowledges receipt immediately; generated output is delivered only over
// the session's stream.
// POST /v1/sessions/:session_id/messages
func (h *Handler) PostMessage(c echo.Context) error {
	var req PostMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Content == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "content is required"})
	}

	userMsg, err := h.service.StartExchange(c.Request().Context(), c.Param("session_id"), req.Content, req.Metadata)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"status":     "processing",
		"message_id": userMsg.MessageID,
	})
}

// GetSessionMessages retrieves messages for a session.
// GET /v1/sessions/:session_id/messages
func (h *Handler) GetSessionMessages(c echo.Context) error {
	limit := 0
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil {
			limit = val
		}
	}

	_, messages, err := h.service.GetSession(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return jsonError(c, err)
	}
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"messages": messages,
	})
}

// GetAnalysis returns the stored analysis for a completed session.
// GET /v1/sessions/:session_id/analysis
func (h *Handler) GetAnalysis(c echo.Context) error {
	result, err := h.service.GetAnalysis(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
