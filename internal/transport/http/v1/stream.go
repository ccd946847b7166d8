package v1

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// StreamSession attaches the caller to the session's live event stream and
// writes newline-delimited JSON, one event per line, flushed as it arrives.
// The stream stays open across exchanges and closes right after a terminal
// event or when the client disconnects.
// GET /v1/sessions/:session_id/stream
func (h *Handler) StreamSession(c echo.Context) error {
	sessionID := c.Param("session_id")

	if _, _, err := h.service.GetSession(c.Request().Context(), sessionID); err != nil {
		return jsonError(c, err)
	}

	clientID := "cli_" + uuid.New().String()[:8]
	sub := h.hub.Subscribe(sessionID, clientID)
	defer h.hub.Unsubscribe(sessionID, clientID)

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "application/x-ndjson")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	h.log.Debug().Str("session_id", sessionID).Str("client_id", clientID).Msg("stream attached")

	enc := json.NewEncoder(resp)
	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-sub.Events():
			if err := enc.Encode(event); err != nil {
				return nil
			}
			resp.Flush()
			if event.Type.Terminal() {
				return nil
			}
		}
	}
}
