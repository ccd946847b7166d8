// Package ws bridges the session event stream onto WebSocket connections.
package ws

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/parley-sim/parley/internal/hub"
	"github.com/parley-sim/parley/internal/service"
)

const (
	writeTimeout = 10 * time.Second
	pingInterval = 30 * time.Second
	readTimeout  = 60 * time.Second
)

// Server handles WebSocket observer connections.
type Server struct {
	service  *service.Service
	hub      *hub.Hub
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewServer creates a new WebSocket server.
func NewServer(svc *service.Service, h *hub.Hub, log zerolog.Logger) *Server {
	return &Server{
		service: svc,
		hub:     h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		log: log.With().Str("component", "ws").Logger(),
	}
}

// RegisterRoutes registers the WebSocket routes.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/v1/sessions/:session_id/ws", s.HandleWebSocket)
}

// HandleWebSocket upgrades the connection and forwards session events until
// the observer disconnects. Unlike the NDJSON endpoint the connection stays
// attached across exchanges.
func (s *Server) HandleWebSocket(c echo.Context) error {
	sessionID := c.Param("session_id")

	if _, _, err := s.service.GetSession(c.Request().Context(), sessionID); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}

	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return err
	}

	clientID := "ws_" + uuid.New().String()[:8]
	sub := s.hub.Subscribe(sessionID, clientID)

	closed := make(chan struct{})
	go s.readPump(conn, closed)
	go s.writePump(conn, sub, closed)

	return nil
}

// readPump drains inbound frames so close and pong handling work. Observers
// send nothing meaningful; the first read error means the peer went away.
func (s *Server) readPump(conn *websocket.Conn, closed chan struct{}) {
	defer close(closed)

	conn.SetReadLimit(1024)
	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug().Err(err).Msg("websocket read error")
			}
			return
		}
	}
}

// writePump forwards hub events to the connection and pings on an interval.
func (s *Server) writePump(conn *websocket.Conn, sub *hub.Subscription, closed chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.hub.Unsubscribe(sub.SessionID, sub.ClientID)
		conn.Close()
	}()

	for {
		select {
		case <-closed:
			return
		case event := <-sub.Events():
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(event); err != nil {
				s.log.Debug().Err(err).Msg("websocket write failed")
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
