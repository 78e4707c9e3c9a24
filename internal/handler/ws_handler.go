package handler

import (
	"net/http"
	"strings"

	"github.com/eksamina/eksaminator-backend/internal/service"
	ws "github.com/eksamina/eksaminator-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams session snapshots to connected clients.
type WSHandler struct {
	sessionService *service.SessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/session/stream
// Upgrades to WebSocket and pushes a snapshot on every session change, plus
// one per second while a countdown runs. The client may send pings; any
// other inbound message is ignored.
func (h *WSHandler) SessionStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	snaps, cancel := h.sessionService.Subscribe()
	defer cancel()

	h.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("Client connected")

	// Push the current state immediately so the client does not have to
	// wait for the next transition.
	if snap, err := h.sessionService.Snapshot(); err == nil {
		if err := ws.WriteTyped(conn, ws.NewSnapshotResponse(snap)); err != nil {
			return
		}
	}

	// Reader goroutine: forwards pings and signals when the peer goes
	// away. All writes happen on the main loop, gorilla allows only one
	// concurrent writer.
	done := make(chan struct{})
	pings := make(chan struct{}, 1)
	go func() {
		defer close(done)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.log.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}

			switch msg.Action {
			case ws.ActionPing:
				select {
				case pings <- struct{}{}:
				default:
				}
			default:
				h.log.Debug().Str("action", string(msg.Action)).Msg("Ignoring unknown action")
			}
		}
	}()

	for {
		select {
		case <-done:
			h.log.Debug().Msg("Connection closed")
			return
		case <-pings:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}
		case snap := <-snaps:
			if err := ws.WriteTyped(conn, ws.NewSnapshotResponse(snap)); err != nil {
				return
			}
		}
	}
}
