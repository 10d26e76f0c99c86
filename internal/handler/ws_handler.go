package handler

import (
	"net/http"
	"strings"

	"github.com/aulaplay/aulaplay-backend/internal/middleware"
	"github.com/aulaplay/aulaplay-backend/internal/service"
	ws "github.com/aulaplay/aulaplay-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
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

// WSHandler handles the WebSocket session stream.
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
// WS /ws/v1/student/activities/:activity_id/stream
// Upgrades to WebSocket for the live session: countdown ticks and the final
// result are pushed by the server, actions come in from the client.
func (h *WSHandler) SessionStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	activityID, err := uuid.Parse(c.Param("activity_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid activity ID"})
		return
	}

	studentID := claims.UserID

	// SECURITY: Only the owner of a running session may attach to its stream.
	events, unsubscribe, err := h.sessionService.Subscribe(studentID, activityID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no running session for this activity"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		unsubscribe()
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()
	defer unsubscribe()

	writer := ws.NewWriter(conn)

	wsLog := h.log.With().
		Int("student_id", studentID).
		Str("activity_id", activityID.String()).
		Logger()

	wsLog.Info().Msg("Student connected")

	// Initial snapshot so a reconnecting client does not wait for the next tick.
	if state, err := h.sessionService.State(studentID, activityID); err == nil {
		writer.WriteTyped(ws.StateResponse{Event: ws.EventState, State: state})
	}

	// Event pump: server-pushed ticks and completion, independent of the read loop.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			switch ev.Type {
			case service.SessionEventTick:
				if err := writer.WriteTyped(ws.TickResponse{Event: ws.EventTick, RemainingSeconds: ev.RemainingSeconds}); err != nil {
					return
				}
			case service.SessionEventCompleted:
				writer.WriteTyped(ws.CompletedResponse{Event: ws.EventCompleted, Result: ev.Result})
				return
			}
		}
	}()

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		switch msg.Action {
		case ws.ActionAnswer:
			h.dispatch(writer, studentID, activityID, func() (*service.SessionState, error) {
				return h.sessionService.RecordAnswer(studentID, activityID, msg.Answer)
			})
		case ws.ActionAdvance:
			h.dispatch(writer, studentID, activityID, func() (*service.SessionState, error) {
				return h.sessionService.Advance(studentID, activityID)
			})
		case ws.ActionRetreat:
			h.dispatch(writer, studentID, activityID, func() (*service.SessionState, error) {
				return h.sessionService.Retreat(studentID, activityID)
			})
		case ws.ActionSubmit:
			h.dispatch(writer, studentID, activityID, func() (*service.SessionState, error) {
				return h.sessionService.Submit(studentID, activityID)
			})
		case ws.ActionPing:
			writer.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			writer.WriteError("unknown action: " + string(msg.Action))
		}
	}

	// Closing the subscription ends the pump's event range.
	unsubscribe()
	<-done
}

// dispatch runs a session action and echoes the resulting snapshot or an error.
func (h *WSHandler) dispatch(writer *ws.Writer, studentID int, activityID uuid.UUID, fn func() (*service.SessionState, error)) {
	state, err := fn()
	if err != nil {
		writer.WriteError(err.Error())
		return
	}
	writer.WriteTyped(ws.StateResponse{Event: ws.EventState, State: state})
}
