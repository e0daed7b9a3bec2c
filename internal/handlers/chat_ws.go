package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rantsmith/backend/internal/chat"
	"github.com/rantsmith/backend/internal/logging"
	"github.com/rantsmith/backend/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Bearer auth already gates the endpoint.
	CheckOrigin: func(*http.Request) bool { return true },
}

const (
	wsWriteTimeout = 10 * time.Second
	wsMaxFrameSize = 16 << 10
)

type wsInbound struct {
	Message     string `json:"message"`
	Personality string `json:"personality"`
}

type wsOutbound struct {
	Response    string `json:"response"`
	Personality string `json:"personality"`
	ModelUsed   string `json:"model_used,omitempty"`
}

// WebSocket handles GET /api/ai/chat/ws: a persistent companion conversation.
// The server greets on connect and re-greets whenever the client switches
// personality mid-connection.
func (h ChatHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if _, ok := requireUser(w, r, h.Tokens); !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsMaxFrameSize)

	personality := models.PersonalitySupportive
	if requested := r.URL.Query().Get("personality"); models.ValidPersonality(requested) {
		personality = requested
	}

	if err := h.writeFrame(conn, wsOutbound{Response: chat.Greeting(personality), Personality: personality}); err != nil {
		logger.Warn("websocket greeting failed", "error", err)
		return
	}

	for {
		var inbound wsInbound
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("websocket read failed", "error", err)
			}
			return
		}

		if inbound.Personality != "" && inbound.Personality != personality {
			if !models.ValidPersonality(inbound.Personality) {
				if err := h.writeFrame(conn, wsOutbound{Response: "I don't know that personality.", Personality: personality}); err != nil {
					return
				}
				continue
			}
			personality = inbound.Personality
			if err := h.writeFrame(conn, wsOutbound{Response: chat.Greeting(personality), Personality: personality}); err != nil {
				return
			}
			if strings.TrimSpace(inbound.Message) == "" {
				continue
			}
		}

		if strings.TrimSpace(inbound.Message) == "" {
			continue
		}

		reply := h.Responder.Respond(ctx, inbound.Message, personality)
		if err := h.writeFrame(conn, wsOutbound{
			Response:    reply.Text,
			Personality: personality,
			ModelUsed:   reply.ModelUsed,
		}); err != nil {
			logger.Warn("websocket write failed", "error", err)
			return
		}
	}
}

func (h ChatHandler) writeFrame(conn *websocket.Conn, frame wsOutbound) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(frame)
}
