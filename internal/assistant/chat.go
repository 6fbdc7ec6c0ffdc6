package assistant

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatRequest is the incoming WebSocket message format.
type chatRequest struct {
	Type        string `json:"type"` // "ask"
	Question    string `json:"question"`
	TeamID      *int64 `json:"team_id"`
	UserContext string `json:"user_context"`
}

// chatResponse is the outgoing WebSocket message format. A response embeds
// the answer; an error carries only content.
type chatResponse struct {
	Type string `json:"type"` // "response" or "error"
	*Answer
	Content string `json:"content,omitempty"`
}

func (a *Assistant) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Warn("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	// The server's write timeout would otherwise close the socket mid-chat.
	if err := conn.NetConn().SetDeadline(time.Time{}); err != nil {
		a.logger.Warn("websocket deadline", zap.Error(err))
		return
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				a.logger.Warn("websocket read", zap.Error(err))
			}
			return
		}

		var req chatRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			a.send(conn, chatResponse{Type: "error", Content: "invalid message format"})
			continue
		}
		if req.Type != "ask" {
			a.send(conn, chatResponse{Type: "error", Content: "unknown message type: " + req.Type})
			continue
		}

		ans, err := a.Ask(r.Context(), AskRequest{
			Question:    req.Question,
			TeamID:      req.TeamID,
			UserContext: req.UserContext,
		})
		if err != nil {
			a.send(conn, chatResponse{Type: "error", Content: err.Error()})
			continue
		}
		a.send(conn, chatResponse{Type: "response", Answer: ans})
	}
}

func (a *Assistant) send(conn *websocket.Conn, resp chatResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		a.logger.Warn("websocket write", zap.Error(err))
	}
}
