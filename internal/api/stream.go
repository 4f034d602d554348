package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/p-n-ai/pai-classmatch/internal/recommend"
)

const streamTimeout = 30 * time.Second

// Stream message types.
const (
	MessageRanking = "ranking"
	MessageError   = "error"
)

type streamMessage struct {
	Type    string             `json:"type"`
	Ranking *recommend.Ranking `json:"ranking,omitempty"`
	Error   string             `json:"error,omitempty"`
	Status  int                `json:"status,omitempty"`
}

// handleAlternativesStream accepts one alternatives request over a WebSocket,
// answers with a single ranking or error message and closes the connection.
func (s *Server) handleAlternativesStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(maxBodyBytes)

	ctx, cancel := context.WithTimeout(r.Context(), streamTimeout)
	defer cancel()

	var req alternativesRequest
	if err := wsjson.Read(ctx, conn, &req); err != nil {
		if websocket.CloseStatus(err) != -1 {
			return
		}
		slog.Warn("reading stream request", "error", err)
		conn.Close(websocket.StatusUnsupportedData, "invalid request")
		return
	}

	classID := r.PathValue("classID")
	ranking, err := s.rank(ctx, classID, req)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			slog.Error("stream ranking failed", "class_id", classID, "error", err)
		}
		if werr := wsjson.Write(ctx, conn, streamMessage{Type: MessageError, Error: err.Error(), Status: status}); werr != nil {
			slog.Warn("writing stream error", "error", werr)
			return
		}
		conn.Close(websocket.StatusNormalClosure, "")
		return
	}

	if err := wsjson.Write(ctx, conn, streamMessage{Type: MessageRanking, Ranking: &ranking}); err != nil {
		slog.Warn("writing stream ranking", "class_id", classID, "error", err)
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}
