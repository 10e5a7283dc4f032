package session

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/inamate/whiteboard/backend-go/internal/auth"
	"github.com/inamate/whiteboard/backend-go/internal/board"
)

// TokenValidator checks a bearer token.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Identity, error)
}

// ServeWS upgrades /ws/board/{boardId}?token=... to a board session.
func (h *Hub) ServeWS(tokens TokenValidator, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		boardID := mux.Vars(r)["boardId"]

		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		identity, err := tokens.ValidateToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		if _, err := h.boards.Open(r.Context(), boardID); err != nil {
			status := http.StatusInternalServerError
			switch {
			case errors.Is(err, board.ErrNotFound):
				status = http.StatusNotFound
			case errors.Is(err, board.ErrInvalidID):
				status = http.StatusBadRequest
			}
			http.Error(w, "board unavailable", status)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			slog.Error("websocket accept", "error", err)
			return
		}

		clientID := uuid.New().String()
		client := NewClient(h, conn, identity.SessionID, identity.DisplayName, boardID, clientID)

		h.Register(client)

		ctx := r.Context()
		go client.WritePump(ctx)
		client.ReadPump(ctx)
	}
}
