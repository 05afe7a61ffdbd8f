package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
	"github.com/rowanvale/ember/internal/auth"
)

// HandleWebSocket upgrades connections to WebSocket and runs them as Hub
// clients bound to the authenticated user.
func HandleWebSocket(hub *Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserID(r.Context())

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // Mobile clients connect from app webviews, not a fixed origin
		})
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}

		client := NewClient(hub, conn, userID)
		client.Run(r.Context())
	}
}
