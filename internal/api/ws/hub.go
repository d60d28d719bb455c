package ws

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/rs/zerolog/log"

	"github.com/stewardhq/steward/internal/server/middleware"
	redisstore "github.com/stewardhq/steward/internal/store/redis"
)

// Hub manages WebSocket connections backed by Redis pub/sub.
type Hub struct {
	store *redisstore.Store
}

// NewHub creates a new WebSocket hub.
func NewHub(store *redisstore.Store) *Hub {
	return &Hub{store: store}
}

// ServeTasks handles WebSocket connections for live task pipeline events.
// Subscribes to the authenticated caller's channel "task:<callerID>" and
// forwards published events (task started/completed/failed, change
// approved/rejected) to the client.
func (h *Hub) ServeTasks(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.CallerIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing caller", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	channel := redisstore.TaskChannel(callerID)

	messages, cleanup, err := h.store.Subscribe(ctx, channel)
	if err != nil {
		log.Error().Err(err).Msg("websocket subscribe")
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case msg, msgOK := <-messages:
			if !msgOK {
				_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			if writeErr := conn.Write(ctx, websocket.MessageText, msg); writeErr != nil {
				log.Debug().Err(writeErr).Msg("websocket write")
				return
			}
		}
	}
}
