// Package ws streams moderation events to admin clients over WebSocket,
// backed by Redis pub/sub.
package ws

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	redisstore "github.com/gosuda/warden/internal/store/redis"
)

// Hub manages WebSocket connections backed by Redis pub/sub.
type Hub struct {
	events *redisstore.Events
}

// NewHub creates a new WebSocket hub.
func NewHub(events *redisstore.Events) *Hub {
	return &Hub{events: events}
}

// ServeFirehose streams every moderation event to the client. Subscribes
// to the Redis firehose channel.
func (h *Hub) ServeFirehose(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, redisstore.FirehoseChannel)
}

// ServeAccount streams one account's moderation events to the client.
// Subscribes to the per-account Redis channel.
func (h *Hub) ServeAccount(w http.ResponseWriter, r *http.Request) {
	accountIDStr := chi.URLParam(r, "accountID")
	accountID, err := uuid.Parse(accountIDStr)
	if err != nil {
		http.Error(w, "invalid account id", http.StatusBadRequest)
		return
	}

	h.serve(w, r, redisstore.AccountChannel(accountID))
}

func (h *Hub) serve(w http.ResponseWriter, r *http.Request, channel string) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()

	messages, cleanup, err := h.events.Subscribe(ctx, channel)
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
