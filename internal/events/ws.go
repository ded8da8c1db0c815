package events

import (
	"net/http"
	"time"

	"github.com/antonminaichev/darkstore-dispatch/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// WSHandler upgrades tracking connections and streams order events over
// websocket. Clients that cannot hold a socket fall back to polling GET.
type WSHandler struct {
	broker   *Broker
	upgrader websocket.Upgrader
}

func NewWSHandler(b *Broker) *WSHandler {
	return &WSHandler{
		broker: b,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// StreamOrder serves /orders/{id}/events: one socket per tracked order.
func (h *WSHandler) StreamOrder(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, chi.URLParam(r, "id"))
}

// StreamAll serves the admin dashboard feed across all orders.
func (h *WSHandler) StreamAll(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, "")
}

func (h *WSHandler) stream(w http.ResponseWriter, r *http.Request, orderID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Sugar().Infow("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ch, unsubscribe := h.broker.Subscribe(orderID)
	defer unsubscribe()

	// drain client frames so close messages are noticed
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-done:
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(e); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
