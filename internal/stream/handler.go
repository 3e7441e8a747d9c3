package stream

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/salespoint/pos-backend/internal/cart"
	"github.com/salespoint/pos-backend/internal/common"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// terminals live on the store LAN behind the gateway
		return true
	},
}

// Handler upgrades terminals onto the live cart channel.
type Handler struct {
	Hub   *Hub
	Carts *cart.Service
	Log   zerolog.Logger
}

// Serve subscribes the terminal to its cart. The current view is pushed
// immediately so the terminal never renders from a stale snapshot.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	cartID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid cart id", nil)
		return
	}
	view, err := h.Carts.Get(r.Context(), cartID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "cart not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart lookup failed", nil)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Debug().Err(err).Msg("stream upgrade failed")
		return
	}

	client := &Client{
		hub:    h.Hub,
		conn:   conn,
		cartID: cartID,
		send:   make(chan []byte, 256),
		carts:  h.Carts,
		log:    h.Log,
	}
	client.hub.register <- client

	if payload, err := json.Marshal(view); err == nil {
		if message, err := json.Marshal(Event{Type: EventTypeCart, Payload: payload}); err == nil {
			client.send <- message
		}
	}

	go client.WritePump()
	go client.ReadPump()
}
