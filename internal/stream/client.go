package stream

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/salespoint/pos-backend/internal/cart"
	"github.com/salespoint/pos-backend/internal/obs"
	"github.com/salespoint/pos-backend/internal/stepper"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait).
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// frame is an inbound message from a terminal. Press and release drive the
// hold-to-repeat quantity control for one cart line.
type frame struct {
	Type  string `json:"type"`
	Line  int    `json:"line"`
	Delta string `json:"delta,omitempty"`
}

const (
	frameTypePress   = "press"
	frameTypeRelease = "release"
)

// Client is a single connected terminal subscribed to one cart.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	cartID uuid.UUID
	send   chan []byte
	carts  *cart.Service
	log    zerolog.Logger

	mu        sync.Mutex
	repeaters map[int]*stepper.Repeater
}

// ReadPump consumes press/release frames until the terminal disconnects.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Debug().Err(err).Str("cart_id", c.cartID.String()).Msg("stream read error")
			}
			return
		}
		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			continue
		}
		c.handleFrame(f)
	}
}

func (c *Client) handleFrame(f frame) {
	switch f.Type {
	case frameTypePress:
		c.repeaterFor(f.Line, f.Delta).Press()
	case frameTypeRelease:
		c.mu.Lock()
		r := c.repeaters[f.Line]
		c.mu.Unlock()
		if r != nil {
			r.Release()
		}
	}
}

// repeaterFor returns the repeater driving the given line, rebuilding it
// when the step direction changed since the last press.
func (c *Client) repeaterFor(line int, rawDelta string) *stepper.Repeater {
	delta, err := decimal.NewFromString(rawDelta)
	if err != nil || delta.IsZero() {
		delta = decimal.NewFromInt(1)
	}
	step := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if _, err := c.carts.StepQty(ctx, c.cartID, line, delta); err != nil {
			c.log.Debug().Err(err).Int("line", line).Msg("step rejected")
			return
		}
		direction := "up"
		if delta.Sign() < 0 {
			direction = "down"
		}
		obs.IncStepperStep(direction)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.repeaters == nil {
		c.repeaters = make(map[int]*stepper.Repeater)
	}
	if old, ok := c.repeaters[line]; ok {
		old.Stop()
	}
	r := stepper.NewRepeater(step)
	c.repeaters[line] = r
	return r
}

// teardown stops every live repeater; called by the hub on unregister so a
// dropped connection can never leave a quantity spinning.
func (c *Client) teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.repeaters {
		r.Stop()
	}
	c.repeaters = nil
}

// WritePump forwards hub broadcasts to the terminal and keeps the
// connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(message)

			// flush queued messages into the same websocket frame
			n := len(c.send)
			for i := 0; i < n; i++ {
				_, _ = w.Write([]byte{'\n'})
				_, _ = w.Write(<-c.send)
			}
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
