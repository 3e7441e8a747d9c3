package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/salespoint/pos-backend/internal/events"
	"github.com/salespoint/pos-backend/internal/resilience"
)

// Deliverer pushes a completed-sale event to an external consumer.
type Deliverer interface {
	Deliver(ctx context.Context, ev events.Event) error
}

// HTTPDeliverer posts the event payload to a fixed endpoint through the
// resilience wrapper.
type HTTPDeliverer struct {
	Client   resilience.HTTPClient
	Endpoint string
}

// Deliver posts the raw event payload. Non-2xx responses are errors so asynq
// retries with its own backoff.
func (d *HTTPDeliverer) Deliver(ctx context.Context, ev events.Event) error {
	if d == nil || strings.TrimSpace(d.Endpoint) == "" {
		return fmt.Errorf("tasks: delivery endpoint not configured")
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, d.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", ev.ID.String())
	resp, err := d.Client.Do(ctx, req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("tasks: delivery returned %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}
	return nil
}

// Handlers processes sale follow-up tasks on the worker.
type Handlers struct {
	Receipts Deliverer
	Sync     Deliverer
	Log      zerolog.Logger
}

// Register attaches the handlers to an asynq mux.
func (h *Handlers) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeReceiptDispatch, h.HandleReceiptDispatch)
	mux.HandleFunc(TypeSaleSync, h.HandleSaleSync)
}

// HandleReceiptDispatch sends the customer receipt for a completed sale.
func (h *Handlers) HandleReceiptDispatch(ctx context.Context, t *asynq.Task) error {
	ev, err := decodeEvent(t)
	if err != nil {
		return err
	}
	if h.Receipts == nil {
		h.Log.Debug().Str("sale_id", ev.AggregateID.String()).Msg("receipt delivery disabled")
		return nil
	}
	if err := h.Receipts.Deliver(ctx, ev); err != nil {
		h.Log.Warn().Err(err).Str("sale_id", ev.AggregateID.String()).Msg("receipt dispatch failed")
		return err
	}
	h.Log.Info().Str("sale_id", ev.AggregateID.String()).Msg("receipt dispatched")
	return nil
}

// HandleSaleSync pushes the completed sale to the back-office sync endpoint.
func (h *Handlers) HandleSaleSync(ctx context.Context, t *asynq.Task) error {
	ev, err := decodeEvent(t)
	if err != nil {
		return err
	}
	if h.Sync == nil {
		h.Log.Debug().Str("sale_id", ev.AggregateID.String()).Msg("sale sync disabled")
		return nil
	}
	if err := h.Sync.Deliver(ctx, ev); err != nil {
		h.Log.Warn().Err(err).Str("sale_id", ev.AggregateID.String()).Msg("sale sync failed")
		return err
	}
	return nil
}

func decodeEvent(t *asynq.Task) (events.Event, error) {
	var ev events.Event
	if err := json.Unmarshal(t.Payload(), &ev); err != nil {
		// malformed payloads will never succeed, skip retries
		return events.Event{}, fmt.Errorf("tasks: decode event: %w: %w", err, asynq.SkipRetry)
	}
	return ev, nil
}
