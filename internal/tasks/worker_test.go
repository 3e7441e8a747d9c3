package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/salespoint/pos-backend/internal/events"
	"github.com/salespoint/pos-backend/internal/resilience"
)

func sampleEvent() events.Event {
	return events.Event{
		ID:          uuid.New(),
		Topic:       events.TopicSaleCompleted,
		AggregateID: uuid.New(),
		Payload:     json.RawMessage(`{"total":"236.00"}`),
		OccurredAt:  time.Now(),
	}
}

type captureDeliverer struct {
	delivered []events.Event
	err       error
}

func (c *captureDeliverer) Deliver(_ context.Context, ev events.Event) error {
	c.delivered = append(c.delivered, ev)
	return c.err
}

func TestHandleReceiptDispatch(t *testing.T) {
	ev := sampleEvent()
	task, err := NewReceiptDispatchTask(ev)
	require.NoError(t, err)

	sink := &captureDeliverer{}
	h := &Handlers{Receipts: sink}
	require.NoError(t, h.HandleReceiptDispatch(context.Background(), task))
	require.Len(t, sink.delivered, 1)
	require.Equal(t, ev.ID, sink.delivered[0].ID)
}

func TestHandleSaleSyncPropagatesFailure(t *testing.T) {
	task, err := NewSaleSyncTask(sampleEvent())
	require.NoError(t, err)

	sink := &captureDeliverer{err: errors.New("sync endpoint down")}
	h := &Handlers{Sync: sink}
	require.Error(t, h.HandleSaleSync(context.Background(), task))
}

func TestMalformedPayloadSkipsRetry(t *testing.T) {
	h := &Handlers{Receipts: &captureDeliverer{}}
	task := asynq.NewTask(TypeReceiptDispatch, []byte("not json"))
	err := h.HandleReceiptDispatch(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHTTPDelivererPostsEvent(t *testing.T) {
	var got events.Event
	var idemKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idemKey = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	ev := sampleEvent()
	d := &HTTPDeliverer{
		Client:   resilience.HTTPClient{Client: srv.Client(), MaxAttempts: 1},
		Endpoint: srv.URL + "/receipts",
	}
	require.NoError(t, d.Deliver(context.Background(), ev))
	require.Equal(t, ev.ID, got.ID)
	require.Equal(t, ev.ID.String(), idemKey)
}

func TestHTTPDelivererRejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusConflict)
	}))
	defer srv.Close()

	d := &HTTPDeliverer{
		Client:   resilience.HTTPClient{Client: srv.Client(), MaxAttempts: 1},
		Endpoint: srv.URL,
	}
	require.Error(t, d.Deliver(context.Background(), sampleEvent()))
}
