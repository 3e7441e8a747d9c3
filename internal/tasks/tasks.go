package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/salespoint/pos-backend/internal/events"
)

// Task type names routed through asynq.
const (
	TypeReceiptDispatch = "receipt:dispatch"
	TypeSaleSync        = "sale:sync"
)

// DefaultQueue is the asynq queue sale follow-up work lands on.
const DefaultQueue = "sales"

// NewReceiptDispatchTask wraps a completed-sale event for receipt delivery.
func NewReceiptDispatchTask(ev events.Event) (*asynq.Task, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("tasks: encode event: %w", err)
	}
	return asynq.NewTask(TypeReceiptDispatch, payload), nil
}

// NewSaleSyncTask wraps a completed-sale event for back-office sync.
func NewSaleSyncTask(ev events.Event) (*asynq.Task, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("tasks: encode event: %w", err)
	}
	return asynq.NewTask(TypeSaleSync, payload), nil
}

// Scheduler enqueues follow-up work for emitted domain events. It plugs into
// the event bus as its Scheduler.
type Scheduler struct {
	Client *asynq.Client
	Queue  string
}

// Schedule fans a completed sale out to the receipt and sync queues. Other
// topics need no background work and are ignored.
func (s *Scheduler) Schedule(ctx context.Context, ev events.Event) error {
	if s == nil || s.Client == nil {
		return errors.New("tasks: client not configured")
	}
	if ev.Topic != events.TopicSaleCompleted {
		return nil
	}
	queue := s.Queue
	if queue == "" {
		queue = DefaultQueue
	}
	receipt, err := NewReceiptDispatchTask(ev)
	if err != nil {
		return err
	}
	sync, err := NewSaleSyncTask(ev)
	if err != nil {
		return err
	}
	var joined error
	if _, err := s.Client.EnqueueContext(ctx, receipt, asynq.Queue(queue), asynq.TaskID(TypeReceiptDispatch+":"+ev.ID.String())); err != nil {
		joined = errors.Join(joined, fmt.Errorf("tasks: enqueue receipt: %w", err))
	}
	if _, err := s.Client.EnqueueContext(ctx, sync, asynq.Queue(queue), asynq.TaskID(TypeSaleSync+":"+ev.ID.String())); err != nil {
		joined = errors.Join(joined, fmt.Errorf("tasks: enqueue sync: %w", err))
	}
	return joined
}
