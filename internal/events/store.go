package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const insertEventSQL = `
INSERT INTO sale_events (id, topic, aggregate_id, payload, occurred_at)
VALUES ($1, $2, $3, $4, now())
RETURNING id, topic, aggregate_id, payload, occurred_at`

// PGStore persists domain events in the sale_events table.
type PGStore struct {
	Pool *pgxpool.Pool
}

// InsertEvent appends one event row and returns it with the database
// timestamp filled in.
func (s *PGStore) InsertEvent(ctx context.Context, topic string, aggregateID uuid.UUID, payload []byte) (Event, error) {
	if s == nil || s.Pool == nil {
		return Event{}, errors.New("events: pool not configured")
	}
	id := uuid.New()
	row := s.Pool.QueryRow(ctx, insertEventSQL, id, topic, aggregateID, payload)
	var ev Event
	if err := row.Scan(&ev.ID, &ev.Topic, &ev.AggregateID, &ev.Payload, &ev.OccurredAt); err != nil {
		return Event{}, err
	}
	return ev, nil
}
