package cart

import (
	"context"

	"github.com/google/uuid"
)

// Store persists live cart sessions. Implementations refresh the session
// TTL on every Put.
type Store interface {
	Get(ctx context.Context, id uuid.UUID) (Cart, error)
	Put(ctx context.Context, c Cart) error
	Delete(ctx context.Context, id uuid.UUID) error
}
