package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/salespoint/pos-backend/internal/payment"
)

// ErrNotFound indicates the requested directory entry does not exist.
var ErrNotFound = errors.New("directory: not found")

// ListParams filters and pages a directory listing. Query matches code and
// name case-insensitively.
type ListParams struct {
	Query   string
	Page    int
	PerPage int
}

// Store is the persistence boundary for register lookups.
type Store interface {
	ListProducts(ctx context.Context, p ListParams) ([]Product, int, error)
	GetProduct(ctx context.Context, id uuid.UUID) (Product, error)
	ListCustomers(ctx context.Context, p ListParams) ([]Customer, int, error)
	ListAgents(ctx context.Context, p ListParams) ([]SalesAgent, int, error)
	ListPaymentTypes(ctx context.Context) ([]payment.Method, error)
}
