package cart

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemStore keeps carts in process memory. Intended for tests and single
// register development setups.
type MemStore struct {
	mu    sync.RWMutex
	carts map[uuid.UUID]Cart
}

// NewMemStore constructs an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{carts: make(map[uuid.UUID]Cart)}
}

// Get returns the cart with the given id.
func (s *MemStore) Get(_ context.Context, id uuid.UUID) (Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[id]
	if !ok {
		return Cart{}, ErrNotFound
	}
	return clone(c), nil
}

// Put stores the cart, replacing any previous session.
func (s *MemStore) Put(_ context.Context, c Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[c.ID] = clone(c)
	return nil
}

// Delete drops the cart session.
func (s *MemStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, id)
	return nil
}

// clone copies the cart so callers cannot mutate stored state through
// shared slices or pointers.
func clone(c Cart) Cart {
	out := c
	if c.Lines != nil {
		out.Lines = make([]Line, len(c.Lines))
		copy(out.Lines, c.Lines)
	}
	if c.Customer != nil {
		cust := *c.Customer
		out.Customer = &cust
	}
	if c.Agent != nil {
		agent := *c.Agent
		out.Agent = &agent
	}
	if c.PaymentTypeID != nil {
		pid := *c.PaymentTypeID
		out.PaymentTypeID = &pid
	}
	if c.Tender != nil {
		tender := *c.Tender
		out.Tender = &tender
	}
	return out
}
