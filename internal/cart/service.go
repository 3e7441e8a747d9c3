package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Publisher receives the recomputed view after every cart mutation, before
// the mutating call returns. The live stream uses this to push totals to
// connected terminals.
type Publisher interface {
	PublishCart(id uuid.UUID, view View)
}

// Service serializes access to cart sessions and recomputes totals on every
// mutation before handing control back to the caller.
type Service struct {
	Store     Store
	Publisher Publisher
	Now       func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create opens a new cart session for the given settlement profile.
func (s *Service) Create(ctx context.Context, profile Profile) (View, error) {
	if s == nil || s.Store == nil {
		return View{}, errors.New("cart service not configured")
	}
	if !profile.Valid() {
		return View{}, fmt.Errorf("unknown sales profile %q: %w", profile, ErrInvalidInput)
	}
	c := New(profile, s.now())
	if err := s.Store.Put(ctx, c); err != nil {
		return View{}, err
	}
	return s.publish(c), nil
}

// Get returns the current view of a cart.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (View, error) {
	if s == nil || s.Store == nil {
		return View{}, errors.New("cart service not configured")
	}
	c, err := s.Store.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	return NewView(c), nil
}

// Load returns the raw cart for collaborators that need the full model.
func (s *Service) Load(ctx context.Context, id uuid.UUID) (Cart, error) {
	if s == nil || s.Store == nil {
		return Cart{}, errors.New("cart service not configured")
	}
	return s.Store.Get(ctx, id)
}

// Save persists the cart and pushes the recomputed view to subscribers.
func (s *Service) Save(ctx context.Context, c Cart) (View, error) {
	if s == nil || s.Store == nil {
		return View{}, errors.New("cart service not configured")
	}
	c.UpdatedAt = s.now()
	if err := s.Store.Put(ctx, c); err != nil {
		return View{}, err
	}
	return s.publish(c), nil
}

// Discard drops the cart session entirely.
func (s *Service) Discard(ctx context.Context, id uuid.UUID) error {
	if s == nil || s.Store == nil {
		return errors.New("cart service not configured")
	}
	return s.Store.Delete(ctx, id)
}

// mutate loads the cart, applies fn and persists the result. The recomputed
// view is published before mutate returns, so totals are never stale when
// the caller observes them.
func (s *Service) mutate(ctx context.Context, id uuid.UUID, fn func(*Cart) error) (View, error) {
	if s == nil || s.Store == nil {
		return View{}, errors.New("cart service not configured")
	}
	c, err := s.Store.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	if err := fn(&c); err != nil {
		return View{}, err
	}
	return s.Save(ctx, c)
}

// AddItem appends a product line with the add-time tax snapshot.
func (s *Service) AddItem(ctx context.Context, id uuid.UUID, product ProductRef, qty, unitPrice, taxPct decimal.Decimal) (View, error) {
	return s.mutate(ctx, id, func(c *Cart) error {
		c.AddLine(product, qty, unitPrice, taxPct)
		return nil
	})
}

// UpdateQty sets a line quantity, flooring at the minimum.
func (s *Service) UpdateQty(ctx context.Context, id uuid.UUID, line int, qty decimal.Decimal) (View, error) {
	return s.mutate(ctx, id, func(c *Cart) error {
		return c.UpdateQty(line, qty)
	})
}

// StepQty nudges a line quantity by delta. The hold-to-repeat stream drives
// this once per step.
func (s *Service) StepQty(ctx context.Context, id uuid.UUID, line int, delta decimal.Decimal) (View, error) {
	return s.mutate(ctx, id, func(c *Cart) error {
		return c.StepQty(line, delta)
	})
}

// UpdatePrice overrides a line unit price.
func (s *Service) UpdatePrice(ctx context.Context, id uuid.UUID, line int, unitPrice decimal.Decimal) (View, error) {
	return s.mutate(ctx, id, func(c *Cart) error {
		return c.UpdatePrice(line, unitPrice)
	})
}

// UpdateDiscount stores a reconciled percentage/amount discount pair.
func (s *Service) UpdateDiscount(ctx context.Context, id uuid.UUID, line int, pct, amount decimal.Decimal) (View, error) {
	return s.mutate(ctx, id, func(c *Cart) error {
		return c.UpdateDiscount(line, pct, amount)
	})
}

// SetVAT removes or restores the tax snapshot on a line.
func (s *Service) SetVAT(ctx context.Context, id uuid.UUID, line int, remove bool) (View, error) {
	return s.mutate(ctx, id, func(c *Cart) error {
		if remove {
			return c.RemoveVAT(line)
		}
		return c.AddVAT(line)
	})
}

// RemoveItem deletes a line.
func (s *Service) RemoveItem(ctx context.Context, id uuid.UUID, line int) (View, error) {
	return s.mutate(ctx, id, func(c *Cart) error {
		return c.RemoveLine(line)
	})
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, id uuid.UUID) (View, error) {
	return s.mutate(ctx, id, func(c *Cart) error {
		c.Clear()
		return nil
	})
}

// SetCustomer attaches or detaches the customer reference.
func (s *Service) SetCustomer(ctx context.Context, id uuid.UUID, ref *CustomerRef) (View, error) {
	return s.mutate(ctx, id, func(c *Cart) error {
		c.AttachCustomer(ref)
		return nil
	})
}

// SetAgent attaches or detaches the sales agent reference.
func (s *Service) SetAgent(ctx context.Context, id uuid.UUID, ref *AgentRef) (View, error) {
	return s.mutate(ctx, id, func(c *Cart) error {
		c.AttachAgent(ref)
		return nil
	})
}

// OpenTender snapshots the current grand total for a tender session. The
// snapshot stays fixed while the session is open; re-opening refreshes it.
func (s *Service) OpenTender(ctx context.Context, id uuid.UUID) (View, error) {
	return s.mutate(ctx, id, func(c *Cart) error {
		c.Tender = &TenderState{Total: c.Totals().Total, OpenedAt: s.now()}
		return nil
	})
}

func (s *Service) publish(c Cart) View {
	view := NewView(c)
	if s.Publisher != nil {
		s.Publisher.PublishCart(c.ID, view)
	}
	return view
}
