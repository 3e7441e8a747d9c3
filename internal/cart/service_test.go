package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type capturePublisher struct {
	views []View
}

func (p *capturePublisher) PublishCart(_ uuid.UUID, view View) {
	p.views = append(p.views, view)
}

func newTestService(pub Publisher) *Service {
	return &Service{Store: NewMemStore(), Publisher: pub}
}

func TestServiceCreateValidatesProfile(t *testing.T) {
	svc := newTestService(nil)

	if _, err := svc.Create(context.Background(), Profile("installment")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	view, err := svc.Create(context.Background(), ProfileCredit)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if view.Profile != ProfileCredit {
		t.Fatalf("profile = %q, want credit", view.Profile)
	}
	if view.Totals.Total != "0.00" {
		t.Fatalf("total = %q, want 0.00", view.Totals.Total)
	}
}

func TestServiceMutationsPublish(t *testing.T) {
	pub := &capturePublisher{}
	svc := newTestService(pub)
	ctx := context.Background()

	created, err := svc.Create(ctx, ProfileCash)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.AddItem(ctx, created.ID, testProduct(), dec(t, "2"), dec(t, "100"), dec(t, "18")); err != nil {
		t.Fatalf("add item: %v", err)
	}

	if len(pub.views) != 2 {
		t.Fatalf("expected 2 published views, got %d", len(pub.views))
	}
	last := pub.views[len(pub.views)-1]
	if last.Totals.Total != "236.00" {
		t.Fatalf("published total = %q, want 236.00", last.Totals.Total)
	}
}

func TestServiceMutateUnknownCart(t *testing.T) {
	svc := newTestService(nil)

	_, err := svc.UpdateQty(context.Background(), uuid.New(), 0, dec(t, "3"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceFailedMutationNotPersisted(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, ProfileCash)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.AddItem(ctx, created.ID, testProduct(), dec(t, "1"), dec(t, "100"), decimal.Zero); err != nil {
		t.Fatalf("add item: %v", err)
	}

	if _, err := svc.UpdateDiscount(ctx, created.ID, 0, dec(t, "10"), dec(t, "99")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	view, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Lines[0].DiscountAmt != "0.00" {
		t.Fatalf("rejected discount leaked into store: %q", view.Lines[0].DiscountAmt)
	}
}

func TestServiceOpenTenderSnapshotsTotal(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, ProfileCash)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.AddItem(ctx, created.ID, testProduct(), dec(t, "2"), dec(t, "100"), dec(t, "15")); err != nil {
		t.Fatalf("add item: %v", err)
	}

	view, err := svc.OpenTender(ctx, created.ID)
	if err != nil {
		t.Fatalf("open tender: %v", err)
	}
	if view.TenderTotal != "230.00" {
		t.Fatalf("tender total = %q, want 230.00", view.TenderTotal)
	}

	// A later mutation must not move the snapshot.
	if _, err := svc.UpdateQty(ctx, created.ID, 0, dec(t, "3")); err != nil {
		t.Fatalf("update qty: %v", err)
	}
	view, err = svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.TenderTotal != "230.00" {
		t.Fatalf("tender snapshot moved to %q", view.TenderTotal)
	}
}

func TestServiceDiscard(t *testing.T) {
	svc := newTestService(nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, ProfileCash)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Discard(ctx, created.ID); err != nil {
		t.Fatalf("discard: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after discard, got %v", err)
	}
}
