package payments

import (
	"context"
	"testing"

	"github.com/dztechshop/dzshop/app/models"
)

func TestResolve_ClientReferenceAsPrimaryKey(t *testing.T) {
	store := newFakeStore()
	order := store.addOrder(&models.Order{ID: 42, ServiceID: 1, Status: models.OrderStatusPending, Total: 10})
	r := NewResolver(store)

	got, err := r.Resolve(context.Background(), ResolveRef{ClientReferenceID: "42"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != order.ID {
		t.Fatalf("expected order %d, got %+v", order.ID, got)
	}
}

func TestResolve_ClientReferenceFallsBackToOrderIDField(t *testing.T) {
	store := newFakeStore()
	order := store.addOrder(&models.Order{OrderID: strPtr("ord_123"), ServiceID: 1, Status: models.OrderStatusPending, Total: 10})
	r := NewResolver(store)

	// "ord_123" is not a valid primary key; the field lookup must hit.
	got, err := r.Resolve(context.Background(), ResolveRef{ClientReferenceID: "ord_123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != order.ID {
		t.Fatalf("expected order %d, got %+v", order.ID, got)
	}
}

func TestResolve_NumericReferenceMissFallsThrough(t *testing.T) {
	store := newFakeStore()
	// An order whose caller-supplied reference happens to be numeric but is
	// not its primary key.
	order := store.addOrder(&models.Order{ID: 9, OrderID: strPtr("777"), ServiceID: 1, Status: models.OrderStatusPending, Total: 10})
	r := NewResolver(store)

	got, err := r.Resolve(context.Background(), ResolveRef{ClientReferenceID: "777"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != order.ID {
		t.Fatalf("expected order %d via order_id field, got %+v", order.ID, got)
	}
}

func TestResolve_GeneratedReferenceSkipsPrimaryKeyLookup(t *testing.T) {
	store := newFakeStore()
	ref, err := GenerateOrderID()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	order := store.addOrder(&models.Order{OrderID: strPtr(ref), ServiceID: 1, Status: models.OrderStatusPending, Total: 10})
	r := NewResolver(store)

	got, err := r.Resolve(context.Background(), ResolveRef{ClientReferenceID: ref})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != order.ID {
		t.Fatalf("expected order %d, got %+v", order.ID, got)
	}
	if store.findByIDCalls != 0 {
		t.Fatalf("generated reference must not trigger a primary-key lookup, got %d calls", store.findByIDCalls)
	}
}

func TestResolve_ClientReferenceOutranksPaymentIntent(t *testing.T) {
	store := newFakeStore()
	orderA := store.addOrder(&models.Order{OrderID: strPtr("ord_a"), ServiceID: 1, Status: models.OrderStatusPending, Total: 10})
	store.addOrder(&models.Order{OrderID: strPtr("ord_b"), ServiceID: 1, Status: models.OrderStatusPending, Total: 10, StripePaymentIntentID: "pi_b"})
	r := NewResolver(store)

	got, err := r.Resolve(context.Background(), ResolveRef{ClientReferenceID: "ord_a", PaymentIntentID: "pi_b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != orderA.ID {
		t.Fatalf("client reference must outrank payment intent: expected %d, got %+v", orderA.ID, got)
	}
}

func TestResolve_ByPaymentIntent(t *testing.T) {
	store := newFakeStore()
	order := store.addOrder(&models.Order{ServiceID: 1, Status: models.OrderStatusPending, Total: 10, StripePaymentIntentID: "pi_xyz"})
	r := NewResolver(store)

	got, err := r.Resolve(context.Background(), ResolveRef{PaymentIntentID: "pi_xyz"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != order.ID {
		t.Fatalf("expected order %d, got %+v", order.ID, got)
	}
}

func TestResolve_NoMatch(t *testing.T) {
	store := newFakeStore()
	r := NewResolver(store)

	got, err := r.Resolve(context.Background(), ResolveRef{ClientReferenceID: "ord_missing", PaymentIntentID: "pi_missing"})
	if err != nil {
		t.Fatalf("a miss is not an error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil order, got %+v", got)
	}
}
