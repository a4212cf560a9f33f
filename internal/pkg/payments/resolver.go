package payments

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/dztechshop/dzshop/app/models"
)

// ResolveRef holds the identifying fields an incoming event may carry.
type ResolveRef struct {
	ClientReferenceID string
	PaymentIntentID   string
}

// Resolver determines which existing order an event refers to. Strategies
// run in strict priority order; the first hit wins:
//
//  1. client reference as primary key, then as order_id field
//  2. payment-intent identifier exact match
//
// The client reference outranks the payment intent because it is fixed at
// order-creation time and is the most specific signal when present.
type Resolver struct {
	store Store
}

// NewResolver creates a resolver over the given store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the matching order, or (nil, nil) when no strategy
// matched. A miss is an expected branch, not an error; the caller decides
// between fallback creation and dropping the event.
func (r *Resolver) Resolve(ctx context.Context, ref ResolveRef) (*models.Order, error) {
	if clientRef := strings.TrimSpace(ref.ClientReferenceID); clientRef != "" {
		// References minted by GenerateOrderID are never primary keys, so
		// they go straight to the order_id lookup.
		if !IsGeneratedOrderID(clientRef) {
			if id, err := strconv.ParseUint(clientRef, 10, 64); err == nil {
				order, err := r.store.FindOrderByID(ctx, uint(id))
				if err == nil {
					return order, nil
				}
				if !errors.Is(err, ErrNotFound) {
					return nil, err
				}
			}
		}
		// Not a valid primary key, or not found under it: the reference may
		// still match the caller-supplied order_id field.
		order, err := r.store.FindOrderByOrderID(ctx, clientRef)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	if paymentIntentID := strings.TrimSpace(ref.PaymentIntentID); paymentIntentID != "" {
		order, err := r.store.FindOrderByPaymentIntentID(ctx, paymentIntentID)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	return nil, nil
}
