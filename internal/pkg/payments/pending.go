package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/dztechshop/dzshop/app/models"
)

const (
	pendingCreateMaxAttempts = 3
	pendingCreateBackoffBase = 100 * time.Millisecond
)

// PendingOrder carries the fields needed to book a provisional order at
// payment-initiation time.
type PendingOrder struct {
	OrderID         string
	ServiceID       uint
	ProviderID      uint
	Price           float64
	PaymentIntentID string
}

// PendingOrderCreator inserts provisional orders with conflict-safe retry.
// Concurrent requests racing on the same order reference are expected; the
// unique index on order_id is the only concurrency control.
type PendingOrderCreator struct {
	store Store
	sleep func(time.Duration)
}

// NewPendingOrderCreator creates a creator using real wall-clock backoff.
func NewPendingOrderCreator(store Store) *PendingOrderCreator {
	return &PendingOrderCreator{store: store, sleep: time.Sleep}
}

// CreatePending books a pending order, retrying transient write conflicts
// with doubling backoff (100ms, 200ms, 400ms). An order that already exists
// under the same reference, or an insert lost to a concurrent identical
// insert, counts as success. Any other error propagates; callers treat
// bookkeeping failure as non-fatal to the payment flow since the webhook
// path self-heals via fallback creation.
func (c *PendingOrderCreator) CreatePending(ctx context.Context, in PendingOrder) error {
	if in.OrderID == "" {
		return errors.New("payments: pending order requires an order reference")
	}

	for attempt := 0; attempt < pendingCreateMaxAttempts; attempt++ {
		existing, err := c.store.FindOrderByOrderID(ctx, in.OrderID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if existing != nil {
			log.Infof("[Payments] order %s already exists, skipping pending creation", in.OrderID)
			return nil
		}

		orderID := in.OrderID
		order := &models.Order{
			OrderID:               &orderID,
			ServiceID:             in.ServiceID,
			Status:                models.OrderStatusPending,
			Total:                 in.Price,
			Quantity:              1,
			StripePaymentIntentID: in.PaymentIntentID,
		}
		if in.ProviderID != 0 {
			providerID := in.ProviderID
			order.ProviderID = &providerID
		}

		err = c.store.CreateOrder(ctx, order)
		if err == nil {
			log.Infof("[Payments] created pending order %s", in.OrderID)
			return nil
		}
		if errors.Is(err, ErrDuplicateKey) {
			// Another request won the insert race. The duplicate is harmless.
			log.Infof("[Payments] order %s was created by a concurrent request, continuing", in.OrderID)
			return nil
		}
		if errors.Is(err, ErrWriteConflict) {
			log.Warnf("[Payments] write conflict on attempt %d/%d for order %s",
				attempt+1, pendingCreateMaxAttempts, in.OrderID)
			if attempt < pendingCreateMaxAttempts-1 {
				c.sleep(pendingCreateBackoffBase << attempt)
				continue
			}
			return fmt.Errorf("pending order %s not created after %d attempts: %w",
				in.OrderID, pendingCreateMaxAttempts, err)
		}
		return err
	}
	return nil
}
