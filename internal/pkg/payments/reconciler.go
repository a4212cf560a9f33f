package payments

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/dztechshop/dzshop/app/models"
)

// Dispatcher hands a built notification to an asynchronous delivery
// mechanism so outbound webhook retries never block the inbound event
// acknowledgment.
type Dispatcher interface {
	DispatchNotification(provider *models.Provider, payload NotificationPayload) error
}

// Reconciler applies verified payment events to orders: it resolves the
// matching order, performs the idempotent status transition and dispatches
// provider notifications. Handlers must tolerate redelivery and out-of-order
// arrival of events for the same payment.
type Reconciler struct {
	store      Store
	resolver   *Resolver
	dispatcher Dispatcher
}

// NewReconciler creates a reconciler from an injected store and dispatcher.
func NewReconciler(store Store, dispatcher Dispatcher) *Reconciler {
	return &Reconciler{
		store:      store,
		resolver:   NewResolver(store),
		dispatcher: dispatcher,
	}
}

// HandleCheckoutCompleted applies a completed hosted-checkout session. When
// no order matches and the session carries a service id, the order is
// created lazily in paid status (a Payment Link used without a prior API
// call). A session for an already-paid order is a harmless re-application.
func (r *Reconciler) HandleCheckoutCompleted(ctx context.Context, ev CheckoutCompletedEvent) error {
	order, err := r.resolver.Resolve(ctx, ResolveRef{
		ClientReferenceID: ev.ClientReferenceID,
		PaymentIntentID:   ev.PaymentIntentID,
	})
	if err != nil {
		return err
	}

	if order == nil {
		if ev.ServiceID == 0 {
			log.Warnf("[Payments] checkout session %s matches no order and carries no service id, dropping", ev.SessionID)
			return nil
		}
		order = &models.Order{
			ServiceID:             ev.ServiceID,
			Status:                models.OrderStatusPaid,
			Total:                 ev.AmountTotal,
			Quantity:              1,
			StripeSessionID:       ev.SessionID,
			StripePaymentIntentID: ev.PaymentIntentID,
			CustomerEmail:         ev.CustomerEmail,
		}
		if ref := strings.TrimSpace(ev.ClientReferenceID); ref != "" {
			order.OrderID = &ref
		}
		setProvider(order, ev.ProviderID)
		if err := r.store.CreateOrder(ctx, order); err != nil {
			return err
		}
		log.Infof("[Payments] created paid order %d from checkout session %s", order.ID, ev.SessionID)
	} else {
		order.Status = models.OrderStatusPaid
		mergeField(&order.StripeSessionID, ev.SessionID)
		mergeField(&order.CustomerEmail, ev.CustomerEmail)
		// The session carries the real payment intent; it supersedes any
		// placeholder stored at pending-creation time.
		mergeField(&order.StripePaymentIntentID, ev.PaymentIntentID)
		setProvider(order, ev.ProviderID)
		if err := r.store.UpdateOrder(ctx, order); err != nil {
			return err
		}
		log.Infof("[Payments] order %d marked paid from checkout session %s", order.ID, ev.SessionID)
	}

	r.notify(ctx, order, EventPaymentSucceeded)
	return nil
}

// HandlePaymentSucceeded applies a succeeded payment intent. Falls back to
// creating the order in paid status when the intent metadata carries a
// service id.
func (r *Reconciler) HandlePaymentSucceeded(ctx context.Context, ev PaymentSucceededEvent) error {
	order, err := r.resolver.Resolve(ctx, ResolveRef{PaymentIntentID: ev.PaymentIntentID})
	if err != nil {
		return err
	}

	if order == nil {
		if ev.ServiceID == 0 {
			log.Warnf("[Payments] payment intent %s matches no order and carries no service id, dropping", ev.PaymentIntentID)
			return nil
		}
		order = &models.Order{
			ServiceID:             ev.ServiceID,
			Status:                models.OrderStatusPaid,
			Total:                 ev.Amount,
			Quantity:              1,
			ExternalID:            ev.ExternalID,
			StripePaymentIntentID: ev.PaymentIntentID,
		}
		setProvider(order, ev.ProviderID)
		if err := r.store.CreateOrder(ctx, order); err != nil {
			return err
		}
		log.Infof("[Payments] created paid order %d from payment intent %s", order.ID, ev.PaymentIntentID)
	} else {
		// Re-applying paid to a paid order is a no-op write but still
		// notifies: delivery dedup is the provider's responsibility.
		order.Status = models.OrderStatusPaid
		mergeField(&order.ExternalID, ev.ExternalID)
		mergeField(&order.StripePaymentIntentID, ev.PaymentIntentID)
		setProvider(order, ev.ProviderID)
		if err := r.store.UpdateOrder(ctx, order); err != nil {
			return err
		}
		log.Infof("[Payments] order %d marked paid from payment intent %s", order.ID, ev.PaymentIntentID)
	}

	r.notify(ctx, order, EventPaymentSucceeded)
	return nil
}

// HandlePaymentFailed applies a failed payment intent. Failure events carry
// no service id, so an unmatched event is logged and dropped.
func (r *Reconciler) HandlePaymentFailed(ctx context.Context, ev PaymentFailedEvent) error {
	order, err := r.resolver.Resolve(ctx, ResolveRef{PaymentIntentID: ev.PaymentIntentID})
	if err != nil {
		return err
	}
	if order == nil {
		log.Warnf("[Payments] failed payment intent %s matches no order, dropping", ev.PaymentIntentID)
		return nil
	}

	// Last-writer-wins: a late failed event overwrites even a paid order.
	if models.IsTerminalStatus(order.Status) && order.Status != models.OrderStatusFailed {
		log.Warnf("[Payments] order %d overwritten from terminal status %s to failed by payment intent %s",
			order.ID, order.Status, ev.PaymentIntentID)
	}
	order.Status = models.OrderStatusFailed
	setProvider(order, ev.ProviderID)
	if err := r.store.UpdateOrder(ctx, order); err != nil {
		return err
	}
	log.Infof("[Payments] order %d marked failed from payment intent %s", order.ID, ev.PaymentIntentID)

	r.notify(ctx, order, EventPaymentFailed)
	return nil
}

// notify dispatches a status notification when the order belongs to a
// provider with a configured webhook URL. Dispatch failures are logged only;
// the inbound event is acknowledged regardless.
func (r *Reconciler) notify(ctx context.Context, order *models.Order, eventKind string) {
	if order.ProviderID == nil {
		return
	}
	provider, err := r.store.GetProvider(ctx, *order.ProviderID)
	if err != nil {
		log.Errorf("[Payments] provider %d lookup for order %d failed: %v", *order.ProviderID, order.ID, err)
		return
	}
	if strings.TrimSpace(provider.WebhookURL) == "" {
		return
	}

	serviceName := ""
	if service, err := r.store.GetService(ctx, order.ServiceID); err == nil {
		serviceName = service.Title
	}

	payload := NotificationPayload{
		Event:           eventKind,
		OrderID:         order.OrderRef(),
		ExternalID:      order.ExternalID,
		ProviderID:      provider.ID,
		ProviderName:    provider.Name,
		ServiceID:       order.ServiceID,
		ServiceName:     serviceName,
		Amount:          order.Total,
		Status:          order.Status,
		PaymentIntentID: order.StripePaymentIntentID,
		Timestamp:       NowTimestamp(),
	}
	if err := r.dispatcher.DispatchNotification(provider, payload); err != nil {
		log.Errorf("[Payments] notification dispatch for order %d to provider %s failed: %v",
			order.ID, provider.Slug, err)
	}
}

// mergeField overwrites dst when the event supplies a non-empty value.
func mergeField(dst *string, src string) {
	if s := strings.TrimSpace(src); s != "" {
		*dst = s
	}
}

func setProvider(order *models.Order, providerID uint) {
	if order.ProviderID == nil && providerID != 0 {
		id := providerID
		order.ProviderID = &id
	}
}
