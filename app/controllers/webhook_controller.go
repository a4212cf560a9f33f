package controllers

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/dztechshop/dzshop/internal/pkg/env"
	"github.com/dztechshop/dzshop/internal/pkg/payments"
)

// WebhookController terminates the processor's webhook: it verifies
// signatures, normalizes events, and hands them to the reconciler. Once a
// payload is authentic it is always acknowledged with 200 so the processor
// does not re-deliver; processing failures are logged and absorbed.
type WebhookController struct {
	reconciler *payments.Reconciler
}

// NewWebhookController wires the webhook transport to the reconciler.
func NewWebhookController(reconciler *payments.Reconciler) *WebhookController {
	return &WebhookController{reconciler: reconciler}
}

// HandleStripeWebhook processes signed payment events.
func (wc *WebhookController) HandleStripeWebhook(c *fiber.Ctx) error {
	payload := c.BodyRaw()
	secret := env.GetEnv("STRIPE_WEBHOOK_SECRET", "")

	event, err := webhook.ConstructEvent(payload, c.Get("Stripe-Signature"), secret)
	if err != nil {
		log.Warnf("[Webhook] signature verification failed: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_signature"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch string(event.Type) {
	case "checkout.session.completed":
		wc.handleCheckoutCompleted(ctx, event)
	case "payment_intent.succeeded":
		wc.handlePaymentSucceeded(ctx, event)
	case "payment_intent.payment_failed":
		wc.handlePaymentFailed(ctx, event)
	default:
		log.Debugf("[Webhook] ignoring event type %s", event.Type)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}

func (wc *WebhookController) handleCheckoutCompleted(ctx context.Context, event stripe.Event) {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		log.Errorf("[Webhook] malformed checkout session in event %s: %v", event.ID, err)
		return
	}

	ev := payments.CheckoutCompletedEvent{
		ServiceID:         metadataUint(session.Metadata, "serviceId"),
		ProviderID:        metadataUint(session.Metadata, "providerId"),
		ClientReferenceID: session.ClientReferenceID,
		SessionID:         session.ID,
		AmountTotal:       float64(session.AmountTotal) / 100,
	}
	if session.PaymentIntent != nil {
		ev.PaymentIntentID = session.PaymentIntent.ID
	}
	if session.CustomerDetails != nil {
		ev.CustomerEmail = session.CustomerDetails.Email
	}

	if err := wc.reconciler.HandleCheckoutCompleted(ctx, ev); err != nil {
		log.Errorf("[Webhook] checkout.session.completed %s not reconciled: %v", session.ID, err)
	}
}

func (wc *WebhookController) handlePaymentSucceeded(ctx context.Context, event stripe.Event) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		log.Errorf("[Webhook] malformed payment intent in event %s: %v", event.ID, err)
		return
	}

	ev := payments.PaymentSucceededEvent{
		ServiceID:       metadataUint(intent.Metadata, "serviceId"),
		ProviderID:      metadataUint(intent.Metadata, "providerId"),
		ExternalID:      intent.Metadata["orderId"],
		PaymentIntentID: intent.ID,
		Amount:          float64(intent.Amount) / 100,
	}

	if err := wc.reconciler.HandlePaymentSucceeded(ctx, ev); err != nil {
		log.Errorf("[Webhook] payment_intent.succeeded %s not reconciled: %v", intent.ID, err)
	}
}

func (wc *WebhookController) handlePaymentFailed(ctx context.Context, event stripe.Event) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		log.Errorf("[Webhook] malformed payment intent in event %s: %v", event.ID, err)
		return
	}

	ev := payments.PaymentFailedEvent{
		ProviderID:      metadataUint(intent.Metadata, "providerId"),
		PaymentIntentID: intent.ID,
	}

	if err := wc.reconciler.HandlePaymentFailed(ctx, ev); err != nil {
		log.Errorf("[Webhook] payment_intent.payment_failed %s not reconciled: %v", intent.ID, err)
	}
}

// metadataUint parses a numeric metadata value, returning 0 for absent or
// non-numeric entries.
func metadataUint(metadata map[string]string, key string) uint {
	n, err := strconv.ParseUint(metadata[key], 10, 64)
	if err != nil {
		return 0
	}
	return uint(n)
}
