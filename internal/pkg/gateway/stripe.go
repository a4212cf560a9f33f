package gateway

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/paymentintent"

	"github.com/dztechshop/dzshop/internal/pkg/env"
)

// StripeGateway implements Gateway against the Stripe API.
type StripeGateway struct{}

// NewStripeGatewayFromEnv configures the global Stripe key from the
// environment and returns a gateway.
func NewStripeGatewayFromEnv() *StripeGateway {
	stripe.Key = env.GetEnv("STRIPE_SECRET_KEY", "")
	return &StripeGateway{}
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, in CreatePaymentIntentInput) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(toCents(in.Amount)),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		// Cash App only - requires a US-based Stripe account.
		PaymentMethodTypes: stripe.StringSlice([]string{"cashapp"}),
	}
	params.AddMetadata("serviceId", strconv.FormatUint(uint64(in.ServiceID), 10))
	params.AddMetadata("serviceName", in.ServiceName)
	params.AddMetadata("orderId", in.OrderID)
	if in.ProviderID != 0 {
		params.AddMetadata("providerId", strconv.FormatUint(uint64(in.ProviderID), 10))
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent: %w", err)
	}
	return &PaymentIntent{ID: intent.ID, ClientSecret: intent.ClientSecret}, nil
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, in CreateCheckoutSessionInput) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Params:             stripe.Params{Context: ctx},
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(in.SuccessURL),
		CancelURL:          stripe.String(in.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(in.ServiceName),
					},
					UnitAmount: stripe.Int64(toCents(in.Amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	if in.ServiceDescription != "" {
		params.LineItems[0].PriceData.ProductData.Description = stripe.String(in.ServiceDescription)
	}
	if in.ClientReferenceID != "" {
		params.ClientReferenceID = stripe.String(in.ClientReferenceID)
	}
	params.AddMetadata("serviceId", strconv.FormatUint(uint64(in.ServiceID), 10))
	if in.ProviderID != 0 {
		params.AddMetadata("providerId", strconv.FormatUint(uint64(in.ProviderID), 10))
	}

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}
	return fromStripeSession(s), nil
}

func (g *StripeGateway) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{Params: stripe.Params{Context: ctx}}
	params.AddExpand("line_items")
	s, err := session.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe session %s: %w", sessionID, err)
	}
	return fromStripeSession(s), nil
}

func fromStripeSession(s *stripe.CheckoutSession) *CheckoutSession {
	out := &CheckoutSession{
		ID:                s.ID,
		URL:               s.URL,
		ClientReferenceID: s.ClientReferenceID,
		PaymentStatus:     string(s.PaymentStatus),
		AmountTotal:       fromCents(s.AmountTotal),
		Currency:          string(s.Currency),
	}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}
	if s.CustomerDetails != nil {
		out.CustomerEmail = s.CustomerDetails.Email
	}
	return out
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func fromCents(cents int64) float64 {
	return float64(cents) / 100
}
