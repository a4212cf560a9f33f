// Package gateway wraps the hosted payment processor behind an interface so
// the rest of the application never touches the Stripe SDK directly.
package gateway

import "context"

// PaymentIntent is the subset of a created payment intent the callers need.
type PaymentIntent struct {
	ID           string
	ClientSecret string
}

// CheckoutSession is the subset of a hosted checkout session the callers need.
type CheckoutSession struct {
	ID                string
	URL               string
	ClientReferenceID string
	PaymentStatus     string
	PaymentIntentID   string
	CustomerEmail     string
	AmountTotal       float64
	Currency          string
}

// CreatePaymentIntentInput carries the order-side fields stamped into the
// intent's metadata so webhook events can be matched back.
type CreatePaymentIntentInput struct {
	Amount      float64
	ServiceID   uint
	ServiceName string
	OrderID     string
	ProviderID  uint
}

// CreateCheckoutSessionInput describes one hosted checkout for one service.
type CreateCheckoutSessionInput struct {
	ServiceID          uint
	ServiceName        string
	ServiceDescription string
	Amount             float64
	SuccessURL         string
	CancelURL          string
	ClientReferenceID  string
	ProviderID         uint
}

// Gateway is the outbound payment-initiation collaborator.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, in CreatePaymentIntentInput) (*PaymentIntent, error)
	CreateCheckoutSession(ctx context.Context, in CreateCheckoutSessionInput) (*CheckoutSession, error)
	RetrieveCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
}
