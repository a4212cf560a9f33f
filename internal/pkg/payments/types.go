package payments

import "time"

// Event kinds pushed to provider webhooks.
const (
	EventPaymentSucceeded = "payment_succeeded"
	EventPaymentFailed    = "payment_failed"
)

// CheckoutCompletedEvent is the normalized form of a completed hosted
// checkout session. Signature verification and payload parsing happen in the
// transport layer; this subsystem only sees verified, typed events.
type CheckoutCompletedEvent struct {
	ServiceID         uint
	ProviderID        uint
	PaymentIntentID   string
	ClientReferenceID string
	SessionID         string
	AmountTotal       float64
	CustomerEmail     string
}

// PaymentSucceededEvent is the normalized form of a succeeded payment intent.
type PaymentSucceededEvent struct {
	ServiceID       uint
	ProviderID      uint
	ExternalID      string
	PaymentIntentID string
	Amount          float64
}

// PaymentFailedEvent is the normalized form of a failed payment intent.
type PaymentFailedEvent struct {
	ProviderID      uint
	PaymentIntentID string
}

// NotificationPayload is the JSON body pushed to a provider's webhook URL on
// order status changes.
type NotificationPayload struct {
	Event           string  `json:"event"`
	OrderID         string  `json:"orderId"`
	ExternalID      string  `json:"externalId,omitempty"`
	ProviderID      uint    `json:"providerId"`
	ProviderName    string  `json:"providerName"`
	ServiceID       uint    `json:"serviceId"`
	ServiceName     string  `json:"serviceName"`
	Amount          float64 `json:"amount"`
	Status          string  `json:"status"`
	PaymentIntentID string  `json:"paymentIntentId"`
	Timestamp       string  `json:"timestamp"`
}

// NowTimestamp returns the ISO-8601 timestamp stamped on notifications.
func NowTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
