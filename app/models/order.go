package models

import (
	"time"
)

const (
	OrderStatusPending  = "pending"
	OrderStatusPaid     = "paid"
	OrderStatusFailed   = "failed"
	OrderStatusRefunded = "refunded"
)

// Order records one purchase attempt linking a service, a status and the
// payment-provider identifiers observed during the flow. Orders are created
// either eagerly at payment-intent time (pending) or lazily from the first
// webhook event that references an unknown payment.
type Order struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	OrderID               *string   `gorm:"type:varchar(64);uniqueIndex:ux_orders_order_id" json:"order_id,omitempty"`
	ExternalID            string    `gorm:"type:varchar(191);index" json:"external_id,omitempty"`
	ProviderID            *uint     `gorm:"index" json:"provider_id,omitempty"`
	Provider              *Provider `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
	ServiceID             uint      `gorm:"not null;index" json:"service_id"`
	Service               Service   `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Status                string    `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	Total                 float64   `gorm:"not null" json:"total"`
	Quantity              int       `gorm:"default:1" json:"quantity"`
	StripeSessionID       string    `gorm:"type:varchar(191)" json:"stripe_session_id,omitempty"`
	StripePaymentIntentID string    `gorm:"type:varchar(191);index" json:"stripe_payment_intent_id,omitempty"`
	CustomerEmail         string    `gorm:"type:varchar(200)" json:"customer_email,omitempty"`
	CreatedAt             time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsTerminalStatus reports whether a status never returns to pending.
func IsTerminalStatus(status string) bool {
	switch status {
	case OrderStatusPaid, OrderStatusFailed, OrderStatusRefunded:
		return true
	default:
		return false
	}
}

// OrderRef returns the human-usable reference when assigned, otherwise "".
func (o *Order) OrderRef() string {
	if o.OrderID == nil {
		return ""
	}
	return *o.OrderID
}
