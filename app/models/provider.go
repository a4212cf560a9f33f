package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	ProviderStatusActive   = "active"
	ProviderStatusInactive = "inactive"
)

// Provider is an external integrator that uses this system as its payment
// gateway and receives order-status webhooks. Providers are administered
// out-of-band; the reconciliation subsystem only reads them.
type Provider struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Name               string     `gorm:"type:varchar(150);not null" json:"name"`
	Slug               string     `gorm:"type:varchar(150);uniqueIndex;not null" json:"slug"`
	APIKey             string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"-"`
	ServiceID          uint       `gorm:"not null" json:"service_id"`
	Service            Service    `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Status             string     `gorm:"type:varchar(16);not null;default:'active';index" json:"status"`
	WebhookURL         string     `gorm:"type:varchar(500)" json:"webhook_url,omitempty"`
	SuccessRedirectURL string     `gorm:"type:varchar(500)" json:"success_redirect_url,omitempty"`
	CancelRedirectURL  string     `gorm:"type:varchar(500)" json:"cancel_redirect_url,omitempty"`
	Description        string     `gorm:"type:text" json:"description,omitempty"`
	LastUsedAt         *time.Time `gorm:"type:timestamp;default:null" json:"last_used_at,omitempty"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeCreate assigns a generated API key when none was provided.
func (p *Provider) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(p.APIKey) == "" {
		key, err := GenerateProviderAPIKey()
		if err != nil {
			return err
		}
		p.APIKey = key
	}
	return nil
}

// IsActive reports whether the provider may process payments.
func (p *Provider) IsActive() bool {
	return p.Status == ProviderStatusActive
}

// ExpandRedirectURL fills the {orderId} placeholder in a redirect template.
func ExpandRedirectURL(template, orderID string) string {
	return strings.ReplaceAll(template, "{orderId}", orderID)
}
