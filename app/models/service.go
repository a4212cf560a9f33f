package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Service is a purchasable offering shown on the site and referenced by
// orders and providers.
type Service struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title" validate:"required,min=1,max=255"`
	Slug        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug" validate:"required,min=1,max=255"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Price       float64   `gorm:"not null" json:"price" validate:"gt=0"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Service) Validate() error {
	v := validator.New()
	return v.Struct(s)
}

