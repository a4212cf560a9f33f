package repository

import (
	"github.com/dztechshop/dzshop/app/models"
	"gorm.io/gorm"
)

// ServiceRepository defines the interface for service-related database operations
type ServiceRepository interface {
	Create(service *models.Service) error
	GetByID(id uint) (*models.Service, error)
	GetBySlug(slug string) (*models.Service, error)
	GetActive() ([]models.Service, error)
	Update(service *models.Service) error
	Delete(id uint) error
	SlugExists(slug string) (bool, error)
}

// PageRepository defines the interface for page-related operations
type PageRepository interface {
	Create(page *models.Page) error
	GetByID(id uint) (*models.Page, error)
	GetBySlug(slug string) (*models.Page, error)
	GetActive() ([]models.Page, error)
	Update(page *models.Page) error
	Delete(id uint) error
	SlugExists(slug string) (bool, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	Service ServiceRepository
	Page    PageRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Service: NewServiceRepository(db),
		Page:    NewPageRepository(db),
	}
}
