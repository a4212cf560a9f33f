package repository

import (
	"github.com/dztechshop/dzshop/app/models"
	"gorm.io/gorm"
)

// serviceRepository implements the ServiceRepository interface
type serviceRepository struct {
	db *gorm.DB
}

// NewServiceRepository creates a new service repository instance
func NewServiceRepository(db *gorm.DB) ServiceRepository {
	return &serviceRepository{db: db}
}

// Create validates and creates a new service in the database
func (r *serviceRepository) Create(service *models.Service) error {
	if err := service.Validate(); err != nil {
		return err
	}
	return r.db.Create(service).Error
}

// GetByID retrieves a service by its ID
func (r *serviceRepository) GetByID(id uint) (*models.Service, error) {
	var service models.Service
	err := r.db.First(&service, id).Error
	if err != nil {
		return nil, err
	}
	return &service, nil
}

// GetBySlug retrieves an active service by its slug
func (r *serviceRepository) GetBySlug(slug string) (*models.Service, error) {
	var service models.Service
	err := r.db.Where("slug = ? AND is_active = ?", slug, true).First(&service).Error
	if err != nil {
		return nil, err
	}
	return &service, nil
}

// GetActive retrieves all active services
func (r *serviceRepository) GetActive() ([]models.Service, error) {
	var services []models.Service
	err := r.db.Where("is_active = ?", true).Order("price ASC").Find(&services).Error
	return services, err
}

// Update validates and updates an existing service in the database
func (r *serviceRepository) Update(service *models.Service) error {
	if err := service.Validate(); err != nil {
		return err
	}
	return r.db.Save(service).Error
}

// Delete soft deletes a service by its ID
func (r *serviceRepository) Delete(id uint) error {
	return r.db.Delete(&models.Service{}, id).Error
}

// SlugExists checks if a slug already exists
func (r *serviceRepository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Service{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}
