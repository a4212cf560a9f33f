package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"github.com/dztechshop/dzshop/app/models"
)

// Store error classes. Callers branch on these instead of driver errors.
var (
	// ErrNotFound signals a lookup miss; an expected branch during
	// resolution, never a failure.
	ErrNotFound = errors.New("payments: record not found")
	// ErrDuplicateKey signals a uniqueness violation on insert; a concurrent
	// request already created the same record.
	ErrDuplicateKey = errors.New("payments: duplicate key")
	// ErrWriteConflict signals a transient store conflict worth retrying.
	ErrWriteConflict = errors.New("payments: write conflict")
)

// Store abstracts the order document store for the reconciliation subsystem.
type Store interface {
	FindOrderByID(ctx context.Context, id uint) (*models.Order, error)
	FindOrderByOrderID(ctx context.Context, orderID string) (*models.Order, error)
	FindOrderByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	UpdateOrder(ctx context.Context, order *models.Order) error
	GetProvider(ctx context.Context, id uint) (*models.Provider, error)
	GetProviderByAPIKey(ctx context.Context, apiKey string) (*models.Provider, error)
	TouchProviderLastUsed(ctx context.Context, id uint) error
	GetService(ctx context.Context, id uint) (*models.Service, error)
}

type gormStore struct {
	db *gorm.DB
}

// NewStore creates a payments store backed by GORM.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) FindOrderByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).First(&order, id).Error
	if err != nil {
		return nil, translateReadError(err)
	}
	return &order, nil
}

func (s *gormStore) FindOrderByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).First(&order).Error
	if err != nil {
		return nil, translateReadError(err)
	}
	return &order, nil
}

func (s *gormStore) FindOrderByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Where("stripe_payment_intent_id = ?", paymentIntentID).
		Order("created_at DESC").
		First(&order).Error
	if err != nil {
		return nil, translateReadError(err)
	}
	return &order, nil
}

func (s *gormStore) CreateOrder(ctx context.Context, order *models.Order) error {
	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		return translateWriteError(err)
	}
	return nil
}

func (s *gormStore) UpdateOrder(ctx context.Context, order *models.Order) error {
	if err := s.db.WithContext(ctx).Save(order).Error; err != nil {
		return translateWriteError(err)
	}
	return nil
}

func (s *gormStore) GetProvider(ctx context.Context, id uint) (*models.Provider, error) {
	var provider models.Provider
	err := s.db.WithContext(ctx).First(&provider, id).Error
	if err != nil {
		return nil, translateReadError(err)
	}
	return &provider, nil
}

func (s *gormStore) GetProviderByAPIKey(ctx context.Context, apiKey string) (*models.Provider, error) {
	var provider models.Provider
	err := s.db.WithContext(ctx).
		Where("api_key = ? AND status = ?", apiKey, models.ProviderStatusActive).
		First(&provider).Error
	if err != nil {
		return nil, translateReadError(err)
	}
	return &provider, nil
}

func (s *gormStore) TouchProviderLastUsed(ctx context.Context, id uint) error {
	now := time.Now()
	return s.db.WithContext(ctx).
		Model(&models.Provider{}).
		Where("id = ?", id).
		Update("last_used_at", &now).Error
}

func (s *gormStore) GetService(ctx context.Context, id uint) (*models.Service, error) {
	var service models.Service
	err := s.db.WithContext(ctx).First(&service, id).Error
	if err != nil {
		return nil, translateReadError(err)
	}
	return &service, nil
}

func translateReadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// MySQL error numbers for transient lock failures.
const (
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
)

func translateWriteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlErrDeadlock, mysqlErrLockWaitTimeout:
			return fmt.Errorf("%w: %v", ErrWriteConflict, err)
		}
	}
	return err
}
