package payments

import (
	"context"
	"sync"

	"github.com/dztechshop/dzshop/app/models"
)

// fakeStore is an in-memory Store with scriptable write errors.
type fakeStore struct {
	mu        sync.Mutex
	orders    map[uint]*models.Order
	providers map[uint]*models.Provider
	services  map[uint]*models.Service
	nextID    uint

	createErrs    []error // consumed by CreateOrder, one per call
	createCalls   int
	updateCalls   int
	findByIDCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:    make(map[uint]*models.Order),
		providers: make(map[uint]*models.Provider),
		services:  make(map[uint]*models.Service),
	}
}

func (s *fakeStore) addOrder(order *models.Order) *models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.ID == 0 {
		s.nextID++
		order.ID = s.nextID
	} else if order.ID > s.nextID {
		s.nextID = order.ID
	}
	cp := *order
	s.orders[order.ID] = &cp
	return order
}

func (s *fakeStore) FindOrderByID(_ context.Context, id uint) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findByIDCalls++
	if o, ok := s.orders[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (s *fakeStore) FindOrderByOrderID(_ context.Context, orderID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.OrderID != nil && *o.OrderID == orderID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) FindOrderByPaymentIntentID(_ context.Context, paymentIntentID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.StripePaymentIntentID == paymentIntentID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) CreateOrder(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	if len(s.createErrs) > 0 {
		err := s.createErrs[0]
		s.createErrs = s.createErrs[1:]
		if err != nil {
			return err
		}
	}
	if order.OrderID != nil {
		for _, o := range s.orders {
			if o.OrderID != nil && *o.OrderID == *order.OrderID {
				return ErrDuplicateKey
			}
		}
	}
	s.nextID++
	order.ID = s.nextID
	cp := *order
	s.orders[order.ID] = &cp
	return nil
}

func (s *fakeStore) UpdateOrder(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateCalls++
	if _, ok := s.orders[order.ID]; !ok {
		return ErrNotFound
	}
	cp := *order
	s.orders[order.ID] = &cp
	return nil
}

func (s *fakeStore) GetProvider(_ context.Context, id uint) (*models.Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.providers[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (s *fakeStore) GetProviderByAPIKey(_ context.Context, apiKey string) (*models.Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.providers {
		if p.APIKey == apiKey && p.Status == models.ProviderStatusActive {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) TouchProviderLastUsed(_ context.Context, _ uint) error { return nil }

func (s *fakeStore) GetService(_ context.Context, id uint) (*models.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if svc, ok := s.services[id]; ok {
		cp := *svc
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (s *fakeStore) orderByID(id uint) *models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.orders[id]; ok {
		cp := *o
		return &cp
	}
	return nil
}

func (s *fakeStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// fakeDispatcher records dispatched notifications synchronously.
type fakeDispatcher struct {
	mu       sync.Mutex
	payloads []NotificationPayload
	err      error
}

func (d *fakeDispatcher) DispatchNotification(_ *models.Provider, payload NotificationPayload) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.payloads = append(d.payloads, payload)
	return d.err
}

func (d *fakeDispatcher) dispatched() []NotificationPayload {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]NotificationPayload, len(d.payloads))
	copy(out, d.payloads)
	return out
}

func strPtr(s string) *string { return &s }

func uintPtr(v uint) *uint { return &v }
