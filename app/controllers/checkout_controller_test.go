package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dztechshop/dzshop/app/models"
	"github.com/dztechshop/dzshop/internal/pkg/gateway"
	"github.com/dztechshop/dzshop/internal/pkg/payments"
)

type stubStore struct {
	orders    map[uint]*models.Order
	providers map[uint]*models.Provider
	services  map[uint]*models.Service
	createErr error
	nextID    uint
}

func newStubStore() *stubStore {
	return &stubStore{
		orders:    map[uint]*models.Order{},
		providers: map[uint]*models.Provider{},
		services:  map[uint]*models.Service{},
	}
}

func (s *stubStore) FindOrderByID(_ context.Context, id uint) (*models.Order, error) {
	if o, ok := s.orders[id]; ok {
		return o, nil
	}
	return nil, payments.ErrNotFound
}

func (s *stubStore) FindOrderByOrderID(_ context.Context, orderID string) (*models.Order, error) {
	for _, o := range s.orders {
		if o.OrderID != nil && *o.OrderID == orderID {
			return o, nil
		}
	}
	return nil, payments.ErrNotFound
}

func (s *stubStore) FindOrderByPaymentIntentID(_ context.Context, paymentIntentID string) (*models.Order, error) {
	for _, o := range s.orders {
		if o.StripePaymentIntentID == paymentIntentID {
			return o, nil
		}
	}
	return nil, payments.ErrNotFound
}

func (s *stubStore) CreateOrder(_ context.Context, order *models.Order) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.nextID++
	order.ID = s.nextID
	s.orders[order.ID] = order
	return nil
}

func (s *stubStore) UpdateOrder(_ context.Context, order *models.Order) error {
	s.orders[order.ID] = order
	return nil
}

func (s *stubStore) GetProvider(_ context.Context, id uint) (*models.Provider, error) {
	if p, ok := s.providers[id]; ok {
		return p, nil
	}
	return nil, payments.ErrNotFound
}

func (s *stubStore) GetProviderByAPIKey(_ context.Context, apiKey string) (*models.Provider, error) {
	for _, p := range s.providers {
		if p.APIKey == apiKey && p.IsActive() {
			return p, nil
		}
	}
	return nil, payments.ErrNotFound
}

func (s *stubStore) TouchProviderLastUsed(_ context.Context, _ uint) error { return nil }

func (s *stubStore) GetService(_ context.Context, id uint) (*models.Service, error) {
	if svc, ok := s.services[id]; ok {
		return svc, nil
	}
	return nil, payments.ErrNotFound
}

type stubGateway struct {
	intent      *gateway.PaymentIntent
	session     *gateway.CheckoutSession
	retrieveErr error
}

func (g *stubGateway) CreatePaymentIntent(_ context.Context, _ gateway.CreatePaymentIntentInput) (*gateway.PaymentIntent, error) {
	return g.intent, nil
}

func (g *stubGateway) CreateCheckoutSession(_ context.Context, _ gateway.CreateCheckoutSessionInput) (*gateway.CheckoutSession, error) {
	return g.session, nil
}

func (g *stubGateway) RetrieveCheckoutSession(_ context.Context, _ string) (*gateway.CheckoutSession, error) {
	if g.retrieveErr != nil {
		return nil, g.retrieveErr
	}
	return g.session, nil
}

func decodeJSONBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestHandleCreatePaymentIntent(t *testing.T) {
	store := newStubStore()
	store.services[7] = &models.Service{ID: 7, Title: "VPS Setup", Slug: "vps-setup", Price: 49.99, IsActive: true}
	gw := &stubGateway{intent: &gateway.PaymentIntent{ID: "pi_test", ClientSecret: "pi_test_secret"}}

	cc := NewCheckoutController(store, gw)
	app := fiber.New()
	app.Post("/api/create-payment-intent", cc.HandleCreatePaymentIntent)

	req := httptest.NewRequest(http.MethodPost, "/api/create-payment-intent", strings.NewReader(`{"serviceId":7}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := decodeJSONBody(t, resp)
	assert.Equal(t, "pi_test_secret", out["clientSecret"])
	assert.Equal(t, "VPS Setup", out["serviceName"])
	assert.InDelta(t, 49.99, out["amount"].(float64), 0.001)
	orderID, _ := out["orderId"].(string)
	require.True(t, payments.IsGeneratedOrderID(orderID), "orderId %q should be generated", orderID)

	// The provisional order must be booked with the intent attached.
	order, err := store.FindOrderByOrderID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, "pi_test", order.StripePaymentIntentID)
}

func TestHandleCreatePaymentIntentUnknownService(t *testing.T) {
	cc := NewCheckoutController(newStubStore(), &stubGateway{})
	app := fiber.New()
	app.Post("/api/create-payment-intent", cc.HandleCreatePaymentIntent)

	req := httptest.NewRequest(http.MethodPost, "/api/create-payment-intent", strings.NewReader(`{"serviceId":99}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHandleCreatePaymentIntentBookkeepingFailureIsNonFatal(t *testing.T) {
	store := newStubStore()
	store.services[7] = &models.Service{ID: 7, Title: "VPS Setup", Slug: "vps-setup", Price: 49.99, IsActive: true}
	store.createErr = context.DeadlineExceeded
	gw := &stubGateway{intent: &gateway.PaymentIntent{ID: "pi_test", ClientSecret: "pi_test_secret"}}

	cc := NewCheckoutController(store, gw)
	app := fiber.New()
	app.Post("/api/create-payment-intent", cc.HandleCreatePaymentIntent)

	req := httptest.NewRequest(http.MethodPost, "/api/create-payment-intent", strings.NewReader(`{"serviceId":7}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHandleCreateCheckoutInactiveService(t *testing.T) {
	store := newStubStore()
	store.services[3] = &models.Service{ID: 3, Title: "Legacy", Slug: "legacy", Price: 10, IsActive: false}

	cc := NewCheckoutController(store, &stubGateway{})
	app := fiber.New()
	app.Post("/api/checkout", cc.HandleCreateCheckout)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(`{"serviceId":3}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestHandleVerifySession(t *testing.T) {
	store := newStubStore()
	store.services[7] = &models.Service{ID: 7, Title: "VPS Setup", Slug: "vps-setup", Price: 49.99, IsActive: true}
	orderID := "ord_abc123"
	store.orders[1] = &models.Order{ID: 1, OrderID: &orderID, ServiceID: 7, Status: models.OrderStatusPaid, Total: 49.99}

	gw := &stubGateway{session: &gateway.CheckoutSession{
		ID:                "cs_test",
		PaymentStatus:     "paid",
		AmountTotal:       49.99,
		Currency:          "usd",
		ClientReferenceID: orderID,
	}}

	cc := NewCheckoutController(store, gw)
	app := fiber.New()
	app.Get("/api/v1/verify-session", cc.HandleVerifySession)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/verify-session?session_id=cs_test", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	out := decodeJSONBody(t, resp)
	session := out["session"].(map[string]any)
	assert.Equal(t, "cs_test", session["id"])
	order := out["order"].(map[string]any)
	assert.Equal(t, orderID, order["orderId"])
	assert.Equal(t, models.OrderStatusPaid, order["status"])
	assert.Equal(t, "VPS Setup", order["serviceName"])
}

func TestHandleVerifySessionMissingParam(t *testing.T) {
	cc := NewCheckoutController(newStubStore(), &stubGateway{})
	app := fiber.New()
	app.Get("/api/v1/verify-session", cc.HandleVerifySession)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/verify-session", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
