package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/dztechshop/dzshop/app/models"
	"github.com/dztechshop/dzshop/internal/pkg/env"
	"github.com/dztechshop/dzshop/internal/pkg/gateway"
	"github.com/dztechshop/dzshop/internal/pkg/payments"
)

// CheckoutController handles payment initiation and session verification.
type CheckoutController struct {
	store    payments.Store
	creator  *payments.PendingOrderCreator
	resolver *payments.Resolver
	gateway  gateway.Gateway
	validate *validator.Validate
}

// NewCheckoutController wires the checkout handlers to their collaborators.
func NewCheckoutController(store payments.Store, gw gateway.Gateway) *CheckoutController {
	return &CheckoutController{
		store:    store,
		creator:  payments.NewPendingOrderCreator(store),
		resolver: payments.NewResolver(store),
		gateway:  gw,
		validate: validator.New(),
	}
}

type createPaymentIntentRequest struct {
	ServiceID  uint   `json:"serviceId" validate:"required"`
	OrderID    string `json:"orderId" validate:"omitempty,max=64"`
	ProviderID uint   `json:"providerId"`
}

type createCheckoutRequest struct {
	ServiceID  uint   `json:"serviceId" validate:"required"`
	ProviderID uint   `json:"providerId"`
	OrderID    string `json:"orderId" validate:"omitempty,max=64"`
}

// HandleCreatePaymentIntent creates a payment intent for a service and books
// a provisional order so webhook events always have something to resolve to.
func (cc *CheckoutController) HandleCreatePaymentIntent(c *fiber.Ctx) error {
	var req createPaymentIntentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "Malformed JSON body"})
	}
	if err := cc.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 15*time.Second)
	defer cancel()

	service, err := cc.store.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, payments.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Unknown service"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load service"})
	}
	if !service.IsActive {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "service_inactive", "message": "Service is not available"})
	}

	orderID := req.OrderID
	if orderID == "" {
		orderID, err = payments.GenerateOrderID()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to allocate order reference"})
		}
	}

	intent, err := cc.gateway.CreatePaymentIntent(ctx, gateway.CreatePaymentIntentInput{
		Amount:      service.Price,
		ServiceID:   service.ID,
		ServiceName: service.Title,
		OrderID:     orderID,
		ProviderID:  req.ProviderID,
	})
	if err != nil {
		log.Errorf("[Checkout] payment intent creation failed for service %d: %v", service.ID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "gateway_error", "message": "Payment could not be initiated"})
	}

	// Bookkeeping only: the webhook path can recover a missing pending order,
	// so a failed insert must not fail the checkout.
	if err := cc.creator.CreatePending(ctx, payments.PendingOrder{
		OrderID:         orderID,
		ServiceID:       service.ID,
		ProviderID:      req.ProviderID,
		Price:           service.Price,
		PaymentIntentID: intent.ID,
	}); err != nil {
		log.Errorf("[Checkout] pending order %s not recorded: %v", orderID, err)
	}

	return c.JSON(fiber.Map{
		"clientSecret": intent.ClientSecret,
		"orderId":      orderID,
		"amount":       service.Price,
		"serviceName":  service.Title,
	})
}

// HandleCreateCheckout creates a hosted checkout session for a service.
func (cc *CheckoutController) HandleCreateCheckout(c *fiber.Ctx) error {
	var req createCheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "Malformed JSON body"})
	}
	if err := cc.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 15*time.Second)
	defer cancel()

	service, err := cc.store.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, payments.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Unknown service"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load service"})
	}
	if !service.IsActive {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "service_inactive", "message": "Service is not available"})
	}

	orderID := req.OrderID
	if orderID == "" {
		orderID, err = payments.GenerateOrderID()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to allocate order reference"})
		}
	}

	successURL, cancelURL := cc.redirectURLs(ctx, req.ProviderID, orderID)

	session, err := cc.gateway.CreateCheckoutSession(ctx, gateway.CreateCheckoutSessionInput{
		ServiceID:          service.ID,
		ServiceName:        service.Title,
		ServiceDescription: service.Description,
		Amount:             service.Price,
		SuccessURL:         successURL,
		CancelURL:          cancelURL,
		ClientReferenceID:  orderID,
		ProviderID:         req.ProviderID,
	})
	if err != nil {
		log.Errorf("[Checkout] session creation failed for service %d: %v", service.ID, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "gateway_error", "message": "Checkout could not be started"})
	}

	if err := cc.creator.CreatePending(ctx, payments.PendingOrder{
		OrderID:    orderID,
		ServiceID:  service.ID,
		ProviderID: req.ProviderID,
		Price:      service.Price,
	}); err != nil {
		log.Errorf("[Checkout] pending order %s not recorded: %v", orderID, err)
	}

	return c.JSON(fiber.Map{
		"sessionId": session.ID,
		"url":       session.URL,
		"orderId":   orderID,
	})
}

// HandleVerifySession loads a checkout session after the customer returns and
// reports the matching order, when one exists.
func (cc *CheckoutController) HandleVerifySession(c *fiber.Ctx) error {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "session_id is required"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 15*time.Second)
	defer cancel()

	session, err := cc.gateway.RetrieveCheckoutSession(ctx, sessionID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Unknown session"})
	}

	response := fiber.Map{
		"session": fiber.Map{
			"id":            session.ID,
			"paymentStatus": session.PaymentStatus,
			"amountTotal":   session.AmountTotal,
			"currency":      session.Currency,
			"customerEmail": session.CustomerEmail,
		},
	}

	order, err := cc.resolver.Resolve(ctx, payments.ResolveRef{
		ClientReferenceID: session.ClientReferenceID,
		PaymentIntentID:   session.PaymentIntentID,
	})
	if err != nil {
		log.Errorf("[Checkout] order resolution for session %s failed: %v", sessionID, err)
	}
	if order != nil {
		orderMap := fiber.Map{
			"orderId": order.OrderRef(),
			"status":  order.Status,
			"total":   order.Total,
		}
		if service, err := cc.store.GetService(ctx, order.ServiceID); err == nil {
			orderMap["serviceName"] = service.Title
		}
		response["order"] = orderMap
	}

	return c.JSON(response)
}

// redirectURLs resolves success/cancel destinations, preferring the
// provider's URL templates over the site defaults.
func (cc *CheckoutController) redirectURLs(ctx context.Context, providerID uint, orderID string) (string, string) {
	base := env.GetEnv("PUBLIC_DOMAIN", "http://localhost:8080")
	successURL := base + "/checkout/success?session_id={CHECKOUT_SESSION_ID}"
	cancelURL := base + "/checkout/cancel"

	if providerID == 0 {
		return successURL, cancelURL
	}
	provider, err := cc.store.GetProvider(ctx, providerID)
	if err != nil {
		log.Warnf("[Checkout] provider %d lookup for redirect URLs failed: %v", providerID, err)
		return successURL, cancelURL
	}
	if provider.SuccessRedirectURL != "" {
		successURL = models.ExpandRedirectURL(provider.SuccessRedirectURL, orderID)
	}
	if provider.CancelRedirectURL != "" {
		cancelURL = models.ExpandRedirectURL(provider.CancelRedirectURL, orderID)
	}
	return successURL, cancelURL
}
