package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/dztechshop/dzshop/app/models"
	"github.com/dztechshop/dzshop/internal/pkg/payments"
)

// providerLocalsKey is where the authenticating middleware stores the
// resolved provider for downstream handlers.
const providerLocalsKey = "provider"

// ProviderAPIController serves the authenticated integration API partners
// call to check on their orders.
type ProviderAPIController struct {
	store payments.Store
}

// NewProviderAPIController wires the provider API handlers to the store.
func NewProviderAPIController(store payments.Store) *ProviderAPIController {
	return &ProviderAPIController{store: store}
}

// RequireAPIKey authenticates the X-API-Key header against active providers
// and records the key usage.
func (pc *ProviderAPIController) RequireAPIKey(c *fiber.Ctx) error {
	apiKey := c.Get("X-API-Key")
	if !models.IsValidProviderAPIKeyFormat(apiKey) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing or malformed API key"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	provider, err := pc.store.GetProviderByAPIKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, payments.ErrNotFound) {
			// Log only a hash prefix, never the key itself.
			log.Warnf("[ProviderAPI] rejected unknown API key (sha256 %s...)", models.HashProviderAPIKey(apiKey)[:12])
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Unknown API key"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Authentication failed"})
	}

	if err := pc.store.TouchProviderLastUsed(ctx, provider.ID); err != nil {
		log.Warnf("[ProviderAPI] last_used_at update for provider %d failed: %v", provider.ID, err)
	}

	c.Locals(providerLocalsKey, provider)
	return c.Next()
}

// HandleGetOrder returns the status of one of the calling provider's orders.
func (pc *ProviderAPIController) HandleGetOrder(c *fiber.Ctx) error {
	provider, ok := c.Locals(providerLocalsKey).(*models.Provider)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing provider context"})
	}

	orderID := c.Params("orderId")
	if orderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "orderId is required"})
	}

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	order, err := pc.store.FindOrderByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, payments.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Unknown order"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load order"})
	}

	// Providers only ever see their own orders.
	if order.ProviderID == nil || *order.ProviderID != provider.ID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Unknown order"})
	}

	response := fiber.Map{
		"orderId":   order.OrderRef(),
		"status":    order.Status,
		"total":     order.Total,
		"createdAt": order.CreatedAt.UTC().Format(time.RFC3339),
		"updatedAt": order.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if order.ExternalID != "" {
		response["externalId"] = order.ExternalID
	}
	if service, err := pc.store.GetService(ctx, order.ServiceID); err == nil {
		response["serviceName"] = service.Title
	}

	return c.JSON(response)
}
