package router

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"

	"github.com/dztechshop/dzshop/internal/pkg/env"
)

type ApiRouter struct {
	controllers Controllers
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	// The webhook endpoint is exempt from rate limiting: the processor
	// retries undelivered events and must never be throttled into a
	// redelivery loop.
	app.Post("/api/stripe/webhook", h.controllers.Webhook.HandleStripeWebhook)

	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        60,
		Expiration: 1 * time.Minute,
		Storage:    newLimiterStorage(),
	}))

	api.Post("/create-payment-intent", h.controllers.Checkout.HandleCreatePaymentIntent)
	api.Post("/checkout", h.controllers.Checkout.HandleCreateCheckout)

	v1 := api.Group("/v1")
	v1.Get("/verify-session", h.controllers.Checkout.HandleVerifySession)

	authed := v1.Group("/", h.controllers.ProviderAPI.RequireAPIKey)
	authed.Get("/orders/:orderId", h.controllers.ProviderAPI.HandleGetOrder)
}

func NewApiRouter(c Controllers) *ApiRouter {
	return &ApiRouter{controllers: c}
}

// newLimiterStorage backs the rate limiter with Redis so limits hold across
// instances. Database 1 keeps limiter keys out of the cache keyspace.
func newLimiterStorage() *redis.Storage {
	port, err := strconv.Atoi(env.GetEnv("CACHE_PORT", "6379"))
	if err != nil {
		port = 6379
	}
	return redis.New(redis.Config{
		Host:     env.GetEnv("CACHE_HOST", "localhost"),
		Port:     port,
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		Database: 1,
	})
}
