package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dztechshop/dzshop/app/controllers"
)

// Router installs a group of routes on the app.
type Router interface {
	InstallRouter(app *fiber.App)
}

// Controllers bundles the handler sets the routers wire up.
type Controllers struct {
	Checkout    *controllers.CheckoutController
	Webhook     *controllers.WebhookController
	ProviderAPI *controllers.ProviderAPIController
}

// InstallRouter registers the API surface first so the public site's
// catch-all page route cannot shadow API paths.
func InstallRouter(app *fiber.App, c Controllers) {
	setup(app, NewApiRouter(c), NewHttpRouter())
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
