package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dztechshop/dzshop/app/controllers"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	app.Get("/", controllers.RenderHome)
	app.Get("/services/:slug", controllers.RenderService)

	// Catch-all for CMS pages; must stay last so it cannot shadow other
	// routes.
	app.Get("/:slug", controllers.RenderPage)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
