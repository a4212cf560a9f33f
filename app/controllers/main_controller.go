package controllers

import (
	"html/template"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/dztechshop/dzshop/app/repository"
	"github.com/dztechshop/dzshop/internal/pkg/env"
)

// RenderHome renders the services index.
func RenderHome(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetServiceRepository()
	services, err := repo.GetActive()
	if err != nil {
		log.Errorf("[Main] loading services failed: %v", err)
		return fiber.ErrInternalServerError
	}

	return c.Render("index", fiber.Map{
		"Title":             "DZTech Shop",
		"Services":          services,
		"StripePublicKey":   env.GetEnv("STRIPE_PUBLISHABLE_KEY", ""),
		"IsDevelopmentMode": env.IsDev(),
	})
}

// RenderService renders a single service's detail and checkout page.
func RenderService(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetServiceRepository()
	service, err := repo.GetBySlug(c.Params("slug"))
	if err != nil {
		return fiber.ErrNotFound
	}

	return c.Render("service", fiber.Map{
		"Title":             service.Title,
		"Service":           service,
		"StripePublicKey":   env.GetEnv("STRIPE_PUBLISHABLE_KEY", ""),
		"IsDevelopmentMode": env.IsDev(),
	})
}

// RenderPage renders a CMS page by slug.
func RenderPage(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetPageRepository()
	page, err := repo.GetBySlug(c.Params("slug"))
	if err != nil {
		return fiber.ErrNotFound
	}

	return c.Render("page", fiber.Map{
		"Title":           page.HeadTitle(),
		"MetaDescription": page.MetaDescription,
		"Page":            page,
		// Pages hold trusted, admin-authored HTML.
		"Content": template.HTML(page.Content),
	})
}
