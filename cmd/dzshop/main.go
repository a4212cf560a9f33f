package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"

	"github.com/dztechshop/dzshop/app/controllers"
	"github.com/dztechshop/dzshop/app/repository"
	"github.com/dztechshop/dzshop/internal/pkg/cache"
	"github.com/dztechshop/dzshop/internal/pkg/database"
	"github.com/dztechshop/dzshop/internal/pkg/env"
	"github.com/dztechshop/dzshop/internal/pkg/gateway"
	"github.com/dztechshop/dzshop/internal/pkg/jobqueue"
	"github.com/dztechshop/dzshop/internal/pkg/payments"
	"github.com/dztechshop/dzshop/internal/pkg/router"
)

func main() {
	app, queue := NewApplication()

	// Graceful shutdown: drain in-flight notification jobs before exit.
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-done
		queue.Stop()
		_ = app.Shutdown()
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "8080")))
	log.Fatal(err)
}

func NewApplication() (*fiber.App, *jobqueue.Queue) {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	db := database.GetDB()
	repository.InitializeFactory(db)

	// Payment reconciliation wiring: store -> reconciler -> queue-backed
	// webhook dispatch.
	store := payments.NewStore(db)
	queue := jobqueue.NewQueue(nil, 4)
	queue.Register(jobqueue.JobTypeProviderNotification, jobqueue.NotificationProcessor(payments.NewNotifier()))
	queue.Start()

	reconciler := payments.NewReconciler(store, jobqueue.NewDispatcher(queue))
	stripeGateway := gateway.NewStripeGatewayFromEnv()

	basePath := findBasePath()

	app := fiber.New(fiber.Config{
		Views: html.New(basePath+"views", ".html"),
	})

	app.Use(favicon.New(favicon.Config{
		File:         basePath + "public/assets/icons/favicon.ico",
		URL:          "/favicon.ico",
		CacheControl: "public, max-age=604800",
	}))

	app.Use(recover.New(), logger.New())

	app.Static("/assets", basePath+"public/assets", fiber.Static{
		CacheDuration: 15 * time.Second,
		Compress:      true,
	})

	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	router.InstallRouter(app, router.Controllers{
		Checkout:    controllers.NewCheckoutController(store, stripeGateway),
		Webhook:     controllers.NewWebhookController(reconciler),
		ProviderAPI: controllers.NewProviderAPIController(store),
	})

	return app, queue
}

// findBasePath locates the project root so the binary works from the root and
// from cmd/dzshop.
func findBasePath() string {
	basePaths := []string{
		"./",
		"../../",
		"../../../",
	}
	for _, path := range basePaths {
		if _, err := os.Stat(path + "views"); !os.IsNotExist(err) {
			return path
		}
	}
	panic("Could not find project root directory")
}
