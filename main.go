package main

import (
	"context"
	"log"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"

	"ziraweb/automation"
	"ziraweb/config"
	"ziraweb/mailer"
	"ziraweb/middleware"
	"ziraweb/routes"
	"ziraweb/worker"
)

func main() {
	// Initialize logger
	logger := log.New(os.Stdout, "ZIRAWEB: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize error reporting
	if config.AppConfig.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.AppConfig.SentryDSN,
			Environment: config.AppConfig.Environment,
		}); err != nil {
			logger.Printf("Sentry initialization failed: %v", err)
		}
	}

	// Initialize database connection
	if err := config.ConnectDB(); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Pick the email transport: Resend API when a key is configured,
	// plain SMTP otherwise.
	var provider mailer.Provider
	if config.AppConfig.ResendAPIKey != "" {
		provider = mailer.NewResendProvider(config.AppConfig.ResendAPIKey)
	} else {
		provider = mailer.NewSMTPProvider(
			config.AppConfig.SMTPHost,
			config.AppConfig.SMTPPort,
			config.AppConfig.SMTPUsername,
			config.AppConfig.SMTPPassword,
		)
	}

	// Build the automation pipeline
	store := automation.NewGormStore(config.DB)
	pipeline := automation.NewPipeline(store, provider,
		log.New(os.Stdout, "PIPELINE: ", log.LstdFlags))

	// Create Fiber app
	app := fiber.New()

	// Add CORS middleware
	app.Use(middleware.CORS())

	// Initialize and start the delayed-dispatch worker
	dispatchWorker := worker.NewDispatchWorker(config.DB, pipeline.Dispatcher(),
		log.New(os.Stdout, "DISPATCH: ", log.LstdFlags))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dispatchWorker.Start(ctx)

	// Setup routes (includes the "/" status and "/health" endpoints)
	routes.SetupRoutes(app, config.DB, pipeline, provider)

	// Start server
	logger.Printf("🚀 Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
