package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	"ziraweb/automation"
	controller "ziraweb/controllers"
	"ziraweb/mailer"
	"ziraweb/middleware"
)

// SetupRoutes wires the public form endpoints and the admin API.
func SetupRoutes(app *fiber.App, db *gorm.DB, pipeline *automation.Pipeline, provider mailer.Provider) {
	// Setup status and health check endpoints
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "running",
			"version": "1.0.0",
		})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	setupFormRoutes(app, db, pipeline)
	setupAdminRoutes(app, db, pipeline, provider)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}

func setupFormRoutes(app *fiber.App, db *gorm.DB, pipeline *automation.Pipeline) {
	formController := controller.NewFormController(db, pipeline,
		log.New(os.Stdout, "FORMS: ", log.Ldate|log.Ltime|log.Lshortfile))

	// Public, origin-allowlisted and rate limited per caller.
	forms := app.Group("/api/v1/forms",
		middleware.FormRateLimiter(),
		logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	forms.Post("/contact", formController.SubmitContact)
	forms.Post("/career", formController.SubmitCareer)
	forms.Post("/demo", formController.SubmitDemo)
}

func setupAdminRoutes(app *fiber.App, db *gorm.DB, pipeline *automation.Pipeline, provider mailer.Provider) {
	automationController := controller.NewAutomationController(db, pipeline,
		log.New(os.Stdout, "AUTOMATION: ", log.LstdFlags))
	templateController := controller.NewTemplateController(db,
		log.New(os.Stdout, "TEMPLATES: ", log.LstdFlags))
	senderController := controller.NewSenderController(db, provider,
		log.New(os.Stdout, "SENDERS: ", log.LstdFlags))
	submissionController := controller.NewSubmissionController(db,
		log.New(os.Stdout, "SUBMISSIONS: ", log.LstdFlags))
	eventController := controller.NewEventController(db,
		log.New(os.Stdout, "EVENTS: ", log.LstdFlags))
	settingsController := controller.NewSettingsController(db,
		log.New(os.Stdout, "SETTINGS: ", log.LstdFlags))

	// Public auth endpoints (no authentication required)
	auth := app.Group("/api/v1/admin/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	auth.Post("/login", controller.Login)
	auth.Post("/refresh", controller.RefreshToken)

	// Protected admin API
	admin := app.Group("/api/v1/admin", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	admin.Get("/auth/me", controller.GetCurrentAdmin)
	admin.Post("/auth/change-password", controller.ChangePassword)

	rules := admin.Group("/rules")
	rules.Post("/", automationController.CreateRule)
	rules.Get("/", automationController.GetRules)
	rules.Get("/:id", automationController.GetRule)
	rules.Put("/:id", automationController.UpdateRule)
	rules.Delete("/:id", automationController.DeleteRule)
	rules.Post("/:id/test", automationController.TestRule)

	templates := admin.Group("/templates")
	templates.Post("/", templateController.CreateTemplate)
	templates.Get("/", templateController.GetTemplates)
	templates.Get("/:id", templateController.GetTemplate)
	templates.Put("/:id", templateController.UpdateTemplate)
	templates.Delete("/:id", templateController.DeleteTemplate)
	templates.Post("/:id/preview", templateController.PreviewTemplate)

	senders := admin.Group("/senders")
	senders.Post("/", senderController.CreateSender)
	senders.Get("/", senderController.GetSenders)
	senders.Get("/:id", senderController.GetSender)
	senders.Put("/:id", senderController.UpdateSender)
	senders.Delete("/:id", senderController.DeleteSender)
	senders.Post("/:id/verify", senderController.VerifySender)

	submissions := admin.Group("/submissions")
	submissions.Get("/", submissionController.GetSubmissions)
	submissions.Get("/:id", submissionController.GetSubmission)

	events := admin.Group("/events")
	events.Get("/", eventController.GetEvents)
	events.Get("/stats", eventController.GetEventStats)

	settings := admin.Group("/settings")
	settings.Get("/", settingsController.GetSettings)
	settings.Get("/:key", settingsController.GetSetting)
	settings.Put("/:key", settingsController.PutSetting)
	settings.Delete("/:key", settingsController.DeleteSetting)

	// WebSocket feed of new email events for the dashboard
	app.Get("/api/v1/admin/events/live", websocket.New(controller.HandleEventFeedWS(db)))

	log.Println("API routes initialized successfully")
}
