package routes

import (
	"log"
	"os"

	controller "nurtura/controllers"
	"nurtura/middleware"
	"nurtura/nurture"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, nurtureService *nurture.Service) {
	apiLogger := log.New(os.Stdout, "API: ", log.Ldate|log.Ltime|log.Lshortfile)

	nurtureController := controller.NewNurtureController(nurtureService, apiLogger)
	sequenceController := controller.NewSequenceController(db, apiLogger)
	leadController := controller.NewLeadController(db, nurtureService, apiLogger)
	channelConfigController := controller.NewChannelConfigController(db, apiLogger)

	// Nurture routes group with logging middleware
	nurtureGroup := app.Group("/nurture", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}), middleware.Protected())

	nurtureGroup.Post("/enroll", nurtureController.Enroll)
	nurtureGroup.Post("/cancel/:id", nurtureController.CancelEnrollments)
	nurtureGroup.Post("/process", middleware.ProcessRateLimiter(), nurtureController.ProcessDueTasks)
	nurtureGroup.Post("/sequences/default", nurtureController.EnsureDefaultSequence)
	nurtureGroup.Get("/enrollments/:id", nurtureController.GetEnrollment)

	// Sequence catalog routes (protected)
	sequences := app.Group("/sequences", middleware.Protected())
	sequences.Post("/", sequenceController.CreateSequence)
	sequences.Get("/", sequenceController.ListSequences)
	sequences.Get("/:id", sequenceController.GetSequence)

	// Lead routes (protected)
	leads := app.Group("/leads", middleware.Protected())
	leads.Post("/", leadController.CreateLead)
	leads.Get("/", leadController.ListLeads)
	leads.Get("/:id", leadController.GetLead)
	leads.Post("/:id/unsubscribe", leadController.UnsubscribeLead)
	leads.Get("/:id/activities", leadController.GetLeadActivities)

	// Channel configuration routes (protected)
	channels := app.Group("/channels", middleware.Protected())
	channels.Put("/config", channelConfigController.UpsertChannelConfig)
	channels.Get("/config", channelConfigController.ListChannelConfigs)

	apiLogger.Println("Routes initialized successfully")
}
