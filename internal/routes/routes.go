package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/calderon/shopdesk-api/internal/handlers"
	"github.com/calderon/shopdesk-api/internal/middleware"
)

func Setup(app *fiber.App) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handlers.Register)
	auth.Post("/login", handlers.Login)

	protected := api.Group("/", middleware.Protected())

	protected.Get("/me", handlers.GetMe)

	// Status board
	protected.Get("/board", handlers.GetBoard)

	appointments := protected.Group("/appointments")
	appointments.Get("/", handlers.GetAppointments)
	appointments.Post("/", handlers.CreateAppointment)
	appointments.Get("/export", handlers.ExportAppointments)
	appointments.Get("/:id", handlers.GetAppointment)
	appointments.Patch("/:id", handlers.UpdateAppointment)
	appointments.Delete("/:id", handlers.DeleteAppointment)
	appointments.Patch("/:id/status", handlers.PatchAppointmentStatus)

	// Service line items
	appointments.Post("/:id/services", handlers.CreateServiceItem)
	appointments.Patch("/:id/services/:serviceId", handlers.UpdateServiceItem)
	appointments.Delete("/:id/services/:serviceId", handlers.DeleteServiceItem)

	// Customer messaging
	appointments.Get("/:id/messages", handlers.GetMessages)
	appointments.Post("/:id/messages", handlers.CreateMessage)
	appointments.Delete("/:id/messages/:messageId", handlers.DeleteMessage)

	customers := protected.Group("/customers")
	customers.Get("/", handlers.GetCustomers)
	customers.Post("/", handlers.CreateCustomer)
	customers.Get("/:id", handlers.GetCustomer)
	customers.Patch("/:id", handlers.UpdateCustomer)
	customers.Get("/:id/history", handlers.GetCustomerHistory)
	customers.Post("/:id/vehicles", handlers.CreateVehicle)
	customers.Patch("/:id/vehicles/:vehicleId", handlers.UpdateVehicle)

	// Message templates
	templates := protected.Group("/templates")
	templates.Get("/", handlers.GetTemplates)
	templates.Post("/", handlers.CreateTemplate)
	templates.Patch("/:id", handlers.UpdateTemplate)
	templates.Delete("/:id", handlers.DeleteTemplate)

	// WebSocket for live board updates
	app.Use("/ws", handlers.WebSocketUpgrade())
	app.Get("/ws/board", websocket.New(handlers.HandleBoardSocket))
}
