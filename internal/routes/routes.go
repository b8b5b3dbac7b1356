package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bluebook-nepal/bluebook-backend/internal/gateway"
	"github.com/bluebook-nepal/bluebook-backend/internal/handlers"
	"github.com/bluebook-nepal/bluebook-backend/internal/middleware"
	"github.com/bluebook-nepal/bluebook-backend/internal/services"
	"github.com/bluebook-nepal/bluebook-backend/internal/storage"
)

// SetupRoutes configures all API routes. demo is non-nil only when the
// demo gateway is selected; it enables the test-only completion endpoint.
func SetupRoutes(app *fiber.App, store storage.Store, workflow *services.PaymentWorkflow, demo *gateway.DemoGateway) {
	healthHandler := handlers.NewHealthHandler("1.0.0")
	paymentHandler := handlers.NewPaymentHandler(workflow, demo)
	vehicleHandler := handlers.NewVehicleHandler(store)

	app.Get("/health", healthHandler.Check)

	api := app.Group("/api", middleware.RequireAuth(store))

	// Vehicle (bluebook) routes
	vehicles := api.Group("/vehicles")
	vehicles.Post("/", vehicleHandler.Register)
	vehicles.Get("/", vehicleHandler.ListMine)
	vehicles.Get("/:id", vehicleHandler.Get)

	// Payment routes
	payment := api.Group("/payment")
	payment.Post("/verify-otp", paymentHandler.VerifyOTP)
	payment.Post("/verify/:id", paymentHandler.VerifyTransaction)
	payment.Post("/demo/complete", paymentHandler.CompleteDemoPayment)
	payment.Post("/:id", paymentHandler.PayTax)

	// Admin routes
	admin := api.Group("/admin", middleware.RequireAdmin())
	admin.Get("/vehicles/pending", vehicleHandler.ListPending)
	admin.Put("/vehicles/:id/status", vehicleHandler.UpdateStatus)
}
