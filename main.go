package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/bluebook-nepal/bluebook-backend/database"
	"github.com/bluebook-nepal/bluebook-backend/internal/gateway"
	"github.com/bluebook-nepal/bluebook-backend/internal/jobs"
	"github.com/bluebook-nepal/bluebook-backend/internal/routes"
	"github.com/bluebook-nepal/bluebook-backend/internal/services"
	"github.com/bluebook-nepal/bluebook-backend/internal/storage"
)

func main() {
	// Load .env file for local development
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found - checking environment variables")
	}

	// Initialize storage
	var store storage.Store

	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		log.Println("🔄 Running database migrations...")
		if err := database.Migrate(database.DB); err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
		log.Println("✅ Using PostgreSQL database storage")
	}

	// Notification channels: email is the primary OTP channel, SMS is
	// added when Twilio is configured. Both are best-effort.
	var channels services.MultiNotifier
	if mail, err := services.NewMailService(); err != nil {
		log.Println("⚠️  Mail service not configured - OTP emails will be skipped")
	} else {
		channels = append(channels, mail)
		log.Println("✅ Mail service initialized")
	}
	if sms, err := services.NewSMSService(); err != nil {
		log.Println("⚠️  Twilio not configured - SMS notifications disabled")
	} else {
		channels = append(channels, sms)
		log.Println("✅ Twilio SMS service initialized")
	}
	var notifier services.Notifier = channels
	if len(channels) == 0 {
		notifier = services.NoopNotifier{}
	}

	// Select the payment gateway (demo or live Khalti)
	gw := gateway.FromEnv()
	demo, _ := gw.(*gateway.DemoGateway)

	workflow := services.NewPaymentWorkflow(store, gw, notifier)

	// Start scheduled maintenance jobs
	maintenanceJob := jobs.NewMaintenanceJob(store, notifier)
	maintenanceJob.Start()

	log.Println("✅ All services initialized and scheduled jobs started")

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "Bluebook Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"message": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Root endpoint with service status
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "Bluebook Backend API",
			"version": "1.0.0",
			"status":  "healthy",
			"storage": getStorageType(),
			"gateway": getGatewayType(demo != nil),
		})
	})

	// Setup routes
	routes.SetupRoutes(app, store, workflow, demo)

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "9005"
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		log.Println("⏹️  Stopping maintenance jobs...")
		maintenanceJob.Stop()
		log.Println("⏹️  Shutting down server...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 Bluebook Backend starting on port %s", port)
	log.Printf("📊 Storage: %s", getStorageType())
	log.Printf("💳 Gateway: %s", getGatewayType(demo != nil))
	log.Println("========================================")

	log.Fatal(app.Listen(":" + port))
}

func getStorageType() string {
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}

func getGatewayType(demo bool) string {
	if demo {
		return "Demo (simulated)"
	}
	return "Khalti (live)"
}
