package main

import (
	"log"
	"os"

	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/apperrors"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/config"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/database"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/database/seeders"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/middleware"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/routes"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/services"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/services/notifications"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/services/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

func init() {
	setupLogging()

	config.LoadConfig()

	database.Connect()

	if config.AppConfig.SeedOnStartup {
		seeders.SeedAll()
	}
}

func main() {
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Log maintenance: hourly Redis flush, daily S3 archiving
	logArchiveService := services.NewLogArchiveService()
	logArchiveService.StartScheduler()
	defer logArchiveService.StopScheduler()

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    int(config.AppConfig.MaxFileSize),
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(middleware.LoggerMiddleware())

	// Wire applicant notification channels and the dashboard hub before any
	// controller constructs a notifications.Service
	notifications.SetDefaultSenders(services.NewMailer(), services.NewWhatsAppMessagingService())
	notifications.SetDefaultWSHub(wsHub)

	notifService := notifications.NewService()
	if config.AppConfig.UseRedisNotifications {
		stopNotif := make(chan struct{})
		defer close(stopNotif)
		notifService.StartWorker(stopNotif)
	}
	redispatchCron := notifService.StartRedispatcher()
	defer redispatchCron.Stop()

	routes.SetupRoutes(app, wsHub, logArchiveService)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":  "Route not found",
			"path":   c.Path(),
			"method": c.Method(),
		})
	})

	addr := ":" + config.AppConfig.Port
	log.Printf("Server starting on port %s", config.AppConfig.Port)
	log.Printf("Environment: %s", config.AppConfig.AppEnv)

	if err := app.Listen(addr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// setupLogging configures the logging system
func setupLogging() {
	if err := os.MkdirAll("logs", 0755); err != nil {
		log.Printf("Warning: Could not create logs directory: %v", err)
	}

	logrus.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if os.Getenv("APP_ENV") == "development" || os.Getenv("APP_ENV") == "" {
		logrus.SetOutput(os.Stdout)
	} else {
		file, err := os.OpenFile("logs/app.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			logrus.SetOutput(file)
		}
	}
}

// customErrorHandler handles errors that escape route handlers
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	} else if apperrors.IsDomain(err) {
		code = apperrors.HTTPStatus(err)
		message = err.Error()
	}

	logrus.WithFields(logrus.Fields{
		"error":  err.Error(),
		"path":   c.Path(),
		"method": c.Method(),
		"ip":     c.IP(),
		"status": code,
	}).Error("Request error")

	return c.Status(code).JSON(fiber.Map{
		"error":  message,
		"code":   code,
		"path":   c.Path(),
		"method": c.Method(),
	})
}
