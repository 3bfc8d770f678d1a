package routes

import (
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/controllers"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/middleware"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/services"
	"github.com/Bilal-pasha/ArabiaIslamia-hub-sub001/services/websocket"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, wsHub *websocket.Hub, archiveService *services.LogArchiveService) {
	authController := &controllers.AuthController{}
	usersController := &controllers.UsersController{}
	admissionsController := controllers.NewAdmissionsController()
	renewalsController := controllers.NewRenewalsController()
	studentsController := &controllers.StudentsController{}
	catalogController := &controllers.CatalogController{}
	notificationsController := &controllers.NotificationsController{}
	reportsController := controllers.NewReportsController()
	dashboardController := controllers.NewDashboardController(wsHub)
	logsController := controllers.NewLogsController(archiveService)
	healthController := controllers.NewHealthController(services.NewHealthService("", ""))
	wsController := controllers.NewWebSocketController(wsHub)

	documentsController, err := controllers.NewDocumentsController()
	if err != nil {
		logrus.WithError(err).Warn("Document storage unavailable, upload endpoints disabled")
	}

	// Health (public)
	app.Get("/health", healthController.GetHealthStatus)

	api := app.Group("/api")

	// Public routes (no authentication required)
	public := api.Group("/public")

	// Reference data for the intake forms
	public.Get("/reference", catalogController.ListReferenceData)

	// Admission intake and status lookup
	public.Post("/admissions", admissionsController.Submit)
	public.Get("/admissions/:number", admissionsController.GetByNumber)

	// Renewal intake
	public.Get("/renewals/student/:roll", renewalsController.FindStudentByRoll)
	public.Post("/renewals", renewalsController.Submit)

	// Document upload for intake attachments
	if documentsController != nil {
		public.Post("/documents", documentsController.Upload)
	}

	// Authentication
	auth := api.Group("/auth")
	auth.Post("/login", authController.Login)
	auth.Get("/profile", middleware.JWTMiddleware(), authController.GetProfile)

	// Protected routes (require authentication)
	protected := api.Group("/", middleware.JWTMiddleware(), middleware.LogActivityMiddleware())

	protected.Post("/auth/logout", authController.Logout)
	protected.Get("/profile", authController.GetProfile)
	protected.Put("/profile/password", authController.ChangePassword)

	// Admission workflow (registrar and above)
	admissions := protected.Group("/admissions", middleware.RequireRegistrarOrAbove())
	admissions.Get("/", admissionsController.List)
	admissions.Get("/:id", admissionsController.Get)
	admissions.Put("/:id/test-result", admissionsController.RecordTestResult)
	admissions.Post("/:id/written-admit", admissionsController.MarkWrittenAdmitEligible)
	admissions.Post("/:id/decision", middleware.RequireOwnerOrAdmin(), admissionsController.Decide)
	admissions.Post("/:id/enroll", middleware.RequireOwnerOrAdmin(), admissionsController.FullyApprove)

	// Renewal workflow
	renewals := protected.Group("/renewals", middleware.RequireRegistrarOrAbove())
	renewals.Get("/", renewalsController.List)
	renewals.Get("/:id", renewalsController.Get)
	renewals.Post("/:id/decision", middleware.RequireOwnerOrAdmin(), renewalsController.Decide)

	// Student records
	students := protected.Group("/students", middleware.RequireRegistrarOrAbove())
	students.Get("/", studentsController.List)
	students.Get("/roll/:roll", studentsController.FindByRoll)
	students.Get("/:id", studentsController.Get)

	// Reference catalog management (owner/admin)
	catalog := protected.Group("/catalog", middleware.RequireOwnerOrAdmin())
	catalog.Post("/sessions", catalogController.CreateSession)
	catalog.Put("/sessions/:id", catalogController.UpdateSession)
	catalog.Post("/classes", catalogController.CreateClass)
	catalog.Put("/classes/:id", catalogController.UpdateClass)
	catalog.Post("/sections", catalogController.CreateSection)
	catalog.Delete("/sections/:id", catalogController.DeleteSection)

	// Document presign for operators viewing attachments
	if documentsController != nil {
		protected.Get("/documents/presign", middleware.RequireRegistrarOrAbove(), documentsController.Presign)
	}

	// Excel exports
	reports := protected.Group("/reports", middleware.RequireRegistrarOrAbove())
	reports.Get("/admissions.xlsx", reportsController.ExportAdmissions)
	reports.Get("/students.xlsx", reportsController.ExportStudents)

	// Dashboard
	protected.Get("/dashboard/stats", middleware.RequireRegistrarOrAbove(), dashboardController.GetStats)

	// Outbound notification audit
	protected.Get("/notifications", middleware.RequireRegistrarOrAbove(), notificationsController.List)

	// Operator accounts (owner/admin)
	users := protected.Group("/users", middleware.RequireOwnerOrAdmin())
	users.Get("/", usersController.List)
	users.Get("/:id", usersController.Get)
	users.Post("/", authController.Register)
	users.Put("/:id", usersController.Update)
	users.Delete("/:id", usersController.Delete)

	// Activity logs and archives (owner/admin)
	logs := protected.Group("/logs", middleware.RequireOwnerOrAdmin())
	logs.Get("/", logsController.List)
	logs.Get("/archives", logsController.ListArchives)
	logs.Get("/archives/:id/download", logsController.DownloadArchive)

	// WebSocket stats (owner/admin)
	protected.Get("/ws/stats", middleware.RequireOwnerOrAdmin(), wsController.GetWebSocketStats)

	// WebSocket upgrade: token validated inside the handler since browsers
	// cannot set headers on WebSocket connections
	app.Use("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", wsController.WebSocketHandler())
}
