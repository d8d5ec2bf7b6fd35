package router

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkruczek/course-system/config"
	"github.com/pkruczek/course-system/database"
	"github.com/pkruczek/course-system/handlers"
	assignment_handlers "github.com/pkruczek/course-system/handlers/assignment"
	auth_handlers "github.com/pkruczek/course-system/handlers/auth"
	course_handlers "github.com/pkruczek/course-system/handlers/course"
	enrollment_handlers "github.com/pkruczek/course-system/handlers/enrollment"
	notification_handlers "github.com/pkruczek/course-system/handlers/notification"
	submission_handlers "github.com/pkruczek/course-system/handlers/submission"
	"github.com/pkruczek/course-system/model"
	"github.com/pkruczek/course-system/services"
	"github.com/pkruczek/course-system/services/storage"
	"github.com/pkruczek/course-system/utils/auth"
	"github.com/pkruczek/course-system/utils/cache"
	"github.com/pkruczek/course-system/utils/middleware"
)

// SetupRoutes wires middleware, services and handlers onto the fiber app.
func SetupRoutes(app *fiber.App, store *database.GORMStore, env *config.EnviornmentVariable, artifactStore storage.ArtifactStore) {
	if env.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := env.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "course-system-api"
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        env.JWT_SECRET,
		Expiry:        24 * time.Hour,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        jwtIssuer,
	})

	db := store.DB()

	// Redis is only used for brute force protection; the API works without it.
	redisURL := env.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}
	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Services
	courseService := services.NewCourseService(db)
	enrollmentService := services.NewEnrollmentService(db)
	notificationService := services.NewNotificationService(db)
	assignmentService := services.NewAssignmentService(db, notificationService)
	submissionService := services.NewSubmissionService(db, artifactStore)

	// Handlers
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)
	courseHandler := course_handlers.NewCourseHandler(courseService)
	enrollmentHandler := enrollment_handlers.NewEnrollmentHandler(enrollmentService)
	assignmentHandler := assignment_handlers.NewAssignmentHandler(assignmentService)
	submissionHandler := submission_handlers.NewSubmissionHandler(submissionService)
	notificationHandler := notification_handlers.NewNotificationHandler(notificationService)

	// Apply security middleware
	allowedOrigins := env.ALLOWED_ORIGINS
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,
		RateLimitWindow:   1 * time.Minute,
	})

	// Health check endpoint (public)
	app.Get("/ping", handlers.HandleCheckHealth(store))

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Protected auth routes
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)

	// Profile routes (protected)
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Get("/", authHandler.Profile)

	// Course routes (all protected; services re-check ownership)
	courses := api.Group("/courses", authMiddleware.Required())
	courses.Get("/", courseHandler.List)
	courses.Post("/", authMiddleware.RequireRole(model.RoleTeacher), courseHandler.Create)
	courses.Get("/:id", courseHandler.Get)
	courses.Put("/:id", authMiddleware.RequireRole(model.RoleTeacher, model.RoleAdmin), courseHandler.Update)
	courses.Delete("/:id", authMiddleware.RequireRole(model.RoleTeacher, model.RoleAdmin), courseHandler.Delete)

	// Enrollment routes
	courses.Post("/:courseId/enrollments", authMiddleware.RequireRole(model.RoleStudent), enrollmentHandler.Request)
	courses.Get("/:courseId/enrollments", authMiddleware.RequireRole(model.RoleTeacher), enrollmentHandler.ListForCourse)

	enrollments := api.Group("/enrollments", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleTeacher))
	enrollments.Post("/:id/approve", enrollmentHandler.Approve)
	enrollments.Post("/:id/reject", enrollmentHandler.Reject)

	// Assignment routes
	courses.Get("/:courseId/assignments", assignmentHandler.ListForCourse)
	courses.Post("/:courseId/assignments", authMiddleware.RequireRole(model.RoleTeacher), assignmentHandler.Create)

	assignments := api.Group("/assignments", authMiddleware.Required())
	assignments.Put("/:id", authMiddleware.RequireRole(model.RoleTeacher), assignmentHandler.Update)
	assignments.Delete("/:id", authMiddleware.RequireRole(model.RoleTeacher), assignmentHandler.Delete)
	assignments.Post("/:assignmentId/submissions", authMiddleware.RequireRole(model.RoleStudent), submissionHandler.Create)

	// Submission routes
	submissions := api.Group("/submissions", authMiddleware.Required())
	submissions.Get("/", authMiddleware.RequireRole(model.RoleTeacher), submissionHandler.List)
	submissions.Get("/:id/file", submissionHandler.Download)
	submissions.Put("/:id/grade", authMiddleware.RequireRole(model.RoleTeacher), submissionHandler.Grade)

	// Notification routes
	notifications := api.Group("/notifications", authMiddleware.Required())
	notifications.Get("/", notificationHandler.ListMine)
}
