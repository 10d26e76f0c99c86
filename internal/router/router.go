package router

import (
	"net/http"
	"time"

	"github.com/aulaplay/aulaplay-backend/internal/config"
	"github.com/aulaplay/aulaplay-backend/internal/handler"
	"github.com/aulaplay/aulaplay-backend/internal/middleware"
	"github.com/aulaplay/aulaplay-backend/internal/model"
	"github.com/aulaplay/aulaplay-backend/internal/response"
	"github.com/aulaplay/aulaplay-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth          *handler.AuthHandler
	StudentPortal *handler.StudentPortalHandler
	StudentMgmt   *handler.StudentManagementHandler
	Activity      *handler.ActivityHandler
	Subject       *handler.SubjectHandler
	WS            *handler.WSHandler
	System        *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/student/login", handlers.Auth.StudentLogin)
		auth.POST("/staff/login", handlers.Auth.StaffLogin)

		// Authenticated profile routes
		auth.POST("/student/logout", middleware.RequireStudentJWT(authService), handlers.Auth.StudentLogout)
		auth.GET("/student/me", middleware.RequireStudentJWT(authService), handlers.Auth.GetStudentProfile)
		auth.GET("/staff/me", middleware.RequireStaffJWT(authService), handlers.Auth.GetStaffProfile)
	}

	// ─── 2. Student Group (JWT + Single Device) ────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		middleware.RequireStudentJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		studentAPI.GET("/activities", handlers.StudentPortal.ListActivities)
		studentAPI.GET("/activities/:activity_id/payload", handlers.StudentPortal.GetActivityPayload)
		studentAPI.POST("/activities/:activity_id/session", handlers.StudentPortal.StartSession)
		studentAPI.GET("/activities/:activity_id/session", handlers.StudentPortal.GetSessionState)
		studentAPI.DELETE("/activities/:activity_id/session", handlers.StudentPortal.AbandonSession)
		studentAPI.POST("/activities/:activity_id/session/answer", handlers.StudentPortal.RecordAnswer)
		studentAPI.POST("/activities/:activity_id/session/advance", handlers.StudentPortal.Advance)
		studentAPI.POST("/activities/:activity_id/session/retreat", handlers.StudentPortal.Retreat)
		studentAPI.POST("/activities/:activity_id/session/submit", handlers.StudentPortal.Submit)
		studentAPI.GET("/activities/:activity_id/result", handlers.StudentPortal.GetResult)
		studentAPI.GET("/results", handlers.StudentPortal.ListMyResults)
	}

	// ─── 3. WebSocket Group (Student WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStudentWSAuth(authService))
	{
		ws.GET("/student/activities/:activity_id/stream", handlers.WS.SessionStream)
	}

	// ─── 4. Staff Group (JWT + RBAC) ───────────────────────────────────
	staffAPI := router.Group("/api/v1/staff")
	staffAPI.Use(middleware.RequireStaffJWT(authService))
	{
		// Student management (admins and coordinators)
		studentsGroup := staffAPI.Group("/students")
		studentsGroup.Use(middleware.RequireRole(model.StaffRoleCoordinator))
		{
			studentsGroup.GET("", handlers.StudentMgmt.ListStudents)
			studentsGroup.POST("", handlers.StudentMgmt.CreateStudent)
			studentsGroup.PUT("/:id", handlers.StudentMgmt.UpdateStudent)
			studentsGroup.DELETE("/:id", handlers.StudentMgmt.DeleteStudent)
			studentsGroup.POST("/:id/reset-session", handlers.StudentMgmt.ResetStudentSession)
		}

		// Subjects (admins and coordinators)
		subjectsGroup := staffAPI.Group("/subjects")
		subjectsGroup.Use(middleware.RequireRole(model.StaffRoleCoordinator))
		{
			subjectsGroup.GET("", handlers.Subject.GetAll)
			subjectsGroup.POST("", handlers.Subject.Create)
			subjectsGroup.PUT("/:id", handlers.Subject.Update)
			subjectsGroup.DELETE("/:id", handlers.Subject.Delete)
		}

		// Activity authoring (teachers author their own, coordinators see all)
		activitiesGroup := staffAPI.Group("/activities")
		activitiesGroup.Use(middleware.RequireRole(model.StaffRoleTeacher, model.StaffRoleCoordinator))
		{
			activitiesGroup.GET("", handlers.Activity.List)
			activitiesGroup.POST("", handlers.Activity.Create)
			activitiesGroup.GET("/:activity_id", handlers.Activity.Get)
			activitiesGroup.PUT("/:activity_id", handlers.Activity.Update)
			activitiesGroup.DELETE("/:activity_id", handlers.Activity.Delete)
			activitiesGroup.GET("/:activity_id/questions", handlers.Activity.ListQuestions)
			activitiesGroup.POST("/:activity_id/questions", handlers.Activity.AddQuestion)
			activitiesGroup.PUT("/:activity_id/questions", handlers.Activity.ReplaceQuestions)
			activitiesGroup.POST("/:activity_id/publish", handlers.Activity.Publish)
			activitiesGroup.POST("/:activity_id/archive", handlers.Activity.Archive)
			activitiesGroup.GET("/:activity_id/results", handlers.Activity.GetResults)
		}

		// System Monitoring (admins only)
		staffAPI.GET("/system/metrics",
			middleware.RequireRole(),
			handlers.System.SystemMetricsSSE,
		)
	}

	return router
}
