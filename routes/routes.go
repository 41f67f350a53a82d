package routes

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"formatrack_backend/handlers"
	"formatrack_backend/middleware"
	"formatrack_backend/receipt"
	"formatrack_backend/store"

	"github.com/gin-gonic/gin"
)

type Options struct {
	Store    store.Store
	Tokens   *middleware.TokenService
	Receipts receipt.Renderer
	Now      handlers.Clock
	// StaticDir optionally holds the built admin SPA.
	StaticDir string
}

// SetupRoutes configures all the routes for the application
func SetupRoutes(r *gin.Engine, opts Options) {
	st := opts.Store

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(st, opts.Tokens)
	userHandler := handlers.NewUserHandler(st)
	clientHandler := handlers.NewClientHandler(st, opts.Now)
	courseHandler := handlers.NewCourseHandler(st)
	attendanceHandler := handlers.NewAttendanceHandler(st, opts.Now)
	paymentHandler := handlers.NewPaymentHandler(st, opts.Receipts, opts.Now)
	incidentHandler := handlers.NewIncidentHandler(st)
	dashboardHandler := handlers.NewDashboardHandler(st, opts.Now)
	healthHandler := handlers.NewHealthHandler(st)

	api := r.Group("/api")

	// Public routes
	api.POST("/auth/login", authHandler.Login)
	api.GET("/health", healthHandler.HealthCheck)

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(opts.Tokens))
	{
		protected.GET("/auth/me", authHandler.Me)

		// Client routes
		protected.GET("/clients", clientHandler.GetClients)
		protected.POST("/clients", clientHandler.CreateClient)
		protected.GET("/clients/:id", clientHandler.GetClient)
		protected.PUT("/clients/:id", clientHandler.UpdateClient)
		protected.DELETE("/clients/:id", clientHandler.DeleteClient)
		protected.GET("/clients/:id/paiements", clientHandler.GetClientPayments)
		protected.GET("/clients/:id/absences-retards", clientHandler.GetClientIncidents)

		// Course routes
		protected.GET("/cours", courseHandler.GetCourses)
		protected.POST("/cours", courseHandler.CreateCourse)
		protected.GET("/cours/:id", courseHandler.GetCourse)
		protected.PUT("/cours/:id", courseHandler.UpdateCourse)
		protected.DELETE("/cours/:id", courseHandler.DeleteCourse)
		protected.GET("/cours/:id/clients", courseHandler.GetCourseClients)

		// Attendance routes
		protected.GET("/presences", attendanceHandler.GetAttendances)
		protected.POST("/presences", attendanceHandler.CreateAttendance)

		// Payment routes
		protected.GET("/paiements", paymentHandler.GetPayments)
		protected.POST("/paiements", paymentHandler.CreatePayment)
		protected.GET("/paiements/:id/recu", paymentHandler.GetReceipt)

		// Absence and lateness routes
		protected.GET("/absences-retards", incidentHandler.GetIncidents)
		protected.DELETE("/absences-retards/:id", incidentHandler.DeleteIncident)

		// User routes
		protected.GET("/users", userHandler.GetUsers)
		protected.POST("/users", userHandler.CreateUser)
		protected.DELETE("/users/:id", userHandler.DeleteUser)

		protected.GET("/dashboard/stats", dashboardHandler.GetStats)
	}

	r.NoRoute(spaFallback(opts.StaticDir))
}

// spaFallback serves files of the SPA build and index.html for client-side
// routes. Unknown /api paths stay JSON 404s.
func spaFallback(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if dir == "" || path == "/api" || strings.HasPrefix(path, "/api/") ||
			(c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Route non trouvée"})
			return
		}

		file := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+path)))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}
		c.File(filepath.Join(dir, "index.html"))
	}
}
