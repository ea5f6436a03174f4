package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/suteetoe/tenancy-service/internal/middleware"
	"github.com/suteetoe/tenancy-service/prometheus"
	"gorm.io/gorm"
)

// Handlers groups the endpoint handlers served by the API
type Handlers struct {
	Auth       *AuthHandler
	Users      *UserHandler
	Complaints *ComplaintHandler
	Properties *PropertyHandler
}

// RegisterRoutes mounts every endpoint on e. Complaint routes resolve the
// caller identity and scope first.
func RegisterRoutes(e *echo.Echo, db *gorm.DB, h Handlers, auth *middleware.Authenticator) {
	// Public routes
	e.GET("/health", HealthCheck(db))
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))

	authGroup := e.Group("/auth")
	authGroup.POST("/send-otp", h.Auth.SendOTP)
	authGroup.POST("/verify-otp", h.Auth.VerifyOTP)
	authGroup.POST("/supervisor-token", h.Auth.SupervisorToken)

	users := e.Group("/users")
	users.POST("", h.Users.CreateUser)
	users.GET("", h.Users.ListUsers)
	users.PUT("/:id", h.Users.UpdateUser)
	users.DELETE("/:id", h.Users.DeleteUser)
	users.GET("/:id/details", h.Users.GetUserDetails)

	complaints := e.Group("/complaints", auth.Identify)
	complaints.POST("", h.Complaints.CreateComplaint, middleware.RequireIdentity)
	complaints.GET("", h.Complaints.ListComplaints)
	complaints.GET("/:id", h.Complaints.GetComplaint)
	complaints.PUT("/:id/update", h.Complaints.UpdateComplaint)
	complaints.PUT("/:id/close", h.Complaints.CloseComplaint)
	complaints.POST("/:id/cancel", h.Complaints.CancelComplaint)

	e.GET("/properties", h.Properties.ListProperties)
	e.GET("/dashboard/stats", h.Properties.DashboardStats)
}
