package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/tenancy-service/pkg/database"
	"github.com/suteetoe/tenancy-service/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HealthCheck reports whether the service and its database are reachable
func HealthCheck(db *gorm.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := database.Ping(db); err != nil {
			logger.FromContext(c).Error("Health check failed", zap.Error(err))
			return c.JSON(http.StatusServiceUnavailable, echo.Map{
				"status":   "unhealthy",
				"service":  "tenancy-service",
				"database": "unreachable",
			})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"status":   "healthy",
			"service":  "tenancy-service",
			"database": "ok",
		})
	}
}
