package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/tenancy-service/internal/apperror"
	"github.com/suteetoe/tenancy-service/pkg/logger"
	"go.uber.org/zap"
)

// Response is the envelope every endpoint returns
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respondOK(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data})
}

// respondError writes err in the envelope. Internal failures are logged and
// reported with a generic message.
func respondError(c echo.Context, err error) error {
	appErr := apperror.As(err)
	status := appErr.HTTPStatus()
	log := logger.FromContext(c)

	if appErr.Kind == apperror.KindInternal {
		log.Error("Request failed",
			zap.String("message", appErr.Message),
			zap.Error(appErr.Err))
		message := "Internal server error"
		if appErr.Public {
			message = appErr.Message
		}
		return c.JSON(status, Response{Success: false, Message: message})
	}

	log.Info("Request rejected",
		zap.String("kind", string(appErr.Kind)),
		zap.String("message", appErr.Message))
	return c.JSON(status, Response{Success: false, Message: appErr.Message})
}

func invalidBody(c echo.Context, err error) error {
	logger.FromContext(c).Warn("Invalid request data", zap.Error(err))
	return c.JSON(http.StatusBadRequest, Response{Success: false, Message: "Invalid request data"})
}
