package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/suteetoe/tenancy-service/internal/model"
	"github.com/suteetoe/tenancy-service/internal/service"
	"github.com/suteetoe/tenancy-service/pkg/logger"
	"github.com/suteetoe/tenancy-service/prometheus"
	"go.uber.org/zap"
)

type sendOTPRequest struct {
	Mobile string `json:"mobile" validate:"required,mobile"`
}

type verifyOTPRequest struct {
	Mobile string `json:"mobile" validate:"required"`
	OTP    string `json:"otp" validate:"required"`
}

type supervisorTokenRequest struct {
	Secret string `json:"secret" validate:"required"`
}

var (
	sendOTPMessages = validationMessages{
		"mobile.required": "Mobile number is required",
		"mobile.mobile":   "Invalid mobile number format",
	}
	verifyOTPMessages = validationMessages{
		"mobile": "Mobile number and OTP are required",
		"otp":    "Mobile number and OTP are required",
	}
	supervisorTokenMessages = validationMessages{
		"secret": "Secret is required",
	}
)

// AuthHandler serves the OTP sign in endpoints
type AuthHandler struct {
	otp         *service.OTPService
	supervisors *service.SupervisorAuth
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(otp *service.OTPService, supervisors *service.SupervisorAuth) *AuthHandler {
	return &AuthHandler{otp: otp, supervisors: supervisors}
}

// SendOTP issues a code to a registered mobile number
func (h *AuthHandler) SendOTP(c echo.Context) error {
	log := logger.FromContext(c)

	var req sendOTPRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := c.Validate(&req); err != nil {
		prometheus.RecordAuthError("invalid_mobile")
		return respondError(c, sendOTPMessages.toAppError(err))
	}

	issued, err := h.otp.Issue(c.Request().Context(), req.Mobile)
	if err != nil {
		return respondError(c, err)
	}

	log.Info("OTP sent", zap.String("mobile", issued.MaskedMobile))
	return respondOK(c, "OTP sent successfully", echo.Map{
		"mobile": issued.MaskedMobile,
	})
}

// VerifyOTP exchanges a valid code for a session token
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	log := logger.FromContext(c)

	var req verifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, verifyOTPMessages.toAppError(err))
	}

	verified, err := h.otp.Verify(c.Request().Context(), req.Mobile, req.OTP)
	if err != nil {
		prometheus.RecordAuthError("otp_rejected")
		return respondError(c, err)
	}

	log.Info("User signed in", zap.String("user_id", verified.User.ID))
	return respondOK(c, "OTP verified successfully", echo.Map{
		"token": verified.Token,
		"user": struct {
			ID       string          `json:"id"`
			Name     *string         `json:"name"`
			Mobile   string          `json:"mobile"`
			Property *model.Property `json:"property"`
		}{
			ID:       verified.User.ID,
			Name:     verified.User.Name,
			Mobile:   verified.User.Mobile,
			Property: verified.User.Property,
		},
	})
}

// SupervisorToken exchanges the supervisor secret for a supervisor token
func (h *AuthHandler) SupervisorToken(c echo.Context) error {
	log := logger.FromContext(c)

	var req supervisorTokenRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, supervisorTokenMessages.toAppError(err))
	}

	token, err := h.supervisors.IssueToken(req.Secret)
	if err != nil {
		prometheus.RecordAuthError("supervisor_rejected")
		log.Warn("Supervisor sign in rejected", zap.String("ip", c.RealIP()))
		return respondError(c, err)
	}

	log.Info("Supervisor token issued")
	return respondOK(c, "Supervisor token issued", echo.Map{"token": token})
}
