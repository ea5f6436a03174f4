package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/suteetoe/tenancy-service/internal/service"
	"github.com/suteetoe/tenancy-service/pkg/logger"
	"go.uber.org/zap"
)

type createUserRequest struct {
	Mobile string  `json:"mobile" validate:"required,mobile"`
	Name   *string `json:"name"`
	Email  *string `json:"email" validate:"omitempty,email"`

	Address       string           `json:"address" validate:"required"`
	FullAddress   string           `json:"fullAddress" validate:"required"`
	City          string           `json:"city" validate:"required"`
	State         string           `json:"state" validate:"required"`
	Pincode       string           `json:"pincode" validate:"required,pincode"`
	Bedrooms      int              `json:"bedrooms" validate:"gte=0"`
	Bathrooms     int              `json:"bathrooms" validate:"gte=0"`
	HasLivingArea *bool            `json:"hasLivingArea"`
	HasDiningArea *bool            `json:"hasDiningArea"`
	HasKitchen    *bool            `json:"hasKitchen"`
	HasUtility    *bool            `json:"hasUtility"`
	HasGarden     *bool            `json:"hasGarden"`
	HasPowderRoom *bool            `json:"hasPowderRoom"`
	PropertyType  *string          `json:"propertyType"`
	Area          *decimal.Decimal `json:"area"`
	Floor         *int             `json:"floor"`
	TotalFloors   *int             `json:"totalFloors"`
}

type updateUserRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email" validate:"omitempty,email"`
	IsActive   *bool   `json:"isActive"`
	PropertyID *string `json:"propertyId"`
}

const missingUserFields = "Mobile number, address, full address, city, state, and pincode are required"

var (
	createUserMessages = validationMessages{
		"mobile.required":      missingUserFields,
		"address.required":     missingUserFields,
		"fullAddress.required": missingUserFields,
		"city.required":        missingUserFields,
		"state.required":       missingUserFields,
		"pincode.required":     missingUserFields,
		"mobile.mobile":        "Invalid mobile number format. Please enter a valid 10-digit number.",
		"pincode.pincode":      "Invalid pincode format. Please enter a valid 6-digit pincode.",
		"email":                "Invalid email address",
	}
	updateUserMessages = validationMessages{
		"email": "Invalid email address",
	}
)

// UserHandler serves tenant administration endpoints
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler creates a UserHandler
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// CreateUser creates a tenant and their property
func (h *UserHandler) CreateUser(c echo.Context) error {
	log := logger.FromContext(c)

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, createUserMessages.toAppError(err))
	}

	user, err := h.users.CreateWithProperty(c.Request().Context(), service.CreateUserInput{
		Mobile:        req.Mobile,
		Name:          req.Name,
		Email:         req.Email,
		Address:       req.Address,
		FullAddress:   req.FullAddress,
		City:          req.City,
		State:         req.State,
		Pincode:       req.Pincode,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		HasLivingArea: req.HasLivingArea,
		HasDiningArea: req.HasDiningArea,
		HasKitchen:    req.HasKitchen,
		HasUtility:    req.HasUtility,
		HasGarden:     req.HasGarden,
		HasPowderRoom: req.HasPowderRoom,
		PropertyType:  req.PropertyType,
		Area:          req.Area,
		Floor:         req.Floor,
		TotalFloors:   req.TotalFloors,
	})
	if err != nil {
		return respondError(c, err)
	}

	log.Info("User and property created",
		zap.String("user_id", user.ID),
		zap.String("property_id", user.PropertyID))
	return respondOK(c, "User and property created successfully", user)
}

// ListUsers returns all users with their property and complaint counts
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, total, err := h.users.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}

	return respondOK(c, "Users retrieved successfully", echo.Map{
		"users":      users,
		"totalUsers": total,
	})
}

// UpdateUser patches a user's profile
func (h *UserHandler) UpdateUser(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, updateUserMessages.toAppError(err))
	}

	user, err := h.users.Update(c.Request().Context(), id, service.UpdateUserInput{
		Name:       req.Name,
		Email:      req.Email,
		IsActive:   req.IsActive,
		PropertyID: req.PropertyID,
	})
	if err != nil {
		return respondError(c, err)
	}

	log.Info("User updated", zap.String("user_id", id))
	return respondOK(c, "User updated successfully", user)
}

// DeleteUser removes a user without complaints
func (h *UserHandler) DeleteUser(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	if err := h.users.Delete(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}

	log.Info("User deleted", zap.String("user_id", id))
	return respondOK(c, "User deleted successfully", nil)
}

// GetUserDetails returns the composite user view
func (h *UserHandler) GetUserDetails(c echo.Context) error {
	details, err := h.users.Details(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "User details retrieved successfully", details)
}
