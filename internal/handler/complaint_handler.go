package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/suteetoe/tenancy-service/internal/middleware"
	"github.com/suteetoe/tenancy-service/internal/model"
	"github.com/suteetoe/tenancy-service/internal/service"
	"github.com/suteetoe/tenancy-service/pkg/logger"
	"go.uber.org/zap"
)

type createComplaintRequest struct {
	Title       *string                 `json:"title"`
	Description string                  `json:"description" validate:"required"`
	Category    model.ComplaintCategory `json:"category" validate:"required,complaint_category"`
	IssueImages []string                `json:"issueImages"`
	IssueVideos []string                `json:"issueVideos"`
}

type updateComplaintRequest struct {
	Status          *model.ComplaintStatus   `json:"status" validate:"omitempty,complaint_status"`
	Priority        *model.ComplaintPriority `json:"priority" validate:"omitempty,complaint_priority"`
	WorkDescription *string                  `json:"workDescription"`
	MaterialsUsed   *string                  `json:"materialsUsed"`
	WorkNotes       *string                  `json:"workNotes"`
	BeforeImages    *[]string                `json:"beforeImages"`
	AfterImages     *[]string                `json:"afterImages"`
	BeforeVideos    *[]string                `json:"beforeVideos"`
	AfterVideos     *[]string                `json:"afterVideos"`
}

var (
	createComplaintMessages = validationMessages{
		"description.required":        "Description and category are required",
		"category.required":           "Description and category are required",
		"category.complaint_category": "Invalid complaint category",
	}
	updateComplaintMessages = validationMessages{
		"status":   "Invalid complaint status",
		"priority": "Invalid complaint priority",
	}
)

// ComplaintHandler serves the complaint endpoints
type ComplaintHandler struct {
	complaints *service.ComplaintService
}

// NewComplaintHandler creates a ComplaintHandler
func NewComplaintHandler(complaints *service.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{complaints: complaints}
}

// CreateComplaint records a complaint for the authenticated tenant
func (h *ComplaintHandler) CreateComplaint(c echo.Context) error {
	log := logger.FromContext(c)

	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return respondError(c, service.ErrUnauthorized)
	}

	var req createComplaintRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, createComplaintMessages.toAppError(err))
	}

	complaint, err := h.complaints.Create(c.Request().Context(), *identity, service.CreateComplaintInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		IssueImages: req.IssueImages,
		IssueVideos: req.IssueVideos,
	})
	if err != nil {
		return respondError(c, err)
	}

	log.Info("Complaint created", zap.String("complaint_id", complaint.ID))
	return respondOK(c, "Complaint created successfully", complaint)
}

// ListComplaints lists the caller's complaints, or all of them in supervisor scope
func (h *ComplaintHandler) ListComplaints(c echo.Context) error {
	identity, _ := middleware.IdentityFromContext(c)
	scope := middleware.ScopeFromContext(c)

	filter := service.ComplaintFilter{
		Status:     model.ComplaintStatus(c.QueryParam("status")),
		Category:   model.ComplaintCategory(c.QueryParam("category")),
		Priority:   model.ComplaintPriority(c.QueryParam("priority")),
		PropertyID: c.QueryParam("propertyId"),
		UserID:     c.QueryParam("userId"),
		Query:      c.QueryParam("q"),
	}

	complaints, err := h.complaints.List(c.Request().Context(), identity, scope, filter)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Complaints retrieved successfully", complaints)
}

// GetComplaint returns one complaint visible to the caller
func (h *ComplaintHandler) GetComplaint(c echo.Context) error {
	identity, _ := middleware.IdentityFromContext(c)
	scope := middleware.ScopeFromContext(c)

	complaint, err := h.complaints.Get(c.Request().Context(), c.Param("id"), identity, scope)
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Complaint retrieved successfully", complaint)
}

// UpdateComplaint applies a partial update
func (h *ComplaintHandler) UpdateComplaint(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req updateComplaintRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, updateComplaintMessages.toAppError(err))
	}

	complaint, err := h.complaints.Update(c.Request().Context(), id, service.UpdateComplaintInput{
		Status:          req.Status,
		Priority:        req.Priority,
		WorkDescription: req.WorkDescription,
		MaterialsUsed:   req.MaterialsUsed,
		WorkNotes:       req.WorkNotes,
		BeforeImages:    req.BeforeImages,
		AfterImages:     req.AfterImages,
		BeforeVideos:    req.BeforeVideos,
		AfterVideos:     req.AfterVideos,
	})
	if err != nil {
		return respondError(c, err)
	}

	log.Info("Complaint updated",
		zap.String("complaint_id", id),
		zap.String("status", string(complaint.Status)))
	return respondOK(c, "Complaint updated successfully", complaint)
}

// CloseComplaint closes a resolved complaint
func (h *ComplaintHandler) CloseComplaint(c echo.Context) error {
	complaint, err := h.complaints.Close(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Complaint closed successfully", complaint)
}

// CancelComplaint cancels an open or in-progress complaint
func (h *ComplaintHandler) CancelComplaint(c echo.Context) error {
	complaint, err := h.complaints.Cancel(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, "Complaint cancelled successfully", complaint)
}
