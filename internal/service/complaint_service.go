package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/suteetoe/tenancy-service/internal/apperror"
	"github.com/suteetoe/tenancy-service/internal/model"
	"github.com/suteetoe/tenancy-service/prometheus"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrComplaintNotFound    = apperror.NotFound("Complaint not found")
	ErrComplaintFieldsEmpty = apperror.Validation("Description and category are required")
	ErrInvalidCategory      = apperror.Validation("Invalid complaint category")
	ErrInvalidStatus        = apperror.Validation("Invalid complaint status")
	ErrInvalidPriority      = apperror.Validation("Invalid complaint priority")
	ErrCloseNotResolved     = apperror.InvalidTransition("Can only close resolved complaints")
	ErrCloseViaUpdate       = apperror.InvalidTransition("Use the close operation to close a complaint")
	ErrUnauthorized         = apperror.Unauthorized("Unauthorized")
)

// CreateComplaintInput carries the reporter supplied fields of a new complaint
type CreateComplaintInput struct {
	Title       *string
	Description string
	Category    model.ComplaintCategory
	IssueImages []string
	IssueVideos []string
}

// UpdateComplaintInput is a patch. Nil fields are left unchanged and media
// lists replace the stored list.
type UpdateComplaintInput struct {
	Status          *model.ComplaintStatus
	Priority        *model.ComplaintPriority
	WorkDescription *string
	MaterialsUsed   *string
	WorkNotes       *string
	BeforeImages    *[]string
	AfterImages     *[]string
	BeforeVideos    *[]string
	AfterVideos     *[]string
}

// ComplaintFilter narrows a supervisor listing
type ComplaintFilter struct {
	Status     model.ComplaintStatus
	Category   model.ComplaintCategory
	Priority   model.ComplaintPriority
	PropertyID string
	UserID     string
	Query      string
}

// ComplaintService owns the complaint lifecycle
type ComplaintService struct {
	db     *gorm.DB
	now    Clock
	logger *zap.Logger
}

// NewComplaintService creates a ComplaintService
func NewComplaintService(db *gorm.DB, logger *zap.Logger) *ComplaintService {
	return &ComplaintService{db: db, now: SystemClock, logger: logger}
}

// WithClock replaces the time source
func (s *ComplaintService) WithClock(now Clock) *ComplaintService {
	s.now = now
	return s
}

func withReporter(db *gorm.DB) *gorm.DB {
	return db.
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "mobile")
		}).
		Preload("Property")
}

func (s *ComplaintService) load(db *gorm.DB, id string) (*model.Complaint, error) {
	var complaint model.Complaint
	if err := withReporter(db).Where("id = ?", id).First(&complaint).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrComplaintNotFound
		}
		return nil, apperror.Internal("failed to load complaint", err)
	}
	complaint.AttachReporter()
	return &complaint, nil
}

// Create records a new OPEN complaint for the reporter. The property is taken
// from the reporter's identity.
func (s *ComplaintService) Create(ctx context.Context, reporter Identity, in CreateComplaintInput) (*model.Complaint, error) {
	if strings.TrimSpace(in.Description) == "" || in.Category == "" {
		return nil, ErrComplaintFieldsEmpty
	}
	if !in.Category.Valid() {
		return nil, ErrInvalidCategory
	}

	complaint := model.Complaint{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Status:      model.StatusOpen,
		Priority:    model.PriorityMedium,
		IssueImages: datatypes.JSONSlice[string](in.IssueImages),
		IssueVideos: datatypes.JSONSlice[string](in.IssueVideos),
		UserID:      reporter.UserID,
		PropertyID:  reporter.PropertyID,
	}

	db := s.db.WithContext(ctx)
	done := prometheus.TrackDBOperation("complaint_create")
	err := db.Create(&complaint).Error
	done()
	if err != nil {
		return nil, apperror.Internal("failed to create complaint", err)
	}

	prometheus.RecordComplaintOperation("create")
	s.logger.Info("Complaint created",
		zap.String("complaint_id", complaint.ID),
		zap.String("user_id", reporter.UserID),
		zap.String("category", string(complaint.Category)),
	)
	return s.load(db, complaint.ID)
}

// Update applies a patch. Status changes follow the transition table, and
// startedAt/resolvedAt are stamped only the first time their state is entered.
func (s *ComplaintService) Update(ctx context.Context, id string, in UpdateComplaintInput) (*model.Complaint, error) {
	db := s.db.WithContext(ctx)

	var from, to model.ComplaintStatus
	err := db.Transaction(func(tx *gorm.DB) error {
		var complaint model.Complaint
		if err := tx.Where("id = ?", id).First(&complaint).Error; err != nil {
			if isNotFound(err) {
				return ErrComplaintNotFound
			}
			return err
		}
		from = complaint.Status

		updates := map[string]interface{}{}

		if in.Status != nil {
			next := *in.Status
			if !next.Valid() {
				return ErrInvalidStatus
			}
			if next == model.StatusClosed && complaint.Status != model.StatusClosed {
				return ErrCloseViaUpdate
			}
			if !model.CanTransition(complaint.Status, next) {
				return apperror.InvalidTransition(fmt.Sprintf("Cannot change status from %s to %s", complaint.Status, next))
			}
			if next != complaint.Status {
				updates["status"] = next
				to = next
			}

			now := s.now()
			if next == model.StatusInProgress && complaint.StartedAt == nil {
				updates["started_at"] = now
			}
			if next == model.StatusResolved && complaint.ResolvedAt == nil {
				updates["resolved_at"] = now
			}
		}

		if in.Priority != nil {
			if !in.Priority.Valid() {
				return ErrInvalidPriority
			}
			updates["priority"] = *in.Priority
		}

		if in.WorkDescription != nil {
			updates["work_description"] = *in.WorkDescription
		}
		if in.MaterialsUsed != nil {
			updates["materials_used"] = *in.MaterialsUsed
		}
		if in.WorkNotes != nil {
			updates["work_notes"] = *in.WorkNotes
		}

		media := map[string]*[]string{
			"before_images": in.BeforeImages,
			"after_images":  in.AfterImages,
			"before_videos": in.BeforeVideos,
			"after_videos":  in.AfterVideos,
		}
		for column, list := range media {
			if list == nil {
				continue
			}
			value := datatypes.JSONSlice[string](*list)
			if value == nil {
				value = datatypes.JSONSlice[string]{}
			}
			updates[column] = value
		}

		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&complaint).Updates(updates).Error
	})
	if err != nil {
		if appErr := apperror.As(err); appErr.Kind != apperror.KindInternal {
			return nil, appErr
		}
		return nil, apperror.Internal("failed to update complaint", err)
	}

	if to != "" {
		prometheus.RecordComplaintTransition(string(from), string(to))
		s.logger.Info("Complaint status changed",
			zap.String("complaint_id", id),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
	}
	prometheus.RecordComplaintOperation("update")
	return s.load(db, id)
}

// Close moves a RESOLVED complaint to CLOSED. It is the only way into CLOSED.
func (s *ComplaintService) Close(ctx context.Context, id string) (*model.Complaint, error) {
	db := s.db.WithContext(ctx)

	err := db.Transaction(func(tx *gorm.DB) error {
		var complaint model.Complaint
		if err := tx.Where("id = ?", id).First(&complaint).Error; err != nil {
			if isNotFound(err) {
				return ErrComplaintNotFound
			}
			return err
		}
		if complaint.Status != model.StatusResolved {
			return ErrCloseNotResolved
		}

		result := tx.Model(&model.Complaint{}).
			Where("id = ? AND status = ?", id, model.StatusResolved).
			Updates(map[string]interface{}{
				"status":    model.StatusClosed,
				"closed_at": s.now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrCloseNotResolved
		}
		return nil
	})
	if err != nil {
		if appErr := apperror.As(err); appErr.Kind != apperror.KindInternal {
			return nil, appErr
		}
		return nil, apperror.Internal("failed to close complaint", err)
	}

	prometheus.RecordComplaintTransition(string(model.StatusResolved), string(model.StatusClosed))
	prometheus.RecordComplaintOperation("close")
	s.logger.Info("Complaint closed", zap.String("complaint_id", id))
	return s.load(db, id)
}

// Cancel moves a complaint to CANCELLED when the transition table allows it
func (s *ComplaintService) Cancel(ctx context.Context, id string) (*model.Complaint, error) {
	status := model.StatusCancelled
	return s.Update(ctx, id, UpdateComplaintInput{Status: &status})
}

// Get returns one complaint. In self scope a complaint owned by someone else
// is reported as not found.
func (s *ComplaintService) Get(ctx context.Context, id string, requester *Identity, scope Scope) (*model.Complaint, error) {
	query := withReporter(s.db.WithContext(ctx)).Where("id = ?", id)
	if scope != ScopeSupervisor {
		if requester == nil {
			return nil, ErrUnauthorized
		}
		query = query.Where("user_id = ?", requester.UserID)
	}

	var complaint model.Complaint
	if err := query.First(&complaint).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrComplaintNotFound
		}
		return nil, apperror.Internal("failed to load complaint", err)
	}
	complaint.AttachReporter()
	return &complaint, nil
}

// List returns complaints newest first. Self scope sees only the requester's
// complaints; supervisor scope sees all of them with reporter contact details.
func (s *ComplaintService) List(ctx context.Context, requester *Identity, scope Scope, filter ComplaintFilter) ([]model.Complaint, error) {
	db := s.db.WithContext(ctx)
	defer prometheus.TrackDBOperation("complaint_list")()

	var query *gorm.DB
	if scope == ScopeSupervisor {
		query = withReporter(db).Model(&model.Complaint{})
		query = applyComplaintFilter(query, filter)
	} else {
		if requester == nil {
			return nil, ErrUnauthorized
		}
		query = db.Preload("Property").Where("complaints.user_id = ?", requester.UserID)
	}

	complaints := []model.Complaint{}
	if err := query.Order("complaints.created_at DESC").Find(&complaints).Error; err != nil {
		return nil, apperror.Internal("failed to list complaints", err)
	}

	if scope == ScopeSupervisor {
		for i := range complaints {
			complaints[i].AttachReporter()
		}
	}
	return complaints, nil
}

func applyComplaintFilter(query *gorm.DB, filter ComplaintFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("complaints.status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("complaints.category = ?", filter.Category)
	}
	if filter.Priority != "" {
		query = query.Where("complaints.priority = ?", filter.Priority)
	}
	if filter.PropertyID != "" {
		query = query.Where("complaints.property_id = ?", filter.PropertyID)
	}
	if filter.UserID != "" {
		query = query.Where("complaints.user_id = ?", filter.UserID)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.
			Joins("LEFT JOIN users ON users.id = complaints.user_id").
			Joins("LEFT JOIN properties ON properties.id = complaints.property_id").
			Where(
				"LOWER(COALESCE(complaints.title, '')) LIKE ? OR LOWER(complaints.description) LIKE ? OR "+
					"LOWER(COALESCE(users.name, '')) LIKE ? OR users.mobile LIKE ? OR LOWER(properties.address) LIKE ?",
				pattern, pattern, pattern, pattern, pattern,
			)
	}
	return query
}
