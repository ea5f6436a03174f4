package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/suteetoe/tenancy-service/internal/apperror"
	"github.com/suteetoe/tenancy-service/internal/model"
	"github.com/suteetoe/tenancy-service/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrUserFieldsMissing = apperror.Validation("Mobile number, address, full address, city, state, and pincode are required")
	ErrInvalidMobile     = apperror.Validation("Invalid mobile number format. Please enter a valid 10-digit number.")
	ErrInvalidPincode    = apperror.Validation("Invalid pincode format. Please enter a valid 6-digit pincode.")
	ErrDuplicateMobile   = apperror.Conflict("User with this mobile number already exists")
	ErrPropertyNotFound  = apperror.NotFound("Property not found")
	ErrUserHasComplaints = apperror.Conflict("Cannot delete user with existing complaints")
	ErrUserIDRequired    = apperror.Validation("User ID is required")
)

const (
	recentComplaintsLimit = 5
	millisecondsPerDay    = float64(24 * time.Hour / time.Millisecond)
)

// CreateUserInput holds a new tenant and the property they occupy. Amenity
// flags left nil take their defaults: kitchen true, everything else false.
type CreateUserInput struct {
	Mobile string
	Name   *string
	Email  *string

	Address       string
	FullAddress   string
	City          string
	State         string
	Pincode       string
	Bedrooms      int
	Bathrooms     int
	HasLivingArea *bool
	HasDiningArea *bool
	HasKitchen    *bool
	HasUtility    *bool
	HasGarden     *bool
	HasPowderRoom *bool
	PropertyType  *string
	Area          *decimal.Decimal
	Floor         *int
	TotalFloors   *int
}

// UpdateUserInput is a patch of supervisor editable user fields
type UpdateUserInput struct {
	Name       *string
	Email      *string
	IsActive   *bool
	PropertyID *string
}

// StatusCounts counts complaints per lifecycle state
type StatusCounts struct {
	Open       int64 `json:"open"`
	InProgress int64 `json:"inProgress"`
	Resolved   int64 `json:"resolved"`
	Closed     int64 `json:"closed"`
	Cancelled  int64 `json:"cancelled"`
}

func (c *StatusCounts) add(status model.ComplaintStatus, n int64) {
	switch status {
	case model.StatusOpen:
		c.Open += n
	case model.StatusInProgress:
		c.InProgress += n
	case model.StatusResolved:
		c.Resolved += n
	case model.StatusClosed:
		c.Closed += n
	case model.StatusCancelled:
		c.Cancelled += n
	}
}

// ComplaintStats is the per-user complaint breakdown
type ComplaintStats struct {
	Total int64 `json:"total"`
	StatusCounts
}

// ComplaintSummary is the short form of a complaint used in user details
type ComplaintSummary struct {
	ID          string                  `json:"id"`
	Title       *string                 `json:"title,omitempty"`
	Description string                  `json:"description"`
	Category    model.ComplaintCategory `json:"category"`
	Status      model.ComplaintStatus   `json:"status"`
	Priority    model.ComplaintPriority `json:"priority"`
	CreatedAt   time.Time               `json:"createdAt"`
	UpdatedAt   time.Time               `json:"updatedAt"`
	StartedAt   *time.Time              `json:"startedAt"`
	ResolvedAt  *time.Time              `json:"resolvedAt"`
	ClosedAt    *time.Time              `json:"closedAt"`
}

// UserMetrics are derived figures for a user's complaint history
type UserMetrics struct {
	AvgResolutionTimeMs   float64    `json:"avgResolutionTimeMs"`
	AvgResolutionTimeDays int64      `json:"avgResolutionTimeDays"`
	MemberSince           time.Time  `json:"memberSince"`
	LastComplaint         *time.Time `json:"lastComplaint"`
}

// UserDetails is the composite view returned by Details
type UserDetails struct {
	ID               string             `json:"id"`
	Mobile           string             `json:"mobile"`
	Name             *string            `json:"name"`
	Email            *string            `json:"email"`
	IsActive         bool               `json:"isActive"`
	IsVerified       bool               `json:"isVerified"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
	Property         *model.Property    `json:"property"`
	ComplaintStats   ComplaintStats     `json:"complaintStats"`
	RecentComplaints []ComplaintSummary `json:"recentComplaints"`
	AllComplaints    []ComplaintSummary `json:"allComplaints"`
	Metrics          UserMetrics        `json:"metrics"`
}

// UserService manages tenants and their properties
type UserService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewUserService creates a UserService
func NewUserService(db *gorm.DB, logger *zap.Logger) *UserService {
	return &UserService{db: db, logger: logger}
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func (in CreateUserInput) validate() error {
	if in.Mobile == "" || strings.TrimSpace(in.Address) == "" || strings.TrimSpace(in.FullAddress) == "" ||
		strings.TrimSpace(in.City) == "" || strings.TrimSpace(in.State) == "" || in.Pincode == "" {
		return ErrUserFieldsMissing
	}
	if !model.IsValidMobile(in.Mobile) {
		return ErrInvalidMobile
	}
	if !model.IsValidPincode(in.Pincode) {
		return ErrInvalidPincode
	}
	return nil
}

// CreateWithProperty creates the property and its user in one transaction
func (s *UserService) CreateWithProperty(ctx context.Context, in CreateUserInput) (*model.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var existing int64
	if err := db.Model(&model.User{}).Where("mobile = ?", in.Mobile).Count(&existing).Error; err != nil {
		return nil, apperror.Internal("failed to check mobile", err)
	}
	if existing > 0 {
		return nil, ErrDuplicateMobile
	}

	property := model.Property{
		Address:       in.Address,
		FullAddress:   in.FullAddress,
		City:          in.City,
		State:         in.State,
		Pincode:       in.Pincode,
		Bedrooms:      in.Bedrooms,
		Bathrooms:     in.Bathrooms,
		HasLivingArea: boolOr(in.HasLivingArea, false),
		HasDiningArea: boolOr(in.HasDiningArea, false),
		HasKitchen:    boolOr(in.HasKitchen, true),
		HasUtility:    boolOr(in.HasUtility, false),
		HasGarden:     boolOr(in.HasGarden, false),
		HasPowderRoom: boolOr(in.HasPowderRoom, false),
		PropertyType:  in.PropertyType,
		Floor:         in.Floor,
		TotalFloors:   in.TotalFloors,
	}
	if in.Area != nil {
		property.Area = decimal.NewNullDecimal(*in.Area)
	}

	user := model.User{
		Mobile:   in.Mobile,
		Name:     in.Name,
		Email:    in.Email,
		IsActive: true,
	}

	done := prometheus.TrackDBOperation("user_create")
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&property).Error; err != nil {
			return err
		}
		user.PropertyID = property.ID
		return tx.Create(&user).Error
	})
	done()
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicateMobile
		}
		return nil, apperror.Internal("failed to create user", err)
	}

	user.Property = &property
	s.logger.Info("User created",
		zap.String("user_id", user.ID),
		zap.String("property_id", property.ID),
	)
	return &user, nil
}

// List returns every user with their property and complaint count, newest first
func (s *UserService) List(ctx context.Context) ([]model.UserWithCounts, int64, error) {
	db := s.db.WithContext(ctx)
	defer prometheus.TrackDBOperation("user_list")()

	var users []model.User
	if err := db.Preload("Property").Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, 0, apperror.Internal("failed to list users", err)
	}

	counts, err := countBy(db, &model.Complaint{}, "user_id")
	if err != nil {
		return nil, 0, apperror.Internal("failed to count complaints", err)
	}

	var total int64
	if err := db.Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal("failed to count users", err)
	}

	result := make([]model.UserWithCounts, 0, len(users))
	for _, u := range users {
		result = append(result, model.UserWithCounts{
			User:  u,
			Count: model.UserCounts{Complaints: counts[u.ID]},
		})
	}
	return result, total, nil
}

// Update applies a patch to a user. A new property must already exist.
func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (*model.User, error) {
	db := s.db.WithContext(ctx)

	var user model.User
	if err := db.Where("id = ?", id).First(&user).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, apperror.Internal("failed to load user", err)
	}

	updates := map[string]interface{}{}
	if in.PropertyID != nil && *in.PropertyID != "" {
		var count int64
		if err := db.Model(&model.Property{}).Where("id = ?", *in.PropertyID).Count(&count).Error; err != nil {
			return nil, apperror.Internal("failed to load property", err)
		}
		if count == 0 {
			return nil, ErrPropertyNotFound
		}
		updates["property_id"] = *in.PropertyID
	}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Email != nil {
		updates["email"] = *in.Email
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}

	if len(updates) > 0 {
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			return nil, apperror.Internal("failed to update user", err)
		}
	}

	var updated model.User
	if err := db.Preload("Property").Where("id = ?", id).First(&updated).Error; err != nil {
		return nil, apperror.Internal("failed to reload user", err)
	}

	s.logger.Info("User updated", zap.String("user_id", id), zap.Int("fields", len(updates)))
	return &updated, nil
}

// Delete removes a user that has never raised a complaint
func (s *UserService) Delete(ctx context.Context, id string) error {
	db := s.db.WithContext(ctx)

	err := db.Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Where("id = ?", id).First(&user).Error; err != nil {
			if isNotFound(err) {
				return ErrUserNotFound
			}
			return err
		}

		var complaints int64
		if err := tx.Model(&model.Complaint{}).Where("user_id = ?", id).Count(&complaints).Error; err != nil {
			return err
		}
		if complaints > 0 {
			return ErrUserHasComplaints
		}

		return tx.Delete(&user).Error
	})
	if err != nil {
		if appErr := apperror.As(err); appErr.Kind != apperror.KindInternal {
			return appErr
		}
		return apperror.Internal("failed to delete user", err)
	}

	s.logger.Info("User deleted", zap.String("user_id", id))
	return nil
}

// Details returns a user with their property, complaint history and metrics
func (s *UserService) Details(ctx context.Context, id string) (*UserDetails, error) {
	if id == "" {
		return nil, ErrUserIDRequired
	}

	db := s.db.WithContext(ctx)
	defer prometheus.TrackDBOperation("user_details")()

	var user model.User
	if err := db.Preload("Property").Where("id = ?", id).First(&user).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, apperror.Internal("failed to load user", err)
	}

	complaints := []ComplaintSummary{}
	err := db.Model(&model.Complaint{}).
		Where("user_id = ?", id).
		Order("created_at DESC").
		Find(&complaints).Error
	if err != nil {
		return nil, apperror.Internal("failed to load complaints", err)
	}

	stats := ComplaintStats{Total: int64(len(complaints))}
	var resolutionTotal time.Duration
	var closedCount int
	for _, c := range complaints {
		stats.add(c.Status, 1)
		if c.Status == model.StatusClosed && c.ClosedAt != nil {
			resolutionTotal += c.ClosedAt.Sub(c.CreatedAt)
			closedCount++
		}
	}

	metrics := UserMetrics{MemberSince: user.CreatedAt}
	if closedCount > 0 {
		avg := float64(resolutionTotal.Milliseconds()) / float64(closedCount)
		metrics.AvgResolutionTimeMs = avg
		metrics.AvgResolutionTimeDays = int64(math.Round(avg / millisecondsPerDay))
	}
	if len(complaints) > 0 {
		last := complaints[0].CreatedAt
		metrics.LastComplaint = &last
	}

	recent := complaints
	if len(recent) > recentComplaintsLimit {
		recent = recent[:recentComplaintsLimit]
	}

	return &UserDetails{
		ID:               user.ID,
		Mobile:           user.Mobile,
		Name:             user.Name,
		Email:            user.Email,
		IsActive:         user.IsActive,
		IsVerified:       user.IsVerified,
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
		Property:         user.Property,
		ComplaintStats:   stats,
		RecentComplaints: recent,
		AllComplaints:    complaints,
		Metrics:          metrics,
	}, nil
}
