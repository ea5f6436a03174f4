package service

import (
	"context"

	"github.com/suteetoe/tenancy-service/internal/apperror"
	"github.com/suteetoe/tenancy-service/internal/model"
	"github.com/suteetoe/tenancy-service/prometheus"
	"gorm.io/gorm"
)

// PropertyService lists properties
type PropertyService struct {
	db *gorm.DB
}

// NewPropertyService creates a PropertyService
func NewPropertyService(db *gorm.DB) *PropertyService {
	return &PropertyService{db: db}
}

// List returns every property with user and complaint counts, newest first
func (s *PropertyService) List(ctx context.Context) ([]model.PropertyWithCounts, error) {
	db := s.db.WithContext(ctx)
	defer prometheus.TrackDBOperation("property_list")()

	var properties []model.Property
	if err := db.Order("created_at DESC").Find(&properties).Error; err != nil {
		return nil, apperror.Internal("failed to list properties", err)
	}

	users, err := countBy(db, &model.User{}, "property_id")
	if err != nil {
		return nil, apperror.Internal("failed to count users", err)
	}
	complaints, err := countBy(db, &model.Complaint{}, "property_id")
	if err != nil {
		return nil, apperror.Internal("failed to count complaints", err)
	}

	result := make([]model.PropertyWithCounts, 0, len(properties))
	for _, p := range properties {
		result = append(result, model.PropertyWithCounts{
			Property: p,
			Count: model.PropertyCounts{
				Users:      users[p.ID],
				Complaints: complaints[p.ID],
			},
		})
	}
	return result, nil
}
