package service

import (
	"context"

	"github.com/suteetoe/tenancy-service/internal/apperror"
	"github.com/suteetoe/tenancy-service/internal/model"
	"github.com/suteetoe/tenancy-service/prometheus"
	"gorm.io/gorm"
)

// DashboardStats are the headline counts for the admin dashboard
type DashboardStats struct {
	TotalUsers         int64        `json:"totalUsers"`
	TotalProperties    int64        `json:"totalProperties"`
	TotalComplaints    int64        `json:"totalComplaints"`
	ComplaintsByStatus StatusCounts `json:"complaintsByStatus"`
}

// DashboardService computes dashboard aggregates
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a DashboardService
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// Stats counts users, properties and complaints by status
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	defer prometheus.TrackDBOperation("dashboard_stats")()

	var stats DashboardStats
	if err := db.Model(&model.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, apperror.Internal("failed to count users", err)
	}
	if err := db.Model(&model.Property{}).Count(&stats.TotalProperties).Error; err != nil {
		return nil, apperror.Internal("failed to count properties", err)
	}

	byStatus, err := countBy(db, &model.Complaint{}, "status")
	if err != nil {
		return nil, apperror.Internal("failed to count complaints", err)
	}
	for status, n := range byStatus {
		stats.TotalComplaints += n
		stats.ComplaintsByStatus.add(model.ComplaintStatus(status), n)
	}
	return &stats, nil
}
