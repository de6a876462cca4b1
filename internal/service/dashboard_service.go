package service

import (
	"errors"
	"time"

	"go-grain-trade/internal/repository"
)

type DashboardService interface {
	Summary() (*repository.DashboardSummary, error)
	StockMovement(startDate, endDate string) ([]repository.StockMovementData, error)
	Metrics() (*repository.Metrics, error)
}

type dashboardService struct {
	reportRepo repository.ReportRepository
}

func NewDashboardService(reportRepo repository.ReportRepository) DashboardService {
	return &dashboardService{reportRepo: reportRepo}
}

func (s *dashboardService) Summary() (*repository.DashboardSummary, error) {
	return s.reportRepo.DashboardSummary()
}

// StockMovement charts daily bag flow. Dates arrive as YYYY-MM-DD; an empty
// range defaults to the last 30 days.
func (s *dashboardService) StockMovement(startDate, endDate string) ([]repository.StockMovementData, error) {
	now := time.Now().UTC()
	start := now.AddDate(0, 0, -30)
	end := now

	var err error
	if startDate != "" {
		if start, err = time.Parse("2006-01-02", startDate); err != nil {
			return nil, errors.New("invalid start_date format, use YYYY-MM-DD")
		}
	}
	if endDate != "" {
		if end, err = time.Parse("2006-01-02", endDate); err != nil {
			return nil, errors.New("invalid end_date format, use YYYY-MM-DD")
		}
		// Include the whole end day.
		end = end.AddDate(0, 0, 1).Add(-time.Second)
	}
	if end.Before(start) {
		return nil, errors.New("end_date must not be before start_date")
	}

	return s.reportRepo.StockMovement(start, end)
}

func (s *dashboardService) Metrics() (*repository.Metrics, error) {
	return s.reportRepo.Metrics()
}
