package service

import (
	"context"
	"errors"
	"fmt"

	"showpro/internal/cache"
	"showpro/internal/dashboard"
	"showpro/internal/logger"
	"showpro/internal/models"
)

const dashboardCacheKey = "summary"

type DashboardService struct {
	bookings BookingLister
	cache    DashboardCache
}

func NewDashboardService(bookings BookingLister, c DashboardCache) *DashboardService {
	return &DashboardService{bookings: bookings, cache: c}
}

// Summary считает сводку по всем бронированиям, с кешем в Redis
func (s *DashboardService) Summary(ctx context.Context) (*dashboard.Summary, error) {
	log := logger.WithContext(ctx)

	if s.cache != nil {
		var cached dashboard.Summary
		err := s.cache.GetDashboard(ctx, dashboardCacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			log.Warn("Dashboard cache read failed", "error", err)
		}
	}

	views, err := s.bookings.ListView(ctx, models.BookingFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}
	bookings := make([]models.Booking, len(views))
	for i, v := range views {
		bookings[i] = v.Booking
	}

	summary := dashboard.Compute(bookings)

	if s.cache != nil {
		if err := s.cache.SetDashboard(ctx, dashboardCacheKey, summary); err != nil {
			log.Warn("Dashboard cache write failed", "error", err)
		}
	}
	return &summary, nil
}
