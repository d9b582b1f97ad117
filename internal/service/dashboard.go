package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"wedding-site/internal/domain"
)

// RecentWindow is the span counted as "recent" on the dashboard
const RecentWindow = 7 * 24 * time.Hour

// DashboardService aggregates the admin dashboard numbers
type DashboardService struct {
	rsvps     domain.RSVPRepository
	guestbook domain.GuestbookRepository
	settings  domain.SettingsRepository
	now       func() time.Time
}

func NewDashboardService(rsvps domain.RSVPRepository, guestbook domain.GuestbookRepository, settings domain.SettingsRepository) *DashboardService {
	return &DashboardService{
		rsvps:     rsvps,
		guestbook: guestbook,
		settings:  settings,
		now:       time.Now,
	}
}

// Stats collects the RSVP, guestbook and settings counters
func (s *DashboardService) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	stats, err := s.rsvps.Stats(ctx, s.now().UTC().Add(-RecentWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to compute rsvp stats: %w", err)
	}

	if stats.GuestbookApproved, stats.GuestbookPending, err = s.guestbook.Counts(ctx); err != nil {
		return nil, fmt.Errorf("failed to count guestbook entries: %w", err)
	}

	if stats.Settings, err = s.settings.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count settings: %w", err)
	}

	if stats.TotalRSVPs > 0 {
		stats.AttendanceRate = int(math.Round(float64(stats.AttendingRSVPs) / float64(stats.TotalRSVPs) * 100))
	}

	return stats, nil
}
