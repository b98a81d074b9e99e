package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/aitimaad/verify-admin-go/internal/domain"
	"github.com/aitimaad/verify-admin-go/internal/infra/observability"
	"github.com/aitimaad/verify-admin-go/internal/port"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const statsCacheKey = "dashboard-stats"

// DashboardService aggregates platform-wide verification numbers.
//
// Stats are cached. Change notifications that carry a row payload are
// reconciled into the cached snapshot in place; notifications without a
// usable payload trigger a full recompute, coalesced through singleflight so
// a burst of N changes costs at most one in-flight fetch rather than N.
type DashboardService struct {
	profiles port.ProfileStore
	cache    port.Cache[domain.DashboardStats]
	metrics  *observability.Metrics
	logger   *zap.Logger
	now      func() time.Time

	group singleflight.Group
	mu    sync.Mutex // serializes incremental edits to the cached snapshot
}

// NewDashboardService creates the dashboard aggregation service.
func NewDashboardService(profiles port.ProfileStore, cache port.Cache[domain.DashboardStats], metrics *observability.Metrics, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		profiles: profiles,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Stats returns the current dashboard snapshot, from cache when fresh.
func (s *DashboardService) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	ctx, span := tracer.Start(ctx, "DashboardService.Stats")
	defer span.End()

	if stats, ok := s.cache.Get(statsCacheKey); ok {
		s.metrics.IncrCacheHit("dashboard")
		return &stats, nil
	}
	s.metrics.IncrCacheMiss("dashboard")
	return s.refresh(ctx, "pull")
}

// refresh recomputes the snapshot from the store. Concurrent callers share a
// single flight.
func (s *DashboardService) refresh(ctx context.Context, trigger string) (*domain.DashboardStats, error) {
	v, err, _ := s.group.Do(statsCacheKey, func() (any, error) {
		s.metrics.IncrRefetch(trigger)

		profiles, err := s.profiles.ListProfiles(ctx)
		if err != nil {
			s.metrics.IncrStoreError("profiles")
			return nil, fmt.Errorf("list profiles: %w", err)
		}
		businessCount, err := s.profiles.CountBusinesses(ctx)
		if err != nil {
			s.metrics.IncrStoreError("businesses")
			return nil, fmt.Errorf("count businesses: %w", err)
		}

		stats := s.buildStats(profiles, businessCount)
		s.cache.Set(statsCacheKey, *stats)
		return stats, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.DashboardStats), nil
}

// buildStats computes every aggregate from scratch.
func (s *DashboardService) buildStats(profiles []domain.Profile, businessCount int) *domain.DashboardStats {
	stats := &domain.DashboardStats{
		TotalUsers:       len(profiles),
		TotalBusinesses:  businessCount,
		RecentActivities: []domain.Activity{},
	}

	for _, p := range profiles {
		if !p.IsVerified {
			continue
		}
		switch p.UserType {
		case "business":
			stats.ApprovedBusinesses++
		case "customer":
			stats.ApprovedUsers++
		}
	}

	// Profiles arrive newest first; the feed is the top five.
	for _, p := range profiles {
		if len(stats.RecentActivities) == 5 {
			break
		}
		stats.RecentActivities = append(stats.RecentActivities, s.activityFor(p))
	}

	s.computeRates(stats)
	return stats
}

// computeRates derives the percentage figures from the raw counts, guarding
// every division by zero the way the dashboard always has.
func (s *DashboardService) computeRates(stats *domain.DashboardStats) {
	stats.ApprovalRate = 0
	if stats.TotalUsers > 0 {
		stats.ApprovalRate = round1(float64(stats.ApprovedUsers+stats.ApprovedBusinesses) / float64(stats.TotalUsers) * 100)
	}

	stats.BusinessVerificationRate = 0
	if stats.TotalBusinesses > 0 {
		stats.BusinessVerificationRate = round1(math.Min(float64(stats.ApprovedBusinesses)/float64(stats.TotalBusinesses)*100, 100))
	}

	customers := stats.TotalUsers - stats.TotalBusinesses
	stats.UserVerificationRate = 0
	if customers > 0 {
		stats.UserVerificationRate = round1(math.Min(float64(stats.ApprovedUsers)/float64(customers)*100, 100))
	}
}

func (s *DashboardService) activityFor(p domain.Profile) domain.Activity {
	who := p.FullName
	if who == "" {
		who = p.Email
	}
	if who == "" && len(p.ID) >= 8 {
		who = fmt.Sprintf("User ID: %s...", p.ID[:8])
	}

	kind := "Customer"
	if p.UserType == "business" {
		kind = "Business"
	}
	action := kind + " pending verification"
	activityType := "info"
	if p.IsVerified {
		action = kind + " verified"
		activityType = "success"
	}

	return domain.Activity{
		ID:     p.ID,
		User:   who,
		Action: action,
		Time:   s.timeAgo(p.CreatedAt),
		Type:   activityType,
	}
}

// OnChange reconciles a table change notification into the cached snapshot.
// Changes without a usable payload, or arriving with no cached snapshot,
// fall back to a coalesced full refresh.
func (s *DashboardService) OnChange(ctx context.Context, change domain.TableChange) {
	// Get, apply, and set under one lock: change events arrive on
	// concurrent goroutines, and a read outside the critical section
	// would let two events reconcile against the same snapshot and
	// lose one of the deltas on write-back.
	s.mu.Lock()
	stats, cached := s.cache.Get(statsCacheKey)
	reconciled := cached && s.applyChange(&stats, change)
	if reconciled {
		s.computeRates(&stats)
		s.cache.Set(statsCacheKey, stats)
	}
	s.mu.Unlock()

	if !reconciled {
		if _, err := s.refresh(ctx, "change"); err != nil {
			s.logger.Error("dashboard refresh after change failed",
				zap.String("table", change.Table),
				zap.Error(err),
			)
		}
		return
	}

	s.logger.Debug("dashboard stats reconciled in place",
		zap.String("table", change.Table),
		zap.String("event", change.Event),
	)
}

// applyChange mutates the counts for changes we can reconcile without a
// round trip. It reports false when a full refresh is needed instead.
func (s *DashboardService) applyChange(stats *domain.DashboardStats, change domain.TableChange) bool {
	switch change.Table {
	case "businesses":
		switch change.Event {
		case "INSERT":
			stats.TotalBusinesses++
		case "DELETE":
			if stats.TotalBusinesses > 0 {
				stats.TotalBusinesses--
			}
		default:
			// Listing edits don't move any aggregate this snapshot tracks.
		}
		return true

	case "profiles":
		switch change.Event {
		case "INSERT":
			if change.Profile == nil {
				return false
			}
			stats.TotalUsers++
			s.adjustApproved(stats, change.Profile, +1)
			stats.RecentActivities = prependActivity(stats.RecentActivities, s.activityFor(*change.Profile))
			return true
		case "UPDATE":
			if change.Profile == nil || change.Old == nil {
				return false
			}
			s.adjustApproved(stats, change.Old, -1)
			s.adjustApproved(stats, change.Profile, +1)
			return true
		case "DELETE":
			if change.Old == nil {
				return false
			}
			if stats.TotalUsers > 0 {
				stats.TotalUsers--
			}
			s.adjustApproved(stats, change.Old, -1)
			return true
		}
	}
	return false
}

func (s *DashboardService) adjustApproved(stats *domain.DashboardStats, p *domain.Profile, delta int) {
	if !p.IsVerified {
		return
	}
	switch p.UserType {
	case "business":
		stats.ApprovedBusinesses = max(0, stats.ApprovedBusinesses+delta)
	case "customer":
		stats.ApprovedUsers = max(0, stats.ApprovedUsers+delta)
	}
}

func prependActivity(feed []domain.Activity, a domain.Activity) []domain.Activity {
	feed = append([]domain.Activity{a}, feed...)
	if len(feed) > 5 {
		feed = feed[:5]
	}
	return feed
}

// timeAgo humanizes an RFC3339 timestamp relative to now.
func (s *DashboardService) timeAgo(timestamp string) string {
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return "Invalid date"
	}

	d := s.now().Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%d mins ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
