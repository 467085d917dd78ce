package services

import (
	"context"
	"encoding/json"
	"time"

	"jobcard-backend/internal/cache"
	"jobcard-backend/internal/jobcard"
	"jobcard-backend/internal/models"
	"jobcard-backend/internal/store"
)

// DashboardService computes the dashboard from a fresh read of the job
// card slot. Results are cached in Redis until the next store change.
type DashboardService struct {
	Store *store.Store[models.JobCard]
	TTL   time.Duration
}

func NewDashboardService(st *store.Store[models.JobCard], ttl time.Duration) *DashboardService {
	return &DashboardService{Store: st, TTL: ttl}
}

// InvalidateOnChange is registered as a store change hook.
func (s *DashboardService) InvalidateOnChange(store.Change) {
	cache.InvalidateDashboard(context.Background())
}

// cards re-reads the slot so writes from other instances are seen.
func (s *DashboardService) cards(ctx context.Context) ([]models.JobCard, error) {
	if err := s.Store.Refresh(ctx); err != nil {
		return nil, err
	}
	return s.Store.List(ctx)
}

// cached returns the value under key, computing and storing it on a miss.
func cached[T any](ctx context.Context, key string, ttl time.Duration, compute func() (T, error)) (T, error) {
	if data, ok := cache.GetCached(ctx, key); ok {
		var v T
		if json.Unmarshal(data, &v) == nil {
			return v, nil
		}
	}
	v, err := compute()
	if err != nil {
		return v, err
	}
	if data, err := json.Marshal(v); err == nil {
		cache.SetCached(ctx, key, data, ttl)
	}
	return v, nil
}

func (s *DashboardService) Summary(ctx context.Context, year int) (jobcard.Summary, error) {
	key := cache.DashboardKey(cache.DashboardSummaryFmt, year)
	return cached(ctx, key, s.TTL, func() (jobcard.Summary, error) {
		cards, err := s.cards(ctx)
		if err != nil {
			return jobcard.Summary{}, err
		}
		return jobcard.Summarize(cards, year), nil
	})
}

func (s *DashboardService) Monthly(ctx context.Context, year int) ([12]int, error) {
	key := cache.DashboardKey(cache.DashboardMonthlyFmt, year)
	return cached(ctx, key, s.TTL, func() ([12]int, error) {
		cards, err := s.cards(ctx)
		if err != nil {
			return [12]int{}, err
		}
		return jobcard.MonthlyHistogram(cards, year), nil
	})
}

func (s *DashboardService) TopCustomers(ctx context.Context, limit int) ([]jobcard.CustomerCount, error) {
	key := cache.DashboardKey(cache.DashboardCustomerFmt, limit)
	return cached(ctx, key, s.TTL, func() ([]jobcard.CustomerCount, error) {
		cards, err := s.cards(ctx)
		if err != nil {
			return nil, err
		}
		top := jobcard.TopCustomers(cards, limit)
		if top == nil {
			top = []jobcard.CustomerCount{}
		}
		return top, nil
	})
}

func (s *DashboardService) Sections(ctx context.Context) (jobcard.SectionCounts, error) {
	return cached(ctx, cache.DashboardSectionsKey, s.TTL, func() (jobcard.SectionCounts, error) {
		cards, err := s.cards(ctx)
		if err != nil {
			return jobcard.SectionCounts{}, err
		}
		return jobcard.CountBySection(cards), nil
	})
}
