package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nutricoach/backend/internal/calculation"
	"github.com/nutricoach/backend/internal/domain"
	"github.com/nutricoach/backend/internal/infrastructure/cache"
	"github.com/nutricoach/backend/internal/logger"
	"go.uber.org/zap"
)

// RecapServiceConfig holds configuration for the recap service
type RecapServiceConfig struct {
	Tolerance       float64
	PeriodDays      int
	CacheTTL        time.Duration
	DefaultTimezone string
}

// RecapService computes adherence recaps with caching
type RecapService struct {
	profiles        domain.ProfileRepository
	meals           domain.MealRepository
	store           domain.RecapStore
	cache           domain.CacheRepository
	targets         *TargetService
	tolerance       float64
	periodDays      int
	cacheTTL        time.Duration
	defaultTimezone string
	now             func() time.Time
}

// NewRecapService creates a recap service. store and cache may be nil.
func NewRecapService(
	profiles domain.ProfileRepository,
	meals domain.MealRepository,
	store domain.RecapStore,
	cache domain.CacheRepository,
	config RecapServiceConfig,
) *RecapService {
	tolerance := config.Tolerance
	if tolerance <= 0 {
		tolerance = calculation.DefaultTolerance
	}
	periodDays := config.PeriodDays
	if periodDays <= 0 {
		periodDays = 7
	}
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 6 * time.Hour
	}
	tz := config.DefaultTimezone
	if tz == "" {
		tz = "UTC"
	}

	return &RecapService{
		profiles:        profiles,
		meals:           meals,
		store:           store,
		cache:           cache,
		targets:         NewTargetService(profiles),
		tolerance:       tolerance,
		periodDays:      periodDays,
		cacheTTL:        cacheTTL,
		defaultTimezone: tz,
		now:             time.Now,
	}
}

// PeriodDays is the default recap length in days
func (s *RecapService) PeriodDays() int {
	return s.periodDays
}

// Recap returns the user's recap for the inclusive range [start, end], both
// YYYY-MM-DD in the user's timezone. Empty start and end select the default
// period ending yesterday.
func (s *RecapService) Recap(ctx context.Context, userID, start, end string) (*domain.RecapMetrics, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrInvalidRequest
	}

	loc, err := userLocation(ctx, s.profiles, userID, s.defaultTimezone)
	if err != nil {
		return nil, err
	}

	var from, to time.Time
	switch {
	case start == "" && end == "":
		from, to = PeriodEndingYesterday(s.now(), loc, s.periodDays)
	case start == "" || end == "":
		return nil, fmt.Errorf("%w: start and end must be given together", domain.ErrInvalidRequest)
	default:
		if from, err = domain.ParseDate(start, loc); err != nil {
			return nil, err
		}
		if to, err = domain.ParseDate(end, loc); err != nil {
			return nil, err
		}
	}

	return s.compute(ctx, userID, from, to, loc)
}

// compute serves [from, to] from cache or builds it from the stored meals.
func (s *RecapService) compute(ctx context.Context, userID string, from, to time.Time, loc *time.Location) (*domain.RecapMetrics, error) {
	if to.Before(from) {
		return nil, domain.ErrInvalidDateRange
	}
	// Bounded by calendar arithmetic before any day is enumerated.
	if to.After(from.AddDate(0, 0, domain.MaxRecapDays-1)) {
		return nil, fmt.Errorf("%w: at most %d days", domain.ErrInvalidDateRange, domain.MaxRecapDays)
	}

	// Read before the meals so a concurrent write moves later readers to a new key.
	generation := recapGeneration(ctx, s.cache, userID)
	key := recapCacheKey(userID, generation, domain.LocalDate(from, loc), domain.LocalDate(to, loc))
	if s.cache != nil {
		var cached domain.RecapMetrics
		if err := cache.GetJSON(ctx, s.cache, key, &cached); err == nil {
			return &cached, nil
		}
	}

	target, err := s.targets.UserTargetMacros(ctx, userID)
	if err != nil {
		return nil, err
	}

	// [from midnight, day after to midnight) in the user's timezone
	rangeEnd := time.Date(to.Year(), to.Month(), to.Day()+1, 0, 0, 0, 0, loc)
	entries, err := s.meals.ListMeals(ctx, userID, from, rangeEnd)
	if err != nil {
		return nil, err
	}

	recap, err := calculation.RecapWithTolerance(entries, *target, from, to, loc.String(), s.tolerance)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, recap, s.cacheTTL); err != nil {
			logger.Warn("[CACHE] recap write failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return recap, nil
}

// ComputeAndStore computes the default period ending yesterday for the user
// and persists it in the recap store. It is the unit of work of the batch job.
func (s *RecapService) ComputeAndStore(ctx context.Context, userID string, periodDays int) (*domain.CachedRecap, error) {
	if periodDays <= 0 {
		periodDays = s.periodDays
	}

	loc, err := userLocation(ctx, s.profiles, userID, s.defaultTimezone)
	if err != nil {
		return nil, err
	}

	now := s.now()
	from, to := PeriodEndingYesterday(now, loc, periodDays)
	recap, err := s.compute(ctx, userID, from, to, loc)
	if err != nil {
		return nil, err
	}

	cached := &domain.CachedRecap{UserID: userID, Recap: *recap, ComputedAt: now.UTC()}
	if s.store != nil {
		if err := s.store.SaveCachedRecap(ctx, cached); err != nil {
			return nil, err
		}
	}
	return cached, nil
}

// LatestRecap returns the recap last written by the batch job, or domain.ErrCacheMiss.
func (s *RecapService) LatestRecap(ctx context.Context, userID string) (*domain.CachedRecap, error) {
	if s.store == nil {
		return nil, domain.ErrCacheMiss
	}
	return s.store.GetCachedRecap(ctx, userID)
}

// PeriodEndingYesterday returns the first and last local midnights of the
// days-long period that ends the day before now in loc.
func PeriodEndingYesterday(now time.Time, loc *time.Location, days int) (time.Time, time.Time) {
	if days < 1 {
		days = 1
	}
	local := now.In(loc)
	end := time.Date(local.Year(), local.Month(), local.Day()-1, 0, 0, 0, 0, loc)
	start := time.Date(local.Year(), local.Month(), local.Day()-days, 0, 0, 0, 0, loc)
	return start, end
}
