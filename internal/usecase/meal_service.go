package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nutricoach/backend/internal/calculation"
	"github.com/nutricoach/backend/internal/domain"
	"github.com/nutricoach/backend/internal/infrastructure/cache"
	"github.com/nutricoach/backend/internal/infrastructure/extraction"
	"github.com/nutricoach/backend/internal/logger"
	"go.uber.org/zap"
)

// MealServiceConfig holds configuration for the meal service
type MealServiceConfig struct {
	CacheTTL        time.Duration
	DefaultTimezone string
}

// MealService logs meals, aggregates daily totals and runs meal extraction
type MealService struct {
	meals           domain.MealRepository
	profiles        domain.ProfileRepository
	targets         *TargetService
	cache           domain.CacheRepository
	extractor       domain.MealExtractor
	cacheTTL        time.Duration
	defaultTimezone string
	now             func() time.Time
}

// NewMealService creates a meal service. extractor and cache may be nil.
func NewMealService(
	meals domain.MealRepository,
	profiles domain.ProfileRepository,
	cache domain.CacheRepository,
	extractor domain.MealExtractor,
	config MealServiceConfig,
) *MealService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 6 * time.Hour
	}
	tz := config.DefaultTimezone
	if tz == "" {
		tz = "UTC"
	}

	return &MealService{
		meals:           meals,
		profiles:        profiles,
		targets:         NewTargetService(profiles),
		cache:           cache,
		extractor:       extractor,
		cacheTTL:        cacheTTL,
		defaultTimezone: tz,
		now:             time.Now,
	}
}

// LogMealRequest is a meal to be logged
type LogMealRequest struct {
	MealCategory domain.MealCategory `json:"mealCategory"`
	Description  string              `json:"description"`
	Items        []domain.MealItem   `json:"items"`
	Timestamp    time.Time           `json:"timestamp"`
}

// LogMeal stores a new entry. The entry total is computed from its items here
// and never again.
func (s *MealService) LogMeal(ctx context.Context, userID string, req LogMealRequest) (*domain.MealEntry, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrInvalidRequest
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", domain.ErrInvalidRequest)
	}
	for i, item := range req.Items {
		if strings.TrimSpace(item.Name) == "" {
			return nil, fmt.Errorf("%w: item %d has no name", domain.ErrInvalidRequest, i)
		}
	}

	entry := domain.NewMealEntry(domain.NewMealEntryInput{
		UserID:       userID,
		MealCategory: req.MealCategory,
		Description:  req.Description,
		Items:        req.Items,
		Timestamp:    req.Timestamp,
	}, s.now(), calculation.EntryMacros)

	if err := s.meals.CreateMeal(ctx, &entry); err != nil {
		return nil, err
	}

	invalidateRecaps(ctx, s.cache, userID)
	logger.Info("meal logged",
		zap.String("user_id", userID),
		zap.String("meal_id", entry.ID),
		zap.String("category", string(entry.MealCategory)),
		zap.Float64("calories", entry.Macros.Calories))
	return &entry, nil
}

// DeleteMeal removes an entry of the user
func (s *MealService) DeleteMeal(ctx context.Context, userID, mealID string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(mealID) == "" {
		return domain.ErrInvalidRequest
	}
	if err := s.meals.DeleteMeal(ctx, userID, mealID); err != nil {
		return err
	}
	invalidateRecaps(ctx, s.cache, userID)
	return nil
}

// dayBounds resolves date (YYYY-MM-DD, empty for today) in the user's
// timezone and returns the day's [start, end) instants.
func (s *MealService) dayBounds(ctx context.Context, userID, date string) (time.Time, time.Time, *time.Location, error) {
	loc, err := userLocation(ctx, s.profiles, userID, s.defaultTimezone)
	if err != nil {
		return time.Time{}, time.Time{}, nil, err
	}

	var start time.Time
	if date == "" {
		now := s.now().In(loc)
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	} else if start, err = domain.ParseDate(date, loc); err != nil {
		return time.Time{}, time.Time{}, nil, err
	}
	end := time.Date(start.Year(), start.Month(), start.Day()+1, 0, 0, 0, 0, loc)
	return start, end, loc, nil
}

// ListMeals returns the entries the user logged on date in their timezone
func (s *MealService) ListMeals(ctx context.Context, userID, date string) ([]domain.MealEntry, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrInvalidRequest
	}
	start, end, _, err := s.dayBounds(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	return s.meals.ListMeals(ctx, userID, start, end)
}

// DailySummary is the dashboard view of one day
type DailySummary struct {
	Date       string                                `json:"date"`
	Timezone   string                                `json:"timezone"`
	Totals     domain.Macros                         `json:"totals"`
	ByCategory map[domain.MealCategory]domain.Macros `json:"byCategory"`
	Target     *domain.Macros                        `json:"target"`
	Remaining  *domain.Macros                        `json:"remaining,omitempty"`
	Entries    []domain.MealEntry                    `json:"entries"`
}

// DailyTotal sums the user's entries for date. Target and Remaining are nil
// while the profile or goal is too incomplete to derive a target.
func (s *MealService) DailyTotal(ctx context.Context, userID, date string) (*DailySummary, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrInvalidRequest
	}
	start, end, loc, err := s.dayBounds(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	entries, err := s.meals.ListMeals(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	summary := &DailySummary{
		Date:       domain.LocalDate(start, loc),
		Timezone:   loc.String(),
		Totals:     calculation.DailyTotal(entries, start, loc),
		ByCategory: calculation.CategoryTotals(entries),
		Entries:    entries,
	}

	target, err := s.targets.UserTargetMacros(ctx, userID)
	switch {
	case err == nil:
		summary.Target = target
		remaining := domain.Macros{
			Calories: target.Calories - summary.Totals.Calories,
			Protein:  target.Protein - summary.Totals.Protein,
			Carbs:    target.Carbs - summary.Totals.Carbs,
			Fat:      target.Fat - summary.Totals.Fat,
		}
		summary.Remaining = &remaining
	case errors.Is(err, domain.ErrTargetUndetermined):
	default:
		return nil, err
	}

	return summary, nil
}

// ExtractRequest carries exactly one of Text, Transcript or Image
type ExtractRequest struct {
	Text       string
	Transcript string
	Image      []byte
	MimeType   string
}

// ExtractMeal turns a description, transcript or photo into a meal estimate.
// Text and transcript results are cached by their normalized wording.
func (s *MealService) ExtractMeal(ctx context.Context, req ExtractRequest) (*domain.MealExtraction, error) {
	if s.extractor == nil {
		return nil, domain.ErrExtractionUnavailable
	}

	inputs := 0
	for _, set := range []bool{strings.TrimSpace(req.Text) != "", strings.TrimSpace(req.Transcript) != "", len(req.Image) > 0} {
		if set {
			inputs++
		}
	}
	if inputs != 1 {
		return nil, fmt.Errorf("%w: provide exactly one of text, transcript or image", domain.ErrInvalidRequest)
	}

	if len(req.Image) > 0 {
		return s.extractor.ExtractFromImage(ctx, req.Image, req.MimeType)
	}

	source, text, extract := "text", req.Text, s.extractor.ExtractFromText
	if strings.TrimSpace(text) == "" {
		source, text, extract = "transcript", req.Transcript, s.extractor.ExtractFromTranscript
	}

	normalized := extraction.NormalizeText(text)
	key := extractionCacheKey(source, normalized)
	useCache := s.cache != nil && normalized != ""
	if useCache {
		var cached domain.MealExtraction
		if err := cache.GetJSON(ctx, s.cache, key, &cached); err == nil {
			logger.Debug("[EXTRACT] cache hit", zap.String("key", key))
			return &cached, nil
		}
	}

	result, err := extract(ctx, text)
	if err != nil {
		return nil, err
	}

	if useCache {
		if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
			logger.Warn("[EXTRACT] cache write failed", zap.Error(err))
		}
	}
	return result, nil
}
