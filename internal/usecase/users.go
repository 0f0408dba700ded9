package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nutricoach/backend/internal/domain"
	"github.com/nutricoach/backend/internal/infrastructure/cache"
	"github.com/nutricoach/backend/internal/logger"
	"go.uber.org/zap"
)

// recapCacheKey is "recap:{user}:{generation}:{start}:{end}"
func recapCacheKey(userID, generation, start, end string) string {
	return fmt.Sprintf("recap:%s:%s:%s:%s", userID, generation, start, end)
}

// recapGenerationTTL outlives any cached recap, so a generation never lapses
// while entries keyed by it are still served.
const recapGenerationTTL = 30 * 24 * time.Hour

type recapGenerationMark struct {
	ID string `json:"id"`
}

func recapGenerationKey(userID string) string {
	return "recapgen:" + userID
}

// recapGeneration returns the user's current recap generation, "0" until the
// user's data first changes.
func recapGeneration(ctx context.Context, c domain.CacheRepository, userID string) string {
	var mark recapGenerationMark
	if c == nil || cache.GetJSON(ctx, c, recapGenerationKey(userID), &mark) != nil || mark.ID == "" {
		return "0"
	}
	return mark.ID
}

// extractionCacheKey is "extraction:{source}:{sha256 of normalized text}".
// Text and transcript replies come from different prompts and are kept apart.
func extractionCacheKey(source, normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return "extraction:" + source + ":" + hex.EncodeToString(sum[:])
}

func recapCachePrefix(userID string) string {
	return fmt.Sprintf("recap:%s:", userID)
}

// invalidateRecaps starts a new recap generation for the user, so recaps
// computed from earlier data are never served again even when they are
// written after this call, then drops the cached ones it can.
func invalidateRecaps(ctx context.Context, c domain.CacheRepository, userID string) {
	if c == nil {
		return
	}
	mark := recapGenerationMark{ID: uuid.NewString()}
	if err := c.Set(ctx, recapGenerationKey(userID), mark, recapGenerationTTL); err != nil {
		logger.Warn("[CACHE] recap generation write failed", zap.String("user_id", userID), zap.Error(err))
	}

	deleter, ok := c.(domain.PrefixDeleter)
	if !ok {
		return
	}
	if err := deleter.DeletePrefix(ctx, recapCachePrefix(userID)); err != nil {
		logger.Warn("[CACHE] recap invalidation failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// userLocation resolves the user's profile timezone, falling back to
// fallback when the user has no profile or no timezone.
func userLocation(ctx context.Context, profiles domain.ProfileRepository, userID, fallback string) (*time.Location, error) {
	profile, err := profiles.GetProfile(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, err
	}
	if profile != nil && profile.Timezone != "" {
		return domain.LoadLocation(profile.Timezone)
	}
	return domain.LoadLocation(fallback)
}

// loadTargetInputs fetches profile and goal, treating a missing one as nil.
func loadTargetInputs(ctx context.Context, profiles domain.ProfileRepository, userID string) (*domain.UserProfile, *domain.UserGoal, error) {
	profile, err := profiles.GetProfile(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, nil, err
	}
	goal, err := profiles.GetGoal(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrGoalNotFound) {
		return nil, nil, err
	}
	return profile, goal, nil
}
