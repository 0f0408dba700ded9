package usecase

import (
	"context"
	"strings"

	"github.com/nutricoach/backend/internal/domain"
	"github.com/nutricoach/backend/internal/logger"
	"go.uber.org/zap"
)

// ProfileService reads and merges user profiles and goals
type ProfileService struct {
	repo  domain.ProfileRepository
	cache domain.CacheRepository
}

// NewProfileService creates a profile service. cache may be nil.
func NewProfileService(repo domain.ProfileRepository, cache domain.CacheRepository) *ProfileService {
	return &ProfileService{repo: repo, cache: cache}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrInvalidRequest
	}
	return s.repo.GetProfile(ctx, userID)
}

// UpdateProfile applies patch on top of the stored profile, creating it if needed.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, patch domain.ProfilePatch) (*domain.UserProfile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrInvalidRequest
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	profile, err := s.repo.UpdateProfile(ctx, userID, func(current *domain.UserProfile) (*domain.UserProfile, error) {
		if current == nil {
			current = &domain.UserProfile{}
		}
		patch.Apply(current)
		current.UserID = userID
		return current, nil
	})
	if err != nil {
		return nil, err
	}

	// Targets derive from the profile, so cached recaps are stale now.
	invalidateRecaps(ctx, s.cache, userID)
	logger.Info("profile updated", zap.String("user_id", userID))
	return profile, nil
}

func (s *ProfileService) GetGoal(ctx context.Context, userID string) (*domain.UserGoal, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrInvalidRequest
	}
	return s.repo.GetGoal(ctx, userID)
}

// UpdateGoal applies patch on top of the stored goal, creating it if needed.
// A new goal starts as a percentage-based maintenance goal.
func (s *ProfileService) UpdateGoal(ctx context.Context, userID string, patch domain.GoalPatch) (*domain.UserGoal, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrInvalidRequest
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	goal, err := s.repo.UpdateGoal(ctx, userID, func(current *domain.UserGoal) (*domain.UserGoal, error) {
		if current == nil {
			current = &domain.UserGoal{
				Type:     domain.GoalMaintenance,
				Strategy: domain.StrategyPercentage,
			}
		}
		patch.Apply(current)
		current.UserID = userID
		return current, nil
	})
	if err != nil {
		return nil, err
	}

	invalidateRecaps(ctx, s.cache, userID)
	logger.Info("goal updated", zap.String("user_id", userID), zap.String("strategy", string(goal.Strategy)))
	return goal, nil
}
