package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/nutricoach/backend/internal/calculation"
	"github.com/nutricoach/backend/internal/domain"
)

// TargetService computes daily macro targets
type TargetService struct {
	profiles domain.ProfileRepository
}

func NewTargetService(profiles domain.ProfileRepository) *TargetService {
	return &TargetService{profiles: profiles}
}

// Calculate runs the target pipeline on a profile and goal that are not stored.
// It returns domain.ErrTargetUndetermined when no target can be derived.
func (s *TargetService) Calculate(profile *domain.UserProfile, goal *domain.UserGoal) (*calculation.Breakdown, error) {
	breakdown, ok := calculation.TargetBreakdown(profile, goal)
	if !ok {
		return nil, domain.ErrTargetUndetermined
	}
	return &breakdown, nil
}

// UserTargets computes the target for the stored profile and goal of userID.
func (s *TargetService) UserTargets(ctx context.Context, userID string) (*calculation.Breakdown, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrInvalidRequest
	}

	profile, goal, err := loadTargetInputs(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrProfileNotFound
	}
	if goal == nil {
		return nil, domain.ErrGoalNotFound
	}
	return s.Calculate(profile, goal)
}

// UserTargetMacros is UserTargets reduced to the macros. A missing profile
// or goal reads as domain.ErrTargetUndetermined.
func (s *TargetService) UserTargetMacros(ctx context.Context, userID string) (*domain.Macros, error) {
	breakdown, err := s.UserTargets(ctx, userID)
	if errors.Is(err, domain.ErrProfileNotFound) || errors.Is(err, domain.ErrGoalNotFound) {
		return nil, domain.ErrTargetUndetermined
	}
	if err != nil {
		return nil, err
	}
	return breakdown.Macros, nil
}
