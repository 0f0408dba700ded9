package calculation

import "github.com/nutricoach/backend/internal/domain"

// ResolveMacros picks the macro strategy named by the goal and applies it to
// calorieTarget. It returns nil when goal or profile is nil or calorieTarget
// is 0.
//
// Strategies other than bodyweight and calories-percentage-based fall back
// to the percentage calculator with DefaultSplit.
func ResolveMacros(goal *domain.UserGoal, p *domain.UserProfile, calorieTarget int) *domain.Macros {
	if goal == nil || p == nil || calorieTarget == 0 {
		return nil
	}

	switch goal.Strategy {
	case domain.StrategyBodyweight:
		return BodyweightMacros(goal, p, calorieTarget)
	case domain.StrategyPercentage:
		m := PercentageMacros(calorieTarget, goal.Split)
		return &m
	default:
		m := PercentageMacros(calorieTarget, nil)
		return &m
	}
}
