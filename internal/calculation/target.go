package calculation

import "github.com/nutricoach/backend/internal/domain"

// TargetMacros computes the daily macro target for a user:
// BMR -> TDEE -> calorie target -> macro split.
//
// It returns nil when profile or goal is nil, when the BMR cannot be
// determined, or when the split strategy cannot produce a target.
func TargetMacros(p *domain.UserProfile, goal *domain.UserGoal) *domain.Macros {
	if p == nil || goal == nil {
		return nil
	}
	bmr, ok := BMR(p)
	if !ok {
		return nil
	}
	tdee := TDEE(bmr, p.ActivityLevel)
	calories := CalorieTarget(tdee, goal)
	return ResolveMacros(goal, p, calories)
}

// Breakdown exposes every intermediate value of TargetMacros.
type Breakdown struct {
	BMR           int            `json:"bmr"`
	TDEE          int            `json:"tdee"`
	CalorieTarget int            `json:"calorieTarget"`
	Macros        *domain.Macros `json:"macros"`
}

// TargetBreakdown runs the same pipeline as TargetMacros and keeps the
// intermediate numbers. ok is false whenever TargetMacros would return nil.
func TargetBreakdown(p *domain.UserProfile, goal *domain.UserGoal) (Breakdown, bool) {
	if p == nil || goal == nil {
		return Breakdown{}, false
	}
	bmr, ok := BMR(p)
	if !ok {
		return Breakdown{}, false
	}
	b := Breakdown{BMR: bmr}
	b.TDEE = TDEE(bmr, p.ActivityLevel)
	b.CalorieTarget = CalorieTarget(b.TDEE, goal)
	b.Macros = ResolveMacros(goal, p, b.CalorieTarget)
	return b, b.Macros != nil
}
