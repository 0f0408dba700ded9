package calculation

import "github.com/nutricoach/backend/internal/domain"

// Protein grams per kg of bodyweight by goal type, used when a bodyweight
// goal leaves ProteinPerBodyweight unset.
var defaultProteinPerKg = map[domain.GoalType]float64{
	domain.GoalWeightLoss:  2.2,
	domain.GoalMuscleGain:  2.0,
	domain.GoalWeightGain:  1.8,
	domain.GoalMaintenance: 1.6,
}

// Protein grams per lb of bodyweight by goal type, for imperial profiles.
var defaultProteinPerLb = map[domain.GoalType]float64{
	domain.GoalWeightLoss:  1.0,
	domain.GoalMuscleGain:  0.9,
	domain.GoalWeightGain:  0.8,
	domain.GoalMaintenance: 0.7,
}

const (
	fallbackProteinPerKg = 1.6
	fallbackProteinPerLb = 0.7
)

// defaultRemainingSplits divides post-protein calories by goal type.
var defaultRemainingSplits = map[domain.GoalType]domain.RemainingSplit{
	domain.GoalWeightLoss:  {Carbs: 0.45, Fat: 0.55},
	domain.GoalMaintenance: {Carbs: 0.55, Fat: 0.45},
	domain.GoalWeightGain:  {Carbs: 0.60, Fat: 0.40},
	domain.GoalMuscleGain:  {Carbs: 0.65, Fat: 0.35},
}

var evenRemainingSplit = domain.RemainingSplit{Carbs: 0.5, Fat: 0.5}

// BodyweightMacros anchors protein to bodyweight and splits the remaining
// calories between carbs and fat. It returns nil when the profile has no
// weight.
//
// Protein is rounded before the remaining calories are derived from it;
// reordering those steps changes carbs and fat by a gram here and there.
// The remainder may be negative and is not clamped. Calories in the result
// is calorieTarget, not the sum of the macro calories.
func BodyweightMacros(goal *domain.UserGoal, p *domain.UserProfile, calorieTarget int) *domain.Macros {
	if goal == nil || p == nil {
		return nil
	}
	weightKg := WeightInKg(p)
	if weightKg == 0 {
		return nil
	}

	var rawProtein float64
	if p.IsImperial() {
		rawProtein = p.Weight * proteinPerBodyweight(goal, true)
	} else {
		rawProtein = weightKg * proteinPerBodyweight(goal, false)
	}
	protein := round(rawProtein)

	remaining := float64(calorieTarget) - protein*domain.KcalPerGramProtein
	split := remainingSplit(goal)

	return &domain.Macros{
		Calories: float64(calorieTarget),
		Protein:  protein,
		Carbs:    round(remaining * split.Carbs / domain.KcalPerGramCarbs),
		Fat:      round(remaining * split.Fat / domain.KcalPerGramFat),
	}
}

func proteinPerBodyweight(goal *domain.UserGoal, imperial bool) float64 {
	if goal.ProteinPerBodyweight > 0 {
		return goal.ProteinPerBodyweight
	}
	if imperial {
		if v, ok := defaultProteinPerLb[goal.Type]; ok {
			return v
		}
		return fallbackProteinPerLb
	}
	if v, ok := defaultProteinPerKg[goal.Type]; ok {
		return v
	}
	return fallbackProteinPerKg
}

func remainingSplit(goal *domain.UserGoal) domain.RemainingSplit {
	if goal.RemainingSplit != nil {
		return *goal.RemainingSplit
	}
	if s, ok := defaultRemainingSplits[goal.Type]; ok {
		return s
	}
	return evenRemainingSplit
}
