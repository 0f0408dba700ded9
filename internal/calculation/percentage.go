package calculation

import "github.com/nutricoach/backend/internal/domain"

// DefaultSplit is used when a percentage goal has no split of its own.
var DefaultSplit = domain.MacroSplit{Protein: 0.30, Carbs: 0.40, Fat: 0.30}

// PercentageMacros splits calorieTarget by the given fractions. A nil split
// uses DefaultSplit. Calories in the result is calorieTarget unchanged.
func PercentageMacros(calorieTarget int, split *domain.MacroSplit) domain.Macros {
	s := DefaultSplit
	if split != nil {
		s = *split
	}
	target := float64(calorieTarget)
	return domain.Macros{
		Calories: target,
		Protein:  round(target * s.Protein / domain.KcalPerGramProtein),
		Carbs:    round(target * s.Carbs / domain.KcalPerGramCarbs),
		Fat:      round(target * s.Fat / domain.KcalPerGramFat),
	}
}
