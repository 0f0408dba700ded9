package domain

import "math"

// Energy density of each macronutrient in kcal per gram.
const (
	KcalPerGramProtein = 4.0
	KcalPerGramCarbs   = 4.0
	KcalPerGramFat     = 9.0
)

// Macros is a calorie and macronutrient quantity. Calories are kcal,
// protein/carbs/fat are grams. Computed targets hold whole numbers.
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Add returns the component-wise sum of m and o. Non-finite components of
// either operand count as 0.
func (m Macros) Add(o Macros) Macros {
	return Macros{
		Calories: finite(m.Calories) + finite(o.Calories),
		Protein:  finite(m.Protein) + finite(o.Protein),
		Carbs:    finite(m.Carbs) + finite(o.Carbs),
		Fat:      finite(m.Fat) + finite(o.Fat),
	}
}

// Sanitize replaces NaN and infinite components with 0.
func (m Macros) Sanitize() Macros {
	return Macros{
		Calories: finite(m.Calories),
		Protein:  finite(m.Protein),
		Carbs:    finite(m.Carbs),
		Fat:      finite(m.Fat),
	}
}

// IsZero reports whether all components are 0.
func (m Macros) IsZero() bool {
	return m == Macros{}
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
