package calculation

import (
	"math"

	"github.com/nutricoach/backend/internal/domain"
)

// CalorieTarget applies the goal's signed adjustment to a TDEE. The result
// is never negative, however large the deficit.
func CalorieTarget(tdee int, goal *domain.UserGoal) int {
	var adjustment float64
	if goal != nil {
		adjustment = goal.AdjustmentPercentage
	}
	return int(round(math.Max(0, float64(tdee)*(1+adjustment))))
}
