package calculation

import "github.com/nutricoach/backend/internal/domain"

// activityMultipliers maps each activity level to its TDEE multiplier.
var activityMultipliers = map[domain.ActivityLevel]float64{
	domain.ActivitySedentary:  1.2,
	domain.ActivityLight:      1.375,
	domain.ActivityModerate:   1.55,
	domain.ActivityActive:     1.725,
	domain.ActivityVeryActive: 1.9,
}

// ActivityMultiplier returns the multiplier for level. Missing and
// unrecognized levels use the sedentary multiplier.
func ActivityMultiplier(level domain.ActivityLevel) float64 {
	if m, ok := activityMultipliers[level]; ok {
		return m
	}
	return activityMultipliers[domain.ActivitySedentary]
}

// TDEE scales a BMR by the activity multiplier and rounds.
func TDEE(bmr int, level domain.ActivityLevel) int {
	return int(round(float64(bmr) * ActivityMultiplier(level)))
}
