package calculation

import "github.com/nutricoach/backend/internal/domain"

// BMR estimates basal metabolic rate with the Mifflin-St Jeor equation.
// Weight and height are resolved to kg and cm first. ok is false, with a 0
// result, when weight, height, age or gender is missing.
//
// Gender "other" uses the female constant.
func BMR(p *domain.UserProfile) (bmr int, ok bool) {
	if p == nil {
		return 0, false
	}
	weight := WeightInKg(p)
	height := HeightInCm(p)
	if weight == 0 || height == 0 || p.Age == 0 || p.Gender == "" {
		return 0, false
	}

	base := 10*weight + 6.25*height - 5*float64(p.Age)
	if p.Gender == domain.GenderMale {
		base += 5
	} else {
		base -= 161
	}
	return int(round(base)), true
}
