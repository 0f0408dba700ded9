package calculation

import "github.com/nutricoach/backend/internal/domain"

const (
	kgPerLb = 0.453592
	cmPerIn = 2.54
)

// WeightInKg returns the profile weight in kilograms, or 0 when unknown.
func WeightInKg(p *domain.UserProfile) float64 {
	if p == nil || p.Weight == 0 {
		return 0
	}
	if p.IsImperial() {
		return p.Weight * kgPerLb
	}
	return p.Weight
}

// HeightInCm returns the profile height in centimetres, or 0 when unknown.
// Imperial heights are total inches.
func HeightInCm(p *domain.UserProfile) float64 {
	if p == nil || p.Height == 0 {
		return 0
	}
	if p.IsImperial() {
		return p.Height * cmPerIn
	}
	return p.Height
}
