package calculation

import (
	"testing"

	"github.com/nutricoach/backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func metricProfile(age int, gender domain.Gender, weightKg, heightCm float64) *domain.UserProfile {
	return &domain.UserProfile{
		Age:        age,
		Gender:     gender,
		UnitSystem: domain.UnitMetric,
		Weight:     weightKg,
		Height:     heightCm,
	}
}

func TestWeightInKg(t *testing.T) {
	tests := []struct {
		name    string
		profile *domain.UserProfile
		want    float64
	}{
		{"nil profile", nil, 0},
		{"metric unchanged", &domain.UserProfile{UnitSystem: domain.UnitMetric, Weight: 80}, 80},
		{"no unit system is metric", &domain.UserProfile{Weight: 72.5}, 72.5},
		{"imperial converted", &domain.UserProfile{UnitSystem: domain.UnitImperial, Weight: 200}, 90.7184},
		{"missing weight", &domain.UserProfile{UnitSystem: domain.UnitImperial}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, WeightInKg(tt.profile), 1e-9)
		})
	}
}

func TestHeightInCm(t *testing.T) {
	tests := []struct {
		name    string
		profile *domain.UserProfile
		want    float64
	}{
		{"nil profile", nil, 0},
		{"metric unchanged", &domain.UserProfile{UnitSystem: domain.UnitMetric, Height: 180}, 180},
		{"imperial inches", &domain.UserProfile{UnitSystem: domain.UnitImperial, Height: 70}, 177.8},
		{"imperial feet and inches", &domain.UserProfile{UnitSystem: domain.UnitImperial, Height: domain.ComposeInches(5, 11)}, 180.34},
		{"missing height", &domain.UserProfile{UnitSystem: domain.UnitMetric}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, HeightInCm(tt.profile), 1e-9)
		})
	}
}

func TestBMR(t *testing.T) {
	tests := []struct {
		name    string
		profile *domain.UserProfile
		want    int
	}{
		{"male", metricProfile(30, domain.GenderMale, 80, 180), 1780},
		{"female", metricProfile(30, domain.GenderFemale, 60, 165), 1320},
		{"other uses female constant", metricProfile(30, domain.GenderOther, 60, 165), 1320},
		// 10*70.5 + 6.25*172.2 - 5*41 + 5 = 1581.25
		{"rounds to nearest", metricProfile(41, domain.GenderMale, 70.5, 172.2), 1581},
		// 10*90.7184 + 6.25*177.8 - 5*45 + 5 = 1798.434
		{"imperial profile converted first", &domain.UserProfile{
			Age: 45, Gender: domain.GenderMale, UnitSystem: domain.UnitImperial, Weight: 200, Height: 70,
		}, 1798},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BMR(tt.profile)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBMR_HalfRoundsUp(t *testing.T) {
	// 10*60 + 6.25*162 - 5*20 - 161 = 1351.5
	got, ok := BMR(metricProfile(20, domain.GenderFemale, 60, 162))
	assert.True(t, ok)
	assert.Equal(t, 1352, got)
}

func TestBMR_MissingFields(t *testing.T) {
	cases := []struct {
		name  string
		mutFn func(p *domain.UserProfile)
	}{
		{"missing weight", func(p *domain.UserProfile) { p.Weight = 0 }},
		{"missing height", func(p *domain.UserProfile) { p.Height = 0 }},
		{"missing age", func(p *domain.UserProfile) { p.Age = 0 }},
		{"missing gender", func(p *domain.UserProfile) { p.Gender = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := metricProfile(30, domain.GenderMale, 80, 180)
			tc.mutFn(p)
			got, ok := BMR(p)
			assert.False(t, ok)
			assert.Zero(t, got)
		})
	}

	t.Run("nil profile", func(t *testing.T) {
		got, ok := BMR(nil)
		assert.False(t, ok)
		assert.Zero(t, got)
	})
}

func TestTDEE(t *testing.T) {
	tests := []struct {
		level domain.ActivityLevel
		want  int
	}{
		{domain.ActivitySedentary, 2136},
		{domain.ActivityLight, 2448},
		{domain.ActivityModerate, 2759},
		{domain.ActivityActive, 3071},
		{domain.ActivityVeryActive, 3382},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			assert.Equal(t, tt.want, TDEE(1780, tt.level))
		})
	}
}

func TestTDEE_DefaultsToSedentary(t *testing.T) {
	for _, bmr := range []int{0, 1, 1200, 1780, 2531} {
		assert.Equal(t, TDEE(bmr, domain.ActivitySedentary), TDEE(bmr, ""))
		assert.Equal(t, TDEE(bmr, domain.ActivitySedentary), TDEE(bmr, "couch"))
	}
}

func TestCalorieTarget(t *testing.T) {
	tests := []struct {
		name       string
		tdee       int
		adjustment float64
		want       int
	}{
		{"deficit", 2136, -0.20, 1709},
		{"surplus", 2000, 0.15, 2300},
		{"maintenance", 2500, 0, 2500},
		{"full deficit", 2500, -1, 0},
		{"beyond full deficit clamps to zero", 2500, -1.5, 0},
		{"zero tdee", 0, 0.3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goal := &domain.UserGoal{AdjustmentPercentage: tt.adjustment}
			assert.Equal(t, tt.want, CalorieTarget(tt.tdee, goal))
		})
	}

	t.Run("never negative", func(t *testing.T) {
		for _, adj := range []float64{-0.5, -0.99, -1, -1.01, -2, -10} {
			for _, tdee := range []int{0, 1, 1500, 4000} {
				got := CalorieTarget(tdee, &domain.UserGoal{AdjustmentPercentage: adj})
				assert.GreaterOrEqual(t, got, 0)
			}
		}
	})
}
