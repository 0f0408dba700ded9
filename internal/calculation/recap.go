package calculation

import (
	"math"
	"time"

	"github.com/nutricoach/backend/internal/domain"
)

// DefaultTolerance is the allowed relative deviation from each macro target.
const DefaultTolerance = 0.10

// Recap compares daily totals against target for every calendar day in
// [start, end], both read in timezone, using DefaultTolerance.
func Recap(entries []domain.MealEntry, target domain.Macros, start, end time.Time, timezone string) (*domain.RecapMetrics, error) {
	return RecapWithTolerance(entries, target, start, end, timezone, DefaultTolerance)
}

// RecapWithTolerance is Recap with an explicit tolerance band.
//
// Entries are bucketed by their local date in timezone; entries outside the
// range are ignored. A day meets the target only when calories, protein,
// carbs and fat are each within tolerance of their target.
//
// An unknown timezone returns domain.ErrInvalidTimezone and an end date
// before the start date returns domain.ErrInvalidDateRange.
func RecapWithTolerance(entries []domain.MealEntry, target domain.Macros, start, end time.Time, timezone string, tolerance float64) (*domain.RecapMetrics, error) {
	loc, err := domain.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}

	days := EnumerateDays(start, end, loc)
	if len(days) == 0 {
		return nil, domain.ErrInvalidDateRange
	}

	buckets := make(map[string]domain.Macros, len(days))
	for _, day := range days {
		buckets[day] = domain.Macros{}
	}
	for _, entry := range entries {
		day := domain.LocalDate(entry.Timestamp, loc)
		total, ok := buckets[day]
		if !ok {
			continue
		}
		buckets[day] = total.Add(entry.Macros)
	}

	recap := &domain.RecapMetrics{
		StartDate: days[0],
		EndDate:   days[len(days)-1],
		Timezone:  loc.String(),
		TotalDays: len(days),
		Target:    target,
		Days:      make([]domain.DayRecap, 0, len(days)),
	}

	var sum domain.Macros
	for _, day := range days {
		totals := buckets[day]
		met := MeetsTarget(totals, target, tolerance)
		if met {
			recap.TargetMetDays.Count++
		}
		sum = sum.Add(totals)
		recap.Days = append(recap.Days, domain.DayRecap{Date: day, Totals: totals, MetTarget: met})
	}

	n := float64(recap.TotalDays)
	recap.TargetMetDays.Percentage = float64(recap.TargetMetDays.Count) / n * 100
	recap.Average = domain.Macros{
		Calories: sum.Calories / n,
		Protein:  sum.Protein / n,
		Carbs:    sum.Carbs / n,
		Fat:      sum.Fat / n,
	}

	return recap, nil
}

// MeetsTarget reports whether every macro in actual is within tolerance of
// the corresponding target value.
func MeetsTarget(actual, target domain.Macros, tolerance float64) bool {
	return withinTolerance(actual.Calories, target.Calories, tolerance) &&
		withinTolerance(actual.Protein, target.Protein, tolerance) &&
		withinTolerance(actual.Carbs, target.Carbs, tolerance) &&
		withinTolerance(actual.Fat, target.Fat, tolerance)
}

// withinTolerance checks |actual-target| <= tolerance*|target|. A zero
// target is only met by a zero actual.
func withinTolerance(actual, target, tolerance float64) bool {
	if target == 0 {
		return actual == 0
	}
	band := math.Abs(target) * tolerance
	return math.Abs(actual-target) <= band+1e-9
}

// EnumerateDays lists the calendar dates from start to end inclusive, as
// YYYY-MM-DD strings in loc. It is empty when end falls before start.
func EnumerateDays(start, end time.Time, loc *time.Location) []string {
	if loc == nil {
		loc = time.UTC
	}
	s := start.In(loc)
	e := end.In(loc)
	first := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, time.UTC)

	var days []string
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(domain.DateLayout))
	}
	return days
}
