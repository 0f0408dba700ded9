package calculation

import (
	"time"

	"github.com/nutricoach/backend/internal/domain"
)

// ItemMacros returns the macros an item contributes to its entry.
func ItemMacros(item domain.MealItem) domain.Macros {
	return item.Macros
}

// EntryMacros sums the macros of items. An empty list sums to zero.
func EntryMacros(items []domain.MealItem) domain.Macros {
	var total domain.Macros
	for _, item := range items {
		total = total.Add(ItemMacros(item))
	}
	return total
}

// DailyTotal sums the stored Macros of the entries whose timestamp falls on
// the same calendar day as referenceDate, both read in loc. A nil loc is UTC.
//
// The stored entry total is the single source; items are not re-summed.
func DailyTotal(entries []domain.MealEntry, referenceDate time.Time, loc *time.Location) domain.Macros {
	if loc == nil {
		loc = time.UTC
	}
	day := domain.LocalDate(referenceDate, loc)

	var total domain.Macros
	for _, entry := range entries {
		if domain.LocalDate(entry.Timestamp, loc) != day {
			continue
		}
		total = total.Add(entry.Macros)
	}
	return total
}

// CategoryTotals sums the stored entry Macros per meal category.
func CategoryTotals(entries []domain.MealEntry) map[domain.MealCategory]domain.Macros {
	totals := make(map[domain.MealCategory]domain.Macros)
	for _, entry := range entries {
		totals[entry.MealCategory] = totals[entry.MealCategory].Add(entry.Macros)
	}
	return totals
}
