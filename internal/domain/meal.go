package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MealCategory groups meal entries on the dashboard.
type MealCategory string

const (
	MealBreakfast MealCategory = "breakfast"
	MealLunch     MealCategory = "lunch"
	MealDinner    MealCategory = "dinner"
	MealSnack     MealCategory = "snack"
)

// ParseMealCategory maps free-form text onto a category. Unknown values are snacks.
func ParseMealCategory(s string) MealCategory {
	switch c := MealCategory(strings.ToLower(strings.TrimSpace(s))); c {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return c
	default:
		return MealSnack
	}
}

// MealItem is a single logged food.
type MealItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Macros      Macros  `json:"macros"`
	Servings    float64 `json:"servings"`
	ServingSize string  `json:"servingSize"`
}

// MealEntry is one logged meal. Macros is the stored total of Items and is
// the value every aggregation reads; Items is kept for itemized display.
// Entries are immutable once built: updates replace the whole entry.
type MealEntry struct {
	ID           string       `json:"id"`
	UserID       string       `json:"userId"`
	MealCategory MealCategory `json:"mealCategory"`
	Description  string       `json:"description"`
	Items        []MealItem   `json:"items"`
	Macros       Macros       `json:"macros"`
	Timestamp    time.Time    `json:"timestamp"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// NewMealEntryInput carries what a caller supplies when logging a meal.
type NewMealEntryInput struct {
	UserID       string
	MealCategory MealCategory
	Description  string
	Items        []MealItem
	Timestamp    time.Time
}

// NewMealEntry builds an entry, assigning IDs and computing Macros from the
// items exactly once. sum is the item aggregation used by the whole service.
// A zero Timestamp takes the creation time.
func NewMealEntry(in NewMealEntryInput, now time.Time, sum func([]MealItem) Macros) MealEntry {
	items := make([]MealItem, len(in.Items))
	for i, item := range in.Items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.Macros = item.Macros.Sanitize()
		items[i] = item
	}

	ts := in.Timestamp
	if ts.IsZero() {
		ts = now
	}

	return MealEntry{
		ID:           uuid.NewString(),
		UserID:       in.UserID,
		MealCategory: ParseMealCategory(string(in.MealCategory)),
		Description:  strings.TrimSpace(in.Description),
		Items:        items,
		Macros:       sum(items),
		Timestamp:    ts.UTC(),
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}
}

// MealExtraction is the structured estimate returned by the meal
// extraction service for a text, transcript or photo.
type MealExtraction struct {
	Items        []MealItem   `json:"items"`
	MealCategory MealCategory `json:"mealCategory"`
	Description  string       `json:"description"`
	TotalMacros  Macros       `json:"totalMacros"`
}
