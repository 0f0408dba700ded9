package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/nutricoach/backend/internal/domain"
)

// mealRow maps to meal_entries. Items are stored as a JSON array and the
// entry total as four columns.
type mealRow struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	MealCategory string    `db:"meal_category"`
	Description  string    `db:"description"`
	Items        []byte    `db:"items"`
	Calories     float64   `db:"calories"`
	Protein      float64   `db:"protein"`
	Carbs        float64   `db:"carbs"`
	Fat          float64   `db:"fat"`
	LoggedAt     time.Time `db:"logged_at"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r mealRow) toDomain() (domain.MealEntry, error) {
	var items []domain.MealItem
	if len(r.Items) > 0 {
		if err := json.Unmarshal(r.Items, &items); err != nil {
			return domain.MealEntry{}, fmt.Errorf("decode items of meal %s: %w", r.ID, err)
		}
	}
	if items == nil {
		items = []domain.MealItem{}
	}

	return domain.MealEntry{
		ID:           r.ID,
		UserID:       r.UserID,
		MealCategory: domain.MealCategory(r.MealCategory),
		Description:  r.Description,
		Items:        items,
		Macros:       domain.Macros{Calories: r.Calories, Protein: r.Protein, Carbs: r.Carbs, Fat: r.Fat},
		Timestamp:    r.LoggedAt.UTC(),
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}, nil
}

func mealArgs(e *domain.MealEntry) (pgx.NamedArgs, error) {
	items := e.Items
	if items == nil {
		items = []domain.MealItem{}
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}
	m := e.Macros.Sanitize()
	return pgx.NamedArgs{
		"id":           e.ID,
		"userID":       e.UserID,
		"mealCategory": string(e.MealCategory),
		"description":  e.Description,
		"items":        string(encoded),
		"calories":     m.Calories,
		"protein":      m.Protein,
		"carbs":        m.Carbs,
		"fat":          m.Fat,
		"loggedAt":     e.Timestamp,
		"createdAt":    e.CreatedAt,
		"updatedAt":    e.UpdatedAt,
	}, nil
}

const mealColumns = "id, user_id, meal_category, description, items, calories, protein, carbs, fat, logged_at, created_at, updated_at"

// ListMeals returns the user's entries with from <= timestamp < to, oldest first
func (s *Store) ListMeals(ctx context.Context, userID string, from, to time.Time) ([]domain.MealEntry, error) {
	rows, err := queryMany[mealRow](ctx, s.pool,
		"SELECT "+mealColumns+` FROM meal_entries
		WHERE user_id = @userID AND logged_at >= @from AND logged_at < @to
		ORDER BY logged_at, created_at`,
		pgx.NamedArgs{"userID": userID, "from": from, "to": to})
	if err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}

	entries := make([]domain.MealEntry, 0, len(rows))
	for _, row := range rows {
		entry, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// GetMeal returns one entry or domain.ErrMealNotFound
func (s *Store) GetMeal(ctx context.Context, userID, mealID string) (*domain.MealEntry, error) {
	row, err := queryOne[mealRow](ctx, s.pool,
		"SELECT "+mealColumns+" FROM meal_entries WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": mealID, "userID": userID})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrMealNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get meal: %w", err)
	}
	entry, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// CreateMeal inserts a new entry
func (s *Store) CreateMeal(ctx context.Context, entry *domain.MealEntry) error {
	args, err := mealArgs(entry)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO meal_entries (`+mealColumns+`)
		VALUES (@id, @userID, @mealCategory, @description, @items::jsonb,
			@calories, @protein, @carbs, @fat, @loggedAt, @createdAt, @updatedAt)`,
		args)
	if err != nil {
		return fmt.Errorf("create meal: %w", err)
	}
	return nil
}

// DeleteMeal removes an entry or returns domain.ErrMealNotFound
func (s *Store) DeleteMeal(ctx context.Context, userID, mealID string) error {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM meal_entries WHERE id = @id AND user_id = @userID",
		pgx.NamedArgs{"id": mealID, "userID": userID})
	if err != nil {
		return fmt.Errorf("delete meal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMealNotFound
	}
	return nil
}
