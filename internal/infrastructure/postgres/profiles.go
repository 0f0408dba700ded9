package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/nutricoach/backend/internal/domain"
)

// profileRow maps to user_profiles. Unset profile fields are stored as NULL.
type profileRow struct {
	UserID        string        `db:"user_id"`
	Age           pgtype.Int4   `db:"age"`
	Gender        pgtype.Text   `db:"gender"`
	Unit          pgtype.Text   `db:"unit"`
	Height        pgtype.Float8 `db:"height"`
	Weight        pgtype.Float8 `db:"weight"`
	ActivityLevel pgtype.Text   `db:"activity_level"`
	Timezone      pgtype.Text   `db:"timezone"`
}

// goalRow maps to user_goals. The split columns hold JSON objects or NULL.
type goalRow struct {
	UserID               string        `db:"user_id"`
	GoalType             string        `db:"goal_type"`
	Strategy             string        `db:"strategy"`
	AdjustmentPercentage float64       `db:"adjustment_percentage"`
	Split                []byte        `db:"split"`
	ProteinPerBodyweight pgtype.Float8 `db:"protein_per_bodyweight"`
	RemainingSplit       []byte        `db:"remaining_split"`
}

func textOrNull(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func floatOrNull(f float64) pgtype.Float8 {
	return pgtype.Float8{Float64: f, Valid: f != 0}
}

func profileToRow(p *domain.UserProfile) profileRow {
	return profileRow{
		UserID:        p.UserID,
		Age:           pgtype.Int4{Int32: int32(p.Age), Valid: p.Age != 0},
		Gender:        textOrNull(string(p.Gender)),
		Unit:          textOrNull(string(p.UnitSystem)),
		Height:        floatOrNull(p.Height),
		Weight:        floatOrNull(p.Weight),
		ActivityLevel: textOrNull(string(p.ActivityLevel)),
		Timezone:      textOrNull(p.Timezone),
	}
}

func (r profileRow) toDomain() *domain.UserProfile {
	return &domain.UserProfile{
		UserID:        r.UserID,
		Age:           int(r.Age.Int32),
		Gender:        domain.Gender(r.Gender.String),
		UnitSystem:    domain.UnitSystem(r.Unit.String),
		Height:        r.Height.Float64,
		Weight:        r.Weight.Float64,
		ActivityLevel: domain.ActivityLevel(r.ActivityLevel.String),
		Timezone:      r.Timezone.String,
	}
}

func goalToRow(g *domain.UserGoal) (goalRow, error) {
	row := goalRow{
		UserID:               g.UserID,
		GoalType:             string(g.Type),
		Strategy:             string(g.Strategy),
		AdjustmentPercentage: g.AdjustmentPercentage,
		ProteinPerBodyweight: floatOrNull(g.ProteinPerBodyweight),
	}

	var err error
	if g.Split != nil {
		if row.Split, err = json.Marshal(g.Split); err != nil {
			return goalRow{}, fmt.Errorf("encode split: %w", err)
		}
	}
	if g.RemainingSplit != nil {
		if row.RemainingSplit, err = json.Marshal(g.RemainingSplit); err != nil {
			return goalRow{}, fmt.Errorf("encode remaining split: %w", err)
		}
	}
	return row, nil
}

func (r goalRow) toDomain() (*domain.UserGoal, error) {
	goal := &domain.UserGoal{
		UserID:               r.UserID,
		Type:                 domain.GoalType(r.GoalType),
		Strategy:             domain.CalculationStrategy(r.Strategy),
		AdjustmentPercentage: r.AdjustmentPercentage,
		ProteinPerBodyweight: r.ProteinPerBodyweight.Float64,
	}
	if len(r.Split) > 0 {
		var split domain.MacroSplit
		if err := json.Unmarshal(r.Split, &split); err != nil {
			return nil, fmt.Errorf("decode split: %w", err)
		}
		goal.Split = &split
	}
	if len(r.RemainingSplit) > 0 {
		var split domain.RemainingSplit
		if err := json.Unmarshal(r.RemainingSplit, &split); err != nil {
			return nil, fmt.Errorf("decode remaining split: %w", err)
		}
		goal.RemainingSplit = &split
	}
	return goal, nil
}

// nullableJSON passes nil for an absent JSON column so it is stored as NULL
func nullableJSON(b []byte) interface{} {
	if b == nil {
		return nil
	}
	return string(b)
}

const profileColumns = "user_id, age, gender, unit, height, weight, activity_level, timezone"

// GetProfile returns the stored profile or domain.ErrProfileNotFound
func (s *Store) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	row, err := queryOne[profileRow](ctx, s.pool,
		"SELECT "+profileColumns+" FROM user_profiles WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return row.toDomain(), nil
}

// UpsertProfile inserts or replaces the user's profile
func (s *Store) UpsertProfile(ctx context.Context, profile *domain.UserProfile) error {
	return upsertProfile(ctx, s.pool, profile)
}

// UpdateProfile reads, updates and writes the profile in one transaction
// holding the user's profile lock.
func (s *Store) UpdateProfile(ctx context.Context, userID string, update func(current *domain.UserProfile) (*domain.UserProfile, error)) (*domain.UserProfile, error) {
	var updated *domain.UserProfile
	err := s.inUserTx(ctx, "profile", userID, func(tx pgx.Tx) error {
		var current *domain.UserProfile
		row, err := queryOne[profileRow](ctx, tx,
			"SELECT "+profileColumns+" FROM user_profiles WHERE user_id = @userID FOR UPDATE",
			pgx.NamedArgs{"userID": userID})
		switch {
		case errors.Is(err, pgx.ErrNoRows):
		case err != nil:
			return fmt.Errorf("get profile: %w", err)
		default:
			current = row.toDomain()
		}

		next, err := update(current)
		if err != nil {
			return err
		}
		next.UserID = userID
		if err := upsertProfile(ctx, tx, next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func upsertProfile(ctx context.Context, db dbtx, profile *domain.UserProfile) error {
	row := profileToRow(profile)
	_, err := db.Exec(ctx, `
		INSERT INTO user_profiles (`+profileColumns+`, updated_at)
		VALUES (@userID, @age, @gender, @unit, @height, @weight, @activityLevel, @timezone, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			age = EXCLUDED.age,
			gender = EXCLUDED.gender,
			unit = EXCLUDED.unit,
			height = EXCLUDED.height,
			weight = EXCLUDED.weight,
			activity_level = EXCLUDED.activity_level,
			timezone = EXCLUDED.timezone,
			updated_at = NOW()`,
		pgx.NamedArgs{
			"userID":        row.UserID,
			"age":           row.Age,
			"gender":        row.Gender,
			"unit":          row.Unit,
			"height":        row.Height,
			"weight":        row.Weight,
			"activityLevel": row.ActivityLevel,
			"timezone":      row.Timezone,
		})
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

const goalColumns = "user_id, goal_type, strategy, adjustment_percentage, split, protein_per_bodyweight, remaining_split"

// GetGoal returns the stored goal or domain.ErrGoalNotFound
func (s *Store) GetGoal(ctx context.Context, userID string) (*domain.UserGoal, error) {
	row, err := queryOne[goalRow](ctx, s.pool,
		"SELECT "+goalColumns+" FROM user_goals WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrGoalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get goal: %w", err)
	}
	return row.toDomain()
}

// UpsertGoal inserts or replaces the user's goal
func (s *Store) UpsertGoal(ctx context.Context, goal *domain.UserGoal) error {
	return upsertGoal(ctx, s.pool, goal)
}

// UpdateGoal reads, updates and writes the goal in one transaction holding
// the user's goal lock.
func (s *Store) UpdateGoal(ctx context.Context, userID string, update func(current *domain.UserGoal) (*domain.UserGoal, error)) (*domain.UserGoal, error) {
	var updated *domain.UserGoal
	err := s.inUserTx(ctx, "goal", userID, func(tx pgx.Tx) error {
		var current *domain.UserGoal
		row, err := queryOne[goalRow](ctx, tx,
			"SELECT "+goalColumns+" FROM user_goals WHERE user_id = @userID FOR UPDATE",
			pgx.NamedArgs{"userID": userID})
		switch {
		case errors.Is(err, pgx.ErrNoRows):
		case err != nil:
			return fmt.Errorf("get goal: %w", err)
		default:
			if current, err = row.toDomain(); err != nil {
				return err
			}
		}

		next, err := update(current)
		if err != nil {
			return err
		}
		next.UserID = userID
		if err := upsertGoal(ctx, tx, next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func upsertGoal(ctx context.Context, db dbtx, goal *domain.UserGoal) error {
	row, err := goalToRow(goal)
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, `
		INSERT INTO user_goals (`+goalColumns+`, updated_at)
		VALUES (@userID, @goalType, @strategy, @adjustment, @split::jsonb, @proteinPerBodyweight, @remainingSplit::jsonb, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			goal_type = EXCLUDED.goal_type,
			strategy = EXCLUDED.strategy,
			adjustment_percentage = EXCLUDED.adjustment_percentage,
			split = EXCLUDED.split,
			protein_per_bodyweight = EXCLUDED.protein_per_bodyweight,
			remaining_split = EXCLUDED.remaining_split,
			updated_at = NOW()`,
		pgx.NamedArgs{
			"userID":               row.UserID,
			"goalType":             row.GoalType,
			"strategy":             row.Strategy,
			"adjustment":           row.AdjustmentPercentage,
			"split":                nullableJSON(row.Split),
			"proteinPerBodyweight": row.ProteinPerBodyweight,
			"remainingSplit":       nullableJSON(row.RemainingSplit),
		})
	if err != nil {
		return fmt.Errorf("upsert goal: %w", err)
	}
	return nil
}

// ListUserIDs returns every user with a stored profile
func (s *Store) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, "SELECT user_id FROM user_profiles ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return ids, nil
}
