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

type recapRow struct {
	UserID     string    `db:"user_id"`
	Recap      []byte    `db:"recap"`
	ComputedAt time.Time `db:"computed_at"`
}

// SaveCachedRecap stores the latest batch recap for a user
func (s *Store) SaveCachedRecap(ctx context.Context, recap *domain.CachedRecap) error {
	encoded, err := json.Marshal(recap.Recap)
	if err != nil {
		return fmt.Errorf("encode recap: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO cached_recaps (user_id, recap, computed_at)
		VALUES (@userID, @recap::jsonb, @computedAt)
		ON CONFLICT (user_id) DO UPDATE SET
			recap = EXCLUDED.recap,
			computed_at = EXCLUDED.computed_at`,
		pgx.NamedArgs{"userID": recap.UserID, "recap": string(encoded), "computedAt": recap.ComputedAt})
	if err != nil {
		return fmt.Errorf("save recap: %w", err)
	}
	return nil
}

// GetCachedRecap returns the latest batch recap or domain.ErrCacheMiss
func (s *Store) GetCachedRecap(ctx context.Context, userID string) (*domain.CachedRecap, error) {
	row, err := queryOne[recapRow](ctx, s.pool,
		"SELECT user_id, recap, computed_at FROM cached_recaps WHERE user_id = @userID",
		pgx.NamedArgs{"userID": userID})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("get recap: %w", err)
	}

	cached := &domain.CachedRecap{UserID: row.UserID, ComputedAt: row.ComputedAt.UTC()}
	if err := json.Unmarshal(row.Recap, &cached.Recap); err != nil {
		return nil, fmt.Errorf("decode recap: %w", err)
	}
	return cached, nil
}
