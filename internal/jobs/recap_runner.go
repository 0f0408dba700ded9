package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nutricoach/backend/internal/domain"
	"github.com/nutricoach/backend/internal/logger"
	"go.uber.org/zap"
)

// RecapComputer computes and persists the recap of one user
type RecapComputer interface {
	ComputeAndStore(ctx context.Context, userID string, periodDays int) (*domain.CachedRecap, error)
}

// UserLister lists the users the job visits
type UserLister interface {
	ListUserIDs(ctx context.Context) ([]string, error)
}

// RecapResult counts the outcome of one run
type RecapResult struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// RecapRunner recomputes every user's recap for the period ending yesterday
type RecapRunner struct {
	users       UserLister
	recaps      RecapComputer
	concurrency int
	periodDays  int
}

// NewRecapRunner creates a runner visiting at most concurrency users at once
func NewRecapRunner(users UserLister, recaps RecapComputer, concurrency, periodDays int) *RecapRunner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &RecapRunner{
		users:       users,
		recaps:      recaps,
		concurrency: concurrency,
		periodDays:  periodDays,
	}
}

// Run processes userIDs, or every stored user when none are given.
// A failing user is logged and counted; the others still run.
func (r *RecapRunner) Run(ctx context.Context, userIDs ...string) (RecapResult, error) {
	if len(userIDs) == 0 {
		ids, err := r.users.ListUserIDs(ctx)
		if err != nil {
			return RecapResult{}, err
		}
		userIDs = ids
	}

	start := time.Now()
	logger.Info("[RECAP] run started", zap.Int("users", len(userIDs)), zap.Int("concurrency", r.concurrency))

	var processed, skipped, failed atomic.Int64
	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup

	for _, userID := range userIDs {
		if ctx.Err() != nil {
			break
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			defer func() { <-sem }()

			cached, err := r.recaps.ComputeAndStore(ctx, userID, r.periodDays)
			switch {
			case err == nil:
				processed.Add(1)
				logger.Debug("[RECAP] user processed",
					zap.String("user_id", userID),
					zap.Int("met_days", cached.Recap.TargetMetDays.Count),
					zap.Int("total_days", cached.Recap.TotalDays))
			case errors.Is(err, domain.ErrTargetUndetermined):
				skipped.Add(1)
				logger.Debug("[RECAP] user skipped, no target", zap.String("user_id", userID))
			default:
				failed.Add(1)
				logger.Error("[RECAP] user failed", zap.String("user_id", userID), zap.Error(err))
			}
		}(userID)
	}
	wg.Wait()

	result := RecapResult{
		Processed: int(processed.Load()),
		Skipped:   int(skipped.Load()),
		Failed:    int(failed.Load()),
	}
	logger.Info("[RECAP] run finished",
		zap.Int("processed", result.Processed),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Duration("took", time.Since(start)))

	return result, ctx.Err()
}

// RunPeriodic runs immediately and then every interval until ctx is cancelled.
func (r *RecapRunner) RunPeriodic(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := r.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("[RECAP] run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			logger.Info("[RECAP] periodic runner stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
