package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nutricoach/backend/config"
	"github.com/nutricoach/backend/internal/app"
	"github.com/nutricoach/backend/internal/domain"
	"github.com/nutricoach/backend/internal/jobs"
	"github.com/nutricoach/backend/internal/logger"
	"github.com/spf13/cobra"
)

var (
	userIDs    []string
	periodDays int
	interval   time.Duration
	outputJSON bool
)

var rootCmd = &cobra.Command{
	Use:          "recap",
	Short:        "Compute macro adherence recaps for stored users",
	Long:         "recap recomputes each user's adherence recap for the period ending yesterday and stores it for the API.",
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute recaps once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkPeriodDays(periodDays); err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App, cfg *config.Config) error {
			if len(userIDs) == 1 {
				cached, err := a.Recaps.ComputeAndStore(ctx, userIDs[0], periodDays)
				if err != nil {
					return err
				}
				if outputJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(cached)
				}
				r := cached.Recap
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s..%s  target met %d/%d days (%.1f%%)  avg %.0f kcal\n",
					cached.UserID, r.StartDate, r.EndDate, r.TargetMetDays.Count, r.TotalDays,
					r.TargetMetDays.Percentage, r.Average.Calories)
				return nil
			}

			result, err := jobsRunner(a, cfg).Run(ctx, userIDs...)
			if err != nil {
				return err
			}
			if outputJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "processed %d, skipped %d, failed %d\n", result.Processed, result.Skipped, result.Failed)
			if result.Failed > 0 {
				return fmt.Errorf("%d user(s) failed", result.Failed)
			}
			return nil
		})
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Compute recaps periodically until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkPeriodDays(periodDays); err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App, cfg *config.Config) error {
			every := interval
			if every <= 0 {
				every = cfg.Recap.Interval
			}
			err := jobsRunner(a, cfg).RunPeriodic(ctx, every)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	},
}

// withApp loads configuration, builds the application and runs fn until it
// returns or the process is interrupted.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App, cfg *config.Config) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Server.Environment, cfg.Log.Level); err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a, cfg)
}

// checkPeriodDays accepts 0 (use the configured period) or 1..domain.MaxRecapDays.
func checkPeriodDays(days int) error {
	if days < 0 || days > domain.MaxRecapDays {
		return fmt.Errorf("--period-days must be between 1 and %d, got %d", domain.MaxRecapDays, days)
	}
	return nil
}

// jobsRunner builds a runner honouring the --period-days override.
func jobsRunner(a *app.App, cfg *config.Config) *jobs.RecapRunner {
	if periodDays <= 0 {
		return a.Runner
	}
	return jobs.NewRecapRunner(a.Store, a.Recaps, cfg.Recap.Concurrency, periodDays)
}

func init() {
	rootCmd.PersistentFlags().IntVar(&periodDays, "period-days", 0, "Recap length in days (default from config)")
	runCmd.Flags().StringSliceVar(&userIDs, "user", nil, "Only recompute these user IDs")
	runCmd.Flags().BoolVar(&outputJSON, "json", false, "Print JSON output")
	watchCmd.Flags().DurationVar(&interval, "interval", 0, "Time between runs (default from config)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
