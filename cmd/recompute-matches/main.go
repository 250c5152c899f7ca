package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Metecanyavuz/KUstay-comp491/internal/config"
	"github.com/Metecanyavuz/KUstay-comp491/internal/database"
	"github.com/Metecanyavuz/KUstay-comp491/internal/logging"
	"github.com/Metecanyavuz/KUstay-comp491/internal/routes"
)

type recomputer interface {
	Refresh(ctx context.Context, userID int64) (int, error)
	RefreshAll(ctx context.Context) (int, error)
}

var (
	userID  int64
	workers int

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "recompute-matches",
	Short: "Recompute stored roommate compatibility scores",
	Long: `Recomputes match scores for every verified student with a profile, or
for a single student with --user. Prints the number of rows written and exits
non-zero when any user failed.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return err
		}
		if workers > 0 {
			cfg.MatchRefreshWorkers = workers
		}
		logger, err = logging.New(cfg.AppEnv, cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.DBUrl == "" {
			return fmt.Errorf("DB_URL is required")
		}

		ctx := cmd.Context()
		db, err := database.ConnectDB(ctx, cfg.DBUrl, database.PoolOptions{
			MaxConns: int32(cfg.MatchRefreshWorkers + 1),
			MinConns: 1,
		}, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		return run(ctx, cmd.OutOrStdout(), routes.NewMatchmakingService(cfg, db, logger), userID)
	},
}

func init() {
	rootCmd.Flags().Int64Var(&userID, "user", 0, "only recompute matches for this user id")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "users refreshed in parallel (default MATCH_REFRESH_WORKERS)")
}

// run prints the total even when some users failed, then reports the failure.
func run(ctx context.Context, out io.Writer, service recomputer, userID int64) error {
	var (
		updated int
		err     error
	)
	if userID > 0 {
		updated, err = service.Refresh(ctx, userID)
	} else {
		updated, err = service.RefreshAll(ctx)
	}

	fmt.Fprintf(out, "Updated %d match records.\n", updated)
	if err != nil {
		return fmt.Errorf("recompute finished with errors: %w", err)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
