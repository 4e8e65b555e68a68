package cli

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/config"
	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/db"
	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/service"
)

// NewPruneResetsCmd creates the prune-resets subcommand.
func NewPruneResetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune-resets",
		Short: "Delete used and expired password reset tokens",
		Long: `Delete password reset rows that can never be redeemed again.
Safe to run while the server is up; intended for a cron job.`,
		RunE: runPruneResets,
	}
}

func runPruneResets(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	pool, err := db.NewPostgresPool(cmd.Context(), cfg.Postgres)
	if err != nil {
		return err
	}
	defer pool.Close()

	resets := service.NewResetTokenManager(db.New(pool), cfg.Auth.ResetTTL())
	removed, err := resets.PruneExpired(cmd.Context())
	if err != nil {
		return oops.Code("RESET_TOKEN_PRUNE_FAILED").Wrap(err)
	}

	cmd.Printf("Removed %d reset token(s)\n", removed)
	return nil
}
