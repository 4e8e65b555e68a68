package cli

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/config"
	"github.com/MohiniChauhan09/Task-Management-System/backend/internal/db"
)

// NewMigrateCmd creates the migrate subcommand. Bare "migrate" applies all
// pending migrations.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  `Apply all pending schema migrations embedded in the binary.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadPostgres()
			if err != nil {
				return oops.Code("CONFIG_INVALID").Wrap(err)
			}

			cmd.Println("Running migrations...")
			if err := migrateUp(cfg); err != nil {
				return err
			}
			cmd.Println("Migrations completed successfully")
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back every migration (drops all data)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(func(m *db.Migrator) error {
				if err := m.Down(); err != nil {
					return err
				}
				cmd.Println("All migrations rolled back")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(func(m *db.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				cmd.Printf("version %d (dirty: %t)\n", version, dirty)
				return nil
			})
		},
	})

	return cmd
}

func migrateUp(cfg config.PostgresConfig) error {
	return openMigrator(cfg, func(m *db.Migrator) error {
		return m.Up()
	})
}

func withMigrator(fn func(m *db.Migrator) error) error {
	cfg, err := config.LoadPostgres()
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	return openMigrator(cfg, fn)
}

func openMigrator(cfg config.PostgresConfig, fn func(m *db.Migrator) error) (err error) {
	databaseURL, err := db.BuildPostgresURL(cfg)
	if err != nil {
		return err
	}

	m, err := db.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return fn(m)
}
