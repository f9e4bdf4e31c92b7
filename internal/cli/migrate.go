package cli

import (
	"context"

	"github.com/spf13/cobra"

	"codearchive/internal/repository"
)

var migrateDrop bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the archive tables and indexes",
	Long: `Applies the schema to the configured database. PostgreSQL tables are
named with the environment's table prefix. Running it twice is harmless.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDrop, "drop", false, "drop existing archive tables first (refused when ENVIRONMENT=prod)")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := repository.Migrate(context.Background(), cfg, newLogger(), repository.MigrateOptions{Drop: migrateDrop}); err != nil {
		return err
	}
	cmd.Println("Schema is up to date.")
	return nil
}
