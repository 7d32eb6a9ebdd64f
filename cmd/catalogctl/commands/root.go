package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iliyamo/game-catalog/internal/config"
	"github.com/iliyamo/game-catalog/internal/database"
)

var (
	// Global flags
	driverFlag string
	pathFlag   string
)

var rootCmd = &cobra.Command{
	Use:   "catalogctl",
	Short: "Manage the game catalog database",
	Long: `catalogctl manages the game catalog database.

The connection is read from the same environment variables (or .env file)
as the server: DB_DRIVER, DB_HOST, DB_PORT, DB_USER, DB_PASS, DB_NAME and
DB_PATH for sqlite.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&driverFlag, "driver", "", "override DB_DRIVER (mysql or sqlite)")
	rootCmd.PersistentFlags().StringVar(&pathFlag, "path", "", "override DB_PATH for sqlite")
}

// openDB loads the database settings, applies flag overrides and connects.
func openDB() (*sql.DB, config.DBConfig, error) {
	cfg, err := loadDBConfig()
	if err != nil {
		return nil, cfg, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, cfg, fmt.Errorf("connect %s: %w", cfg.Driver, err)
	}
	return db, cfg, nil
}

func loadDBConfig() (config.DBConfig, error) {
	if driverFlag != "" {
		os.Setenv("DB_DRIVER", driverFlag)
	}
	if pathFlag != "" {
		os.Setenv("DB_PATH", pathFlag)
	}
	return config.LoadDB()
}

// withDB runs fn against an open, migrated database.
func withDB(ctx context.Context, migrate bool, fn func(context.Context, *sql.DB) error) error {
	db, cfg, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	if migrate {
		if err := database.Migrate(ctx, db, cfg.Driver); err != nil {
			return err
		}
	}
	return fn(ctx, db)
}
