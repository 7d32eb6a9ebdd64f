package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/game-catalog/internal/repository"
)

var (
	adminUsername string
	adminPassword string
	adminCost     int
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an account for the admin API",
	Example: `  catalogctl create-admin --username dave --password 's3cret'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminUsername == "" || adminPassword == "" {
			return errors.New("--username and --password are required")
		}
		return withDB(cmd.Context(), true, func(ctx context.Context, db *sql.DB) error {
			id, err := repository.NewAdminUserRepo(db).Create(ctx, adminUsername, adminPassword, adminCost)
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("username %q is taken", adminUsername)
			}
			if err != nil {
				return err
			}
			fmt.Printf("created admin %q (id %d)\n", adminUsername, id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(createAdminCmd)
	createAdminCmd.Flags().StringVar(&adminUsername, "username", "", "admin username")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "admin password")
	createAdminCmd.Flags().IntVar(&adminCost, "bcrypt-cost", 12, "bcrypt cost")
}
