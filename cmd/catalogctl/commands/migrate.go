package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iliyamo/game-catalog/internal/database"
)

var (
	// Migrate flags
	downAll bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Run the embedded schema migrations.

Subcommands:
  up      - Apply pending migrations
  down    - Roll back the last migration (or all with --all)
  status  - Show migration status`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateUp(cmd.Context())
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateDown(cmd.Context())
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrateStatus(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
	migrateDownCmd.Flags().BoolVar(&downAll, "all", false, "roll back every migration")
}

func runMigrateUp(ctx context.Context) error {
	db, cfg, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	p, err := database.NewMigrator(db, cfg.Driver)
	if err != nil {
		return err
	}
	results, err := p.Up(ctx)
	for _, r := range results {
		fmt.Printf("applied %d %s (%s)\n", r.Source.Version, r.Source.Path, r.Duration)
	}
	if err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	if len(results) == 0 {
		fmt.Println("no pending migrations")
	}
	return nil
}

func runMigrateDown(ctx context.Context) error {
	db, cfg, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	p, err := database.NewMigrator(db, cfg.Driver)
	if err != nil {
		return err
	}
	if downAll {
		results, err := p.DownTo(ctx, 0)
		for _, r := range results {
			fmt.Printf("rolled back %d %s\n", r.Source.Version, r.Source.Path)
		}
		return err
	}
	r, err := p.Down(ctx)
	if err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	fmt.Printf("rolled back %d %s\n", r.Source.Version, r.Source.Path)
	return nil
}

func runMigrateStatus(ctx context.Context) error {
	db, cfg, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	p, err := database.NewMigrator(db, cfg.Driver)
	if err != nil {
		return err
	}
	statuses, err := p.Status(ctx)
	if err != nil {
		return fmt.Errorf("migrate status: %w", err)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tSTATE\tAPPLIED AT\tFILE")
	for _, s := range statuses {
		applied := "-"
		if !s.AppliedAt.IsZero() {
			applied = s.AppliedAt.UTC().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.Source.Version, s.State, applied, s.Source.Path)
	}
	return w.Flush()
}
