package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jengzang/resourcemap-backend-go/internal/database"
	"github.com/jengzang/resourcemap-backend-go/internal/repository"
	"github.com/jengzang/resourcemap-backend-go/internal/service"
)

func newMigrateCommand(rt *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database and data migrations",
	}
	cmd.AddCommand(newMigrateSchemaCommand(rt))
	cmd.AddCommand(newCapitalizeScoresCommand(rt))
	return cmd
}

func newMigrateSchemaCommand(rt *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Apply pending SQL schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Open(database.Config{Path: rt.cfg.Database.Path})
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := database.NewMigrationManager(db, rt.logger).RunMigrations()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", n)
			return nil
		},
	}
}

func newCapitalizeScoresCommand(rt *appState) *cobra.Command {
	var (
		dataset string
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "capitalize-scores",
		Short: "Upper-case the first letter of every score category key",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Open(database.Config{Path: rt.cfg.Database.Path})
			if err != nil {
				return err
			}
			defer db.Close()

			if _, err := database.NewMigrationManager(db, rt.logger).RunMigrations(); err != nil {
				return err
			}

			svc := service.NewMigrationService(repository.NewMarkerRepository(db), rt.logger)
			report, err := svc.CapitalizeScoreKeys(cmd.Context(), dataset, dryRun)
			if err != nil {
				return err
			}

			rt.logger.Debug("capitalize-scores finished", zap.Int("updated", len(report.Updated)))
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	cmd.Flags().StringVar(&dataset, "dataset", "", "dataset whose markers are rewritten")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report the markers that would change without writing")
	_ = cmd.MarkFlagRequired("dataset")
	return cmd
}
