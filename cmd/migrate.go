package cmd

import (
	"errors"
	"fmt"

	"krosmoz-scrapper/core/config"
	"krosmoz-scrapper/core/database"
	"krosmoz-scrapper/core/logger"
	"krosmoz-scrapper/feature/gameconfig"
	"krosmoz-scrapper/feature/integration"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	Long: `Migrates the configuration tables (limits, formulas, equipment slots) and the
integration tables. With --seed, every formula the integrator uses and that is
not configured yet is created as the identity expression "value".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		seed, _ := cmd.Flags().GetBool("seed")

		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logg.Sync()

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return err
		}

		if err := gameconfig.Migrate(db); err != nil {
			return fmt.Errorf("failed to migrate configuration tables: %w", err)
		}
		if err := integration.Migrate(db); err != nil {
			return fmt.Errorf("failed to migrate integration tables: %w", err)
		}
		logg.Info("Database migrated", zap.String("driver", cfg.Database.Driver))

		if !seed {
			return nil
		}

		store := gameconfig.NewStore(db, logg)
		created := 0
		for _, key := range integration.FormulaKeys() {
			_, err := store.GetFormula(ctx, key)
			if err == nil {
				continue
			}
			if !errors.Is(err, gameconfig.ErrNotFound) {
				return err
			}
			if err := store.SaveFormula(ctx, gameconfig.ConversionFormula{
				Key:         key,
				Expression:  "value",
				Description: "seeded identity, review before production runs",
			}); err != nil {
				return err
			}
			created++
		}
		logg.Info("Formulas seeded", zap.Int("created", created), zap.Int("known", len(integration.FormulaKeys())))
		return nil
	},
}

func init() {
	migrateCmd.Flags().Bool("seed", false, "Create missing formulas as identity expressions")
	RootCmd.AddCommand(migrateCmd)
}
