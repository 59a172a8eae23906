package cmd

import (
	"fmt"

	"github.com/SAP-F-2025/ielts-trainer/internal/repositories/postgres"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables and the random question function",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := postgres.Migrate(cmd.Context(), a.db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		a.logger.Info("Migration completed", "driver", a.cfg.DatabaseDriver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
