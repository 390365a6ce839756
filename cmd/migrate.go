package cmd

import (
	"github.com/spf13/cobra"

	"todo-service.com/todo-service/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the todo table if it does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		gateway, err := database.Open(database.Options{
			DSN:          cfg.DatabaseDSN,
			MaxOpenConns: cfg.DatabaseMaxOpenConns,
		})
		if err != nil {
			return err
		}
		defer gateway.Close()

		if err := gateway.Migrate(cmd.Context()); err != nil {
			return err
		}

		logger.WithField("dsn", cfg.DatabaseDSN).Info("schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
