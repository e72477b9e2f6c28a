package main

import (
	"workspace-service/pkg/config"
	"workspace-service/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the store schema",
	Long:  "Runs gorm AutoMigrate for the postgres backend and creates the tables for the Azure Table Storage backend.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := logger.InitLogger(cfg); err != nil {
			return err
		}
		log := logger.GetLogger()
		defer func() { _ = log.Sync() }()

		backend, err := openBackend(cmd.Context(), cfg, log, true)
		if err != nil {
			log.Error("Migration failed", zap.Error(err))
			return err
		}
		defer func() { _ = backend.Close() }()

		log.Info("Migration complete", zap.String("backend", cfg.Store.Backend))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
