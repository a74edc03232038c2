package cmd

import (
	"context"

	"github.com/anoixa/taskboard/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables and default upload settings",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, log := loadConfig()
		defer func() { _ = log.Sync() }()

		container := app.NewContainer(cfg, log)
		if err := container.InitDatabase(); err != nil {
			log.Fatal("failed to initialize database", zap.Error(err))
		}
		defer container.Close()

		if err := container.Migrate(context.Background()); err != nil {
			log.Fatal("migration failed", zap.Error(err))
		}
		log.Info("migration completed")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
