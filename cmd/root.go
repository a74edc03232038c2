package cmd

import (
	"fmt"
	"os"

	"github.com/anoixa/taskboard/config"
	"github.com/anoixa/taskboard/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "taskboard",
	Short:   "Task board attachment service",
	Version: config.VersionString(),
	Run: func(cmd *cobra.Command, args []string) {
		serveCmd.Run(cmd, args)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig 加载配置并创建日志
func loadConfig() (*config.Config, *zap.Logger) {
	config.InitConfig()
	cfg := config.Get()

	log, err := logger.New(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, log
}
