package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anoixa/taskboard/api/core"
	"github.com/anoixa/taskboard/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start API server",
	Run: func(cmd *cobra.Command, args []string) {
		RunServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer() {
	cfg, log := loadConfig()
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	container := app.NewContainer(cfg, log)
	if err := container.Init(ctx); err != nil {
		log.Fatal("failed to initialize container", zap.Error(err))
	}

	if err := container.Migrate(ctx); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	jwtService, err := container.GetJWTService()
	if err != nil {
		log.Fatal("failed to initialize JWT", zap.Error(err))
	}

	server, cleanup := core.StartServer(&core.RouterDependencies{
		DB:          container.GetDatabaseProvider(),
		Storage:     container.GetStorageProvider(),
		Cache:       container.GetCacheProvider(),
		Settings:    container.GetConfigManager(),
		Tokens:      jwtService,
		Attachments: container.AttachmentDependencies(),
		Query:       container.QueryService(),
		Deleter:     container.DeleteService(),
		Access:      container.AccessChecker(),
		Config:      cfg,
		Logger:      log,
	})

	go func() {
		log.Info("server started", zap.String("addr", cfg.Addr()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// 处理退出signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	cleanup()

	if err := container.Close(); err != nil {
		log.Error("error closing container", zap.Error(err))
	}

	log.Info("server exited")
}
