package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"haven/haven/config"
	"haven/haven/controllers"
	"haven/haven/observability"
	"haven/haven/routes"
	"haven/haven/sources/psql"
	"haven/haven/sources/psql/dao"
	"haven/haven/sources/storage"
	"haven/haven/support"
	"haven/haven/utils/logging"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if err := logging.InitLoggerWithDir(cfg.LogDir); err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logging.Sync()

	catalog, err := support.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		logging.ErrorLogger.Error("catalog load error", zap.String("path", cfg.CatalogPath), zap.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := psql.NewDatabase(ctx, cfg)
	if err != nil {
		logging.ErrorLogger.Error("database connection error", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	convDAO := dao.NewConversationDAO(db.DB)
	metrics := observability.NewMetrics()
	conversationsCtrl := controllers.NewConversationsController(convDAO, catalog)

	var transcripts controllers.TranscriptStore
	if cfg.ExportEnabled() {
		minioClient, err := storage.NewMinIOClient(ctx, cfg)
		if err != nil {
			logging.ErrorLogger.Error("minio connection error", zap.Error(err))
			os.Exit(1)
		}
		transcripts = minioClient
	}

	r := routes.NewRouter(cfg, routes.Handlers{
		Health:        controllers.NewHealthController(db),
		Chat:          controllers.NewChatController(convDAO, catalog, metrics),
		Conversations: conversationsCtrl,
		Export:        controllers.NewExportController(conversationsCtrl, transcripts),
		Metrics:       metrics,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logging.AppLogger.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.Bool("staff_auth", cfg.StaffAuthEnabled()),
			zap.Bool("export", cfg.ExportEnabled()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
		}
	}()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
}
