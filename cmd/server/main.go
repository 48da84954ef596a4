package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/leowang/graph-approvals/internal/attachment"
	"github.com/leowang/graph-approvals/internal/classifier"
	"github.com/leowang/graph-approvals/internal/config"
	"github.com/leowang/graph-approvals/internal/graph"
	"github.com/leowang/graph-approvals/internal/repository"
	"github.com/leowang/graph-approvals/internal/server"
	"github.com/leowang/graph-approvals/pkg/database"
	"github.com/leowang/graph-approvals/pkg/utils"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Graph Approvals Gateway",
		zap.Int("port", cfg.Server.Port),
		zap.String("allowed_origin", cfg.CORS.AllowedOrigin))

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		logger.Fatal("Failed to create data directory", zap.Error(err))
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to open metadata store", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	metadataRepo := repository.NewMetadataRepository(db, logger)

	graphClient := graph.NewClient(graph.Config{
		TenantID:     cfg.Graph.TenantID,
		ClientID:     cfg.Graph.ClientID,
		ClientSecret: cfg.Graph.ClientSecret,
		Scope:        cfg.Graph.Scope,
		BaseURL:      cfg.Graph.BaseURL,
		Timeout:      cfg.Graph.APITimeout,
	}, logger)

	approvalsAPI := graph.NewApprovalsAPI(graphClient, logger)
	driveAPI := graph.NewDriveAPI(graphClient, logger)
	responder := classifier.NewResponder(approvalsAPI, logger)
	uploader := attachment.NewUploader(driveAPI, logger)

	handlers := server.NewHandlers(
		approvalsAPI,
		responder,
		metadataRepo,
		uploader,
		server.Config{
			AllowedOrigin: cfg.CORS.AllowedOrigin,
			MaxFileSize:   cfg.Upload.MaxFileSize,
			MaxFiles:      cfg.Upload.MaxFiles,
		},
		logger,
	)

	if cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := server.NewRouter(handlers, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
