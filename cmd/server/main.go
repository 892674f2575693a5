package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"catalogadmin/internal/config"
	"catalogadmin/internal/db"
	"catalogadmin/internal/handlers"
	"catalogadmin/internal/metrics"
	"catalogadmin/internal/repository"
	"catalogadmin/internal/services/assets"
	"catalogadmin/internal/storage"
)

func main() {
	// грузим .env из текущей папки, родительской и корня репо (когда запускаем из cmd/server)
	_ = godotenv.Overload(".env", "../.env", "../../.env")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	gdb, err := db.Open(cfg.DB)
	if err != nil {
		return err
	}
	if err := db.Migrate(gdb); err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	images, err := storage.NewDir(cfg.ImagesDir,
		storage.WithMaxBytes(cfg.MaxUploadBytes), storage.WithLogger(logger.With("asset_class", metrics.Image)))
	if err != nil {
		return err
	}
	documents, err := storage.NewDir(cfg.FilesDir,
		storage.WithMaxBytes(cfg.MaxUploadBytes), storage.WithLogger(logger.With("asset_class", metrics.Document)))
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec, err := metrics.New(reg)
	if err != nil {
		return err
	}

	categories := repository.NewCategoryRepository(gdb)
	products := repository.NewProductRepository(gdb)
	files := repository.NewFileRepository(gdb)
	svc := assets.NewService(assets.Deps{
		Categories: categories,
		Products:   products,
		Files:      files,
		Images:     images,
		Documents:  documents,
		Metrics:    rec,
		Logger:     logger,
	})

	gin.SetMode(cfg.GinMode)
	h := handlers.New(categories, products, files, svc, cfg.MaxUploadBytes, logger)
	router := handlers.NewRouter(h, handlers.RouterConfig{
		APIPrefix:       cfg.APIPrefix,
		ImagesDir:       images.Root(),
		ImagesURLPrefix: cfg.ImagesURLPrefix,
		CORSOrigins:     cfg.CORSOrigins,
		DB:              sqlDB,
		Gatherer:        reg,
		Logger:          logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("catalog admin listening", "port", cfg.Port, "driver", cfg.DB.Driver,
			"images_dir", images.Root(), "files_dir", documents.Root())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, shutdownSignals...)
	select {
	case err := <-errc:
		return err
	case sig := <-quit:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	logger.Info("catalog admin stopped")
	return nil
}
