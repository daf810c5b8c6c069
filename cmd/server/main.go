package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/promodash/internal/cache"
	"github.com/promodash/internal/config"
	"github.com/promodash/internal/db"
	"github.com/promodash/internal/logger"
	"github.com/promodash/internal/metrics"
	"github.com/promodash/internal/router"
	"github.com/promodash/internal/service"
	"github.com/promodash/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logg := logger.New(logger.Options{
		ServiceName: "promodash",
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "server.exit", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.AppConfig, logg *logger.Logger) error {
	// 初始化数据库
	gdb, err := db.Open(db.Options{
		Driver: cfg.DatabaseDriver,
		Path:   cfg.DatabasePath,
		DSN:    cfg.DatabaseDSN,
		Debug:  logg.Debug(),
	})
	if err != nil {
		return err
	}
	defer db.Close(gdb)

	store, uploadDir, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}

	var listCache service.ListCache
	if cfg.RedisURL != "" {
		redisCache, err := cache.New(ctx, cfg.RedisURL, cfg.ListCacheTTL)
		if err != nil {
			// 缓存不可用时直接读库
			logg.Error(ctx, "cache.unavailable", err)
		} else {
			defer redisCache.Close()
			listCache = redisCache
		}
	}

	r, err := router.SetupRouter(router.Options{
		DB:            gdb,
		Store:         store,
		Logger:        logg,
		Metrics:       metrics.New(),
		Cache:         listCache,
		UploadDir:     uploadDir,
		UploadURLPath: cfg.UploadURLPath,
		SessionSecret: cfg.SessionSecret,
		PageSize:      cfg.PageSize,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "addr", cfg.ListenAddr), "server.start")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logg.Info(shutdownCtx, "server.shutdown")
	return srv.Shutdown(shutdownCtx)
}

// buildStore returns the upload backend and, for the local backend, the
// directory to serve as static files.
func buildStore(ctx context.Context, cfg config.AppConfig) (storage.Store, string, error) {
	if cfg.UploadBackend == config.UploadBackendS3 {
		s3Store, err := storage.NewS3Store(ctx, storage.S3Options{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			PublicBaseURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, "", err
		}
		return s3Store, "", nil
	}
	return storage.NewLocalStore(cfg.UploadDir, cfg.UploadURLPath), cfg.UploadDir, nil
}
