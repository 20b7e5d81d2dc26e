// Package bootstrap provides dependency initialization for the Swap Studio API.
package bootstrap

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/swapstudio/swapstudio-api/internal/config"
	"github.com/swapstudio/swapstudio-api/internal/fal"
	"github.com/swapstudio/swapstudio-api/internal/generator"
	"github.com/swapstudio/swapstudio-api/internal/job"
	"github.com/swapstudio/swapstudio-api/internal/kling"
	"github.com/swapstudio/swapstudio-api/internal/media"
	"github.com/swapstudio/swapstudio-api/internal/orchestrator"
	"github.com/swapstudio/swapstudio-api/internal/replicate"
	"github.com/swapstudio/swapstudio-api/internal/storage"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	Orchestrator *orchestrator.Orchestrator
}

// NewDependencies creates and initializes all dependencies for the
// application. Provider adapters are only built for the routes whose
// credentials are configured; missing routes fail per request.
func NewDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	store, err := initStorage(cfg, logger)
	if err != nil {
		return nil, err
	}

	compressor := media.NewFFmpegCompressor(store, logger, media.WithFFmpegPath(cfg.FFmpegPath))

	adapters, err := initAdapters(cfg, compressor, logger)
	if err != nil {
		return nil, err
	}

	var driverOpts []generator.DriverOption
	if cfg.S3Enabled() {
		archiver := storage.NewOutputArchiver(store, &http.Client{Timeout: 300 * time.Second})
		driverOpts = append(driverOpts, generator.WithArchiver(archiver))
		logger.Info("output archiving enabled", slog.String("bucket", cfg.S3Bucket))
	}

	registry := job.NewMemoryRegistry()
	driver := generator.NewDriver(logger, driverOpts...)

	return &Dependencies{
		Orchestrator: orchestrator.New(registry, driver, adapters, logger),
	}, nil
}

// initAdapters builds one adapter per configured provider route.
func initAdapters(cfg *config.Config, compressor media.Compressor, logger *slog.Logger) (orchestrator.Adapters, error) {
	var adapters orchestrator.Adapters

	if cfg.FalEnabled() {
		falClient, err := fal.NewClient(fal.WithAPIKey(cfg.FalAPIKey))
		if err != nil {
			return adapters, fmt.Errorf("create fal client: %w", err)
		}
		adapters.FalSwap = generator.NewFalSwapAdapter(falClient, compressor, logger)
		adapters.FalLipSync = generator.NewFalLipSyncAdapter(falClient, logger)
	}

	if cfg.KlingEnabled() {
		klingClient, err := kling.NewClient(
			kling.WithCredentials(cfg.KlingAccessKey, cfg.KlingSecretKey),
			kling.WithBaseURL(cfg.KlingAPIBase),
		)
		if err != nil {
			return adapters, fmt.Errorf("create kling client: %w", err)
		}
		adapters.Kling = generator.NewKlingAdapter(klingClient, logger)
	}

	if cfg.ReplicateEnabled() {
		replicateClient, err := replicate.NewClient(
			replicate.WithAPIToken(cfg.ReplicateAPIToken),
			replicate.WithLogger(logger),
		)
		if err != nil {
			return adapters, fmt.Errorf("create replicate client: %w", err)
		}
		adapters.Replicate = generator.NewReplicateAdapter(replicateClient, compressor, logger)
	}

	return adapters, nil
}

// initStorage creates the appropriate storage backend based on configuration.
func initStorage(cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	if cfg.S3Enabled() {
		s3Cfg := storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		}
		s3Store, err := storage.NewS3Storage(cfg.TempDir, s3Cfg)
		if err != nil {
			return nil, fmt.Errorf("create S3 storage: %w", err)
		}
		logger.Info("S3 storage configured",
			slog.String("bucket", cfg.S3Bucket),
			slog.String("region", cfg.S3Region),
		)
		return s3Store, nil
	}

	localStore, err := storage.NewLocalStorage(cfg.TempDir)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}
	logger.Info("local storage configured",
		slog.String("temp_dir", cfg.TempDir),
	)
	return localStore, nil
}
