package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"ripperdoc/internal/blob"
	"ripperdoc/internal/config"
	"ripperdoc/internal/core"
	"ripperdoc/internal/observability"
)

// app bundles the wired service and everything that must be closed with it.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *observability.Metrics
	store   core.PersistentStore
	svc     *core.Service
	traces  io.Closer
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	store, err := core.OpenPersistentStore(ctx, core.StorageConfig{
		Driver:      core.StorageDriver(cfg.Storage.Driver),
		SQLitePath:  cfg.Storage.SQLitePath,
		PostgresDSN: cfg.Storage.PostgresDSN,
	}, core.NewDefaultRulesEngine())
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	blobs, err := blob.Open(ctx, blob.Config{
		Driver: blob.Driver(cfg.Blob.Driver),
		FSRoot: cfg.Blob.FSRoot,
		S3: blob.S3Config{
			Bucket:          cfg.Blob.S3.Bucket,
			Region:          cfg.Blob.S3.Region,
			Endpoint:        cfg.Blob.S3.Endpoint,
			PathStyle:       cfg.Blob.S3.PathStyle,
			AccessKeyID:     cfg.Blob.S3.AccessKeyID,
			SecretAccessKey: cfg.Blob.S3.SecretAccessKey,
		},
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("open blob store: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, metrics: observability.NewMetrics(), store: store}
	opts := []core.Option{
		core.WithLogger(observability.NewServiceLogger(logger)),
		core.WithMetrics(a.metrics),
		core.WithBlobStore(blobs),
	}
	if w := observability.NewTraceWriter(cfg.Logger); w != nil {
		a.traces = w
		opts = append(opts, core.WithTracer(core.NewJSONTracer(w)))
	}
	a.svc = core.NewService(store, opts...)
	if cfg.Engine.SeedCatalog {
		if _, err := a.svc.SeedCatalog(ctx); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
	}
	return a, nil
}

func (a *app) Close() error {
	errs := []error{a.store.Close(), observability.Sync(a.logger)}
	if a.traces != nil {
		errs = append(errs, a.traces.Close())
	}
	return errors.Join(errs...)
}
