package main

import (
	"context"
	"errors"
	"os"
	"time"

	"pixnox/internal/amqp"
	"pixnox/internal/backend"
	"pixnox/internal/cli"
	"pixnox/internal/log"
	"pixnox/internal/storage"
	"pixnox/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentWorker)

	logger.Info("Starting pixnox-worker", log.FieldOperation, log.OpStartup)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	factory := backend.NewFactory(logger)

	result, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize storage backend",
			log.FieldError, err,
			"backend", cfg.DataBackend)
		os.Exit(1)
	}

	mirror, err := factory.CreateMirror(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize sheets mirror", log.FieldError, err)
		result.Cleanup()
		os.Exit(1)
	}
	mirrorWorker := worker.NewMirrorWorker(mirror.Mirror, logger, nil)

	var client *amqp.Client
	if cfg.AMQPURL != "" {
		client, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			result.Cleanup()
			os.Exit(1)
		}
	} else {
		logger.Warn("AMQP not configured, only periodic reconciliation will run")
	}

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, func(context.Context) {
		if client != nil {
			if err := client.Close(); err != nil {
				logger.Error("Failed to close AMQP client", log.FieldError, err)
			}
		}
		if err := result.Cleanup(); err != nil {
			logger.Error("Failed to close storage", log.FieldError, err)
		}
	})

	// Catch up on anything published while the worker was down.
	reconcile(ctx, logger, mirrorWorker, result.Repository)

	if cfg.MirrorSyncInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.MirrorSyncInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					reconcile(ctx, logger, mirrorWorker, result.Repository)
				}
			}
		}()
	}

	if client != nil {
		go func() {
			err := client.Consume(ctx, mirrorWorker.HandleEvent)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", log.FieldError, err)
			}
		}()
	}

	logger.Info("Worker running",
		"mirror", mirror.Kind,
		"events", client != nil,
		"sync_interval", cfg.MirrorSyncInterval.String())

	cli.WaitForShutdown(ctx, done)
}

func reconcile(ctx context.Context, logger *log.Logger, w *worker.MirrorWorker, repo storage.Repository) {
	res, err := w.Reconcile(ctx, repo)
	if err != nil {
		logger.Error("Mirror reconciliation failed", log.FieldError, err)
		return
	}
	logger.Info("Mirror reconciled",
		"total", res.Total,
		"synced", res.Synced,
		"errors", res.Errors)
}
