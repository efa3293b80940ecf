package main

import (
	"context"
	"os"
	"time"

	"pixnox/internal/adapters"
	"pixnox/internal/backend"
	"pixnox/internal/cache"
	"pixnox/internal/cli"
	apphttp "pixnox/internal/http"
	"pixnox/internal/log"
	"pixnox/internal/metrics"
	"pixnox/internal/middleware/ratelimit"
	"pixnox/internal/middleware/security"
	"pixnox/internal/services"
	"pixnox/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig(log.ComponentApp)

	ctx := context.Background()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	factory := backend.NewFactory(logger)

	result, err := factory.CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize storage backend",
			log.FieldError, err,
			"backend", cfg.DataBackend)
		os.Exit(1)
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	publisher, _ := factory.CreatePublisher(ctx, backendCfg)
	if publisher == nil && cfg.MirrorEnabled() {
		// No broker: apply events to the spreadsheet in-process.
		mirror, err := factory.CreateMirror(ctx, backendCfg)
		if err != nil {
			logger.Error("Failed to initialize sheets mirror", log.FieldError, err)
			os.Exit(1)
		}
		publisher = adapters.NewInlineMirror(worker.NewMirrorWorker(mirror.Mirror, logger, m))
		logger.Info("Mirroring expenses inline", "mirror", mirror.Kind)
	}

	expenses := services.NewExpenseService(result.Repository, publisher, logger).WithMetrics(m)
	reports := services.NewReportService(result.Repository, services.ReportConfig{
		CacheSize: cfg.CacheSize,
		CacheTTL:  cfg.CacheTTL,
		Location:  cfg.Location(),
	}, logger, m)
	expenses.OnChange(reports.Invalidate)

	cacheMgr := cache.NewManager(logger)
	cacheMgr.Register(reports.Caches()...)
	cacheMgr.StartCleanup(cfg.CacheTTL)

	limiterCfg := ratelimit.DefaultConfig()
	limiterCfg.RequestsPerMinute = cfg.RateLimitRPM

	headers := security.DefaultHeadersConfig()
	deps := apphttp.Deps{
		Expenses: expenses,
		Reports:  reports,
		Logger:   logger,
		Metrics:  m,
		Limiter:  ratelimit.NewLimiter(limiterCfg),
		Detector: security.NewDetector(),
		Headers:  &headers,
	}
	if p, ok := result.Repository.(apphttp.Pinger); ok {
		deps.Ready = p
	}

	srv := apphttp.NewServer(":"+cfg.Port, deps)

	shutdownCtx, done := cli.GracefulShutdown(logger, 10*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("HTTP server shutdown failed", log.FieldError, err)
		}
		cacheMgr.Stop()
		if err := expenses.Close(); err != nil {
			logger.Error("Failed to close resources", log.FieldError, err)
		}
	})

	logger.Info("Starting HTTP server",
		log.FieldOperation, log.OpStartup,
		"addr", srv.Addr,
		"backend", cfg.DataBackend,
		"timezone", cfg.Timezone,
		"metrics", cfg.MetricsEnabled,
		"events", publisher != nil)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("HTTP server failed", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
}
