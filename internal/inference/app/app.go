package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"

	rediscache "github.com/eduymaz/aller-mind/internal/clients/redis"
	"github.com/eduymaz/aller-mind/internal/data/analytics"
	"github.com/eduymaz/aller-mind/internal/data/audit"
	"github.com/eduymaz/aller-mind/internal/data/db"
	"github.com/eduymaz/aller-mind/internal/data/repos/predictions"
	apihttp "github.com/eduymaz/aller-mind/internal/http"
	httpH "github.com/eduymaz/aller-mind/internal/http/handlers"
	httpMW "github.com/eduymaz/aller-mind/internal/http/middleware"
	"github.com/eduymaz/aller-mind/internal/inference/artifact"
	"github.com/eduymaz/aller-mind/internal/inference/config"
	"github.com/eduymaz/aller-mind/internal/inference/engine"
	"github.com/eduymaz/aller-mind/internal/inference/model/sample"
	"github.com/eduymaz/aller-mind/internal/inference/registry"
	"github.com/eduymaz/aller-mind/internal/jobs/retention"
	"github.com/eduymaz/aller-mind/internal/observability"
	"github.com/eduymaz/aller-mind/internal/platform/logger"
)

const defaultLoadTimeout = 30 * time.Second

type App struct {
	Log      *logger.Logger
	Config   *config.Config
	Registry *registry.Registry
	Engine   *engine.Engine

	server  *apihttp.Server
	cron    *cron.Cron
	closers []func(context.Context) error
}

// New loads configuration and models and wires the optional backends.
// Redis and ClickHouse failures degrade to running without them; a
// configured history store that cannot be opened is fatal.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &App{Log: log, Config: cfg}
	a.closers = append(a.closers, observability.InitOTel(ctx, log, observability.ConfigFromEnv(cfg.Env, cfg.Version)))

	a.Registry, err = loadModels(ctx, cfg, log)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	if a.Registry.Len() == 0 {
		log.Warn("no group models loaded; predictions will fail until models are available")
	}
	a.Engine = engine.New(a.Registry, log, engine.Options{
		ReliabilityThreshold: cfg.Engine.ReliabilityThreshold,
		Locale:               cfg.Engine.Locale,
	})

	var cache rediscache.PredictionCache
	if cfg.Cache.Enabled() {
		cache, err = rediscache.NewPredictionCache(log, rediscache.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			Prefix:   cfg.Cache.Prefix,
			TTL:      cfg.Cache.TTL.Duration,
		})
		if err != nil {
			log.Warn("prediction cache disabled", "error", err)
			cache = nil
		} else {
			a.closers = append(a.closers, func(context.Context) error { return cache.Close() })
		}
	}

	var repo predictions.PredictionRecordRepo
	if cfg.History.Enabled() {
		svc, err := db.Open(cfg.History.Driver, cfg.History.DSN, log)
		if err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("open history store: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return svc.Close() })
		repo = predictions.NewPredictionRecordRepo(svc.DB(), log)

		if cfg.History.Retention.Duration > 0 {
			job := retention.NewJob(repo, cfg.History.Retention.Duration, log)
			if a.cron, err = job.Start(cfg.History.RetentionSchedule); err != nil {
				a.Close(ctx)
				return nil, err
			}
		}
	}

	var sink analytics.Sink
	if cfg.Analytics.Enabled() {
		sink, err = analytics.NewClickHouseSink(ctx, log, analytics.Options{
			Addr:     cfg.Analytics.ClickHouseAddr,
			Database: cfg.Analytics.Database,
			Username: cfg.Analytics.Username,
			Password: cfg.Analytics.Password,
		})
		if err != nil {
			log.Warn("analytics sink disabled", "error", err)
			sink = nil
		} else {
			a.closers = append(a.closers, func(context.Context) error { return sink.Close() })
		}
	}
	recorder := audit.NewRecorder(repo, sink, log)

	var authMW *httpMW.AuthMiddleware
	if cfg.Auth.JWTSecret != "" {
		authMW = httpMW.NewAuthMiddleware(log, cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	}

	a.server = apihttp.NewServer(
		apihttp.ServerConfig{
			Addr:              cfg.HTTP.Addr,
			ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout.Duration,
			IdleTimeout:       cfg.HTTP.IdleTimeout.Duration,
		},
		apihttp.RouterConfig{
			Log:            log,
			ServiceName:    observability.DefaultServiceName,
			CORSOrigins:    cfg.HTTP.CORSOrigins,
			MaxBodyBytes:   cfg.HTTP.MaxRequestBytes,
			AuthMiddleware: authMW,
			HealthHandler:  httpH.NewHealthHandler(a.Registry, cfg.Version),
			ModelHandler:   httpH.NewModelHandler(a.Registry, a.Engine.Threshold()),
			PredictHandler: httpH.NewPredictHandler(log, httpH.PredictHandlerConfig{
				Engine:         a.Engine,
				Models:         a.Registry,
				Cache:          cache,
				Audit:          recorder,
				PredictTimeout: cfg.Engine.PredictTimeout.Duration,
				BatchLimit:     cfg.Engine.BatchLimit,
			}),
			HistoryHandler: httpH.NewHistoryHandler(recorder),
		},
	)
	return a, nil
}

// loadModels reads bundles from the configured source, or builds the
// demonstration models when no source is set.
func loadModels(ctx context.Context, cfg *config.Config, log *logger.Logger) (*registry.Registry, error) {
	if cfg.Models.Source == "" {
		log.Warn("no model source configured, serving demonstration models", "version", sample.Version)
		models, err := sample.Models()
		if err != nil {
			return nil, fmt.Errorf("build demonstration models: %w", err)
		}
		return registry.New(models...)
	}

	timeout := cfg.Models.LoadTimeout.Duration
	if timeout <= 0 {
		timeout = defaultLoadTimeout
	}
	loadCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	src, err := artifact.Open(loadCtx, cfg.Models.Source, cfg.Models.Pattern)
	if err != nil {
		return nil, fmt.Errorf("open model source: %w", err)
	}
	defer src.Close()

	reg, err := registry.Load(loadCtx, src, log)
	if err != nil {
		return nil, fmt.Errorf("load models: %w", err)
	}
	log.Info("models loaded", "source", cfg.Models.Source, "available", reg.Available(), "failures", len(reg.Failures()))
	return reg, nil
}

// Handler exposes the HTTP handler, for tests.
func (a *App) Handler() http.Handler { return a.server.Engine }

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("http server listening", "addr", a.server.Addr())
		errCh <- a.server.Run()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.HTTP.ShutdownTimeout.Duration)
		defer cancel()
		err := a.server.Shutdown(shutdownCtx)
		a.Close(shutdownCtx)
		return err
	case err := <-errCh:
		a.Close(context.Background())
		return err
	}
}

// Close stops the retention scheduler and releases backends in reverse
// order of acquisition.
func (a *App) Close(ctx context.Context) {
	if a.cron != nil {
		<-a.cron.Stop().Done()
		a.cron = nil
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	if err := errors.Join(errs...); err != nil {
		a.Log.Warn("shutdown finished with errors", "error", err)
	}
	a.Log.Sync()
}
