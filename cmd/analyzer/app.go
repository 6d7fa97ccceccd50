package main

import (
	"context"

	"github.com/rxtech-lab/argo-analysis/internal/config"
	"github.com/rxtech-lab/argo-analysis/internal/history"
	"github.com/rxtech-lab/argo-analysis/internal/indicator"
	"github.com/rxtech-lab/argo-analysis/internal/logger"
	"github.com/rxtech-lab/argo-analysis/internal/metrics"
	"github.com/rxtech-lab/argo-analysis/internal/pipeline"
	"github.com/rxtech-lab/argo-analysis/internal/trend"
	"github.com/rxtech-lab/argo-analysis/pkg/marketdata"
	"github.com/rxtech-lab/argo-analysis/pkg/marketdata/provider"
	"go.uber.org/zap"
)

// app wires the configured source, engine and classifier together.
type app struct {
	config     config.Config
	logger     *logger.Logger
	source     marketdata.Source
	engine     *indicator.Engine
	classifier *trend.Classifier
	metrics    *metrics.Metrics
	history    history.Store
	closers    []func() error
}

func newApp(cfg config.Config, log *logger.Logger) (*app, error) {
	source, err := provider.NewSource(cfg.Provider.SourceConfig(), log.Component("provider"))
	if err != nil {
		return nil, err
	}

	a := &app{
		config:  cfg,
		logger:  log,
		metrics: metrics.NewMetrics(),
	}

	if closer, ok := source.(interface{ Close() error }); ok {
		a.closers = append(a.closers, closer.Close)
	}

	if a.source, err = a.decorate(source); err != nil {
		a.Close()

		return nil, err
	}

	if a.engine, err = indicator.NewEngine(cfg.Indicators.Params()); err != nil {
		a.Close()

		return nil, err
	}

	if a.classifier, err = trend.NewClassifier(cfg.Classifier.Thresholds()); err != nil {
		a.Close()

		return nil, err
	}

	if cfg.History.Path != "" {
		store, err := history.NewSQLiteStore(cfg.History.Path, log.Component("history"))
		if err != nil {
			a.Close()

			return nil, err
		}

		a.history = store
		a.closers = append(a.closers, store.Close)
	}

	log.Debug("Application initialized",
		zap.String("provider", source.Name()),
		zap.Bool("cache", cfg.Cache.Enabled),
		zap.String("cacheBackend", cfg.Cache.Backend),
		zap.Duration("throttle", cfg.Pipeline.ThrottleInterval),
		zap.Bool("history", a.history != nil),
	)

	return a, nil
}

// decorate applies the throttle below the cache so cache hits are never delayed.
func (a *app) decorate(source marketdata.Source) (marketdata.Source, error) {
	if a.config.Pipeline.ThrottleInterval > 0 {
		source = marketdata.NewThrottledSource(source, a.config.Pipeline.ThrottleInterval)
	}

	if !a.config.Cache.Enabled {
		return source, nil
	}

	if a.config.Cache.Backend != config.CacheBackendRedis {
		return marketdata.NewCachedSource(source, a.config.Cache.TTL), nil
	}

	client, err := marketdata.NewRedisClient(context.Background(), a.config.Cache.Redis.ClientConfig())
	if err != nil {
		return nil, err
	}

	a.closers = append(a.closers, client.Close)

	return marketdata.NewRedisCachedSource(source, client, a.config.Cache.TTL, a.logger.Component("cache")), nil
}

func (a *app) runner(opts ...pipeline.Option) *pipeline.Runner {
	base := []pipeline.Option{
		pipeline.WithConcurrency(a.config.Pipeline.Concurrency),
		pipeline.WithLogger(a.logger.Component("pipeline")),
		pipeline.WithMetrics(a.metrics),
	}

	return pipeline.NewRunner(a.source, a.engine, a.classifier, append(base, opts...)...)
}

// Close releases provider, cache and history resources.
func (a *app) Close() {
	for _, closer := range a.closers {
		if err := closer(); err != nil {
			a.logger.Warn("Failed to close resource", zap.Error(err))
		}
	}

	a.closers = nil
}
