// Package pipeline runs fetch, indicator computation and classification for
// a list of symbols concurrently.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-analysis/internal/indicator"
	"github.com/rxtech-lab/argo-analysis/internal/logger"
	"github.com/rxtech-lab/argo-analysis/internal/metrics"
	"github.com/rxtech-lab/argo-analysis/internal/trend"
	"github.com/rxtech-lab/argo-analysis/internal/types"
	"github.com/rxtech-lab/argo-analysis/pkg/errors"
	"github.com/rxtech-lab/argo-analysis/pkg/marketdata"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of symbols processed at once.
const DefaultConcurrency = 4

// ProgressFunc is called after each symbol finishes. Calls are serialized.
type ProgressFunc func(result SymbolResult)

// Runner processes symbols against a Source.
type Runner struct {
	source      marketdata.Source
	engine      *indicator.Engine
	classifier  *trend.Classifier
	logger      *logger.Logger
	metrics     *metrics.Metrics
	concurrency int
	progress    ProgressFunc
	now         func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithConcurrency bounds the number of in-flight symbols.
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(r *Runner) {
		if log != nil {
			r.logger = log
		}
	}
}

// WithMetrics records outcomes and latencies on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(r *Runner) {
		r.progress = fn
	}
}

// NewRunner creates a Runner.
func NewRunner(source marketdata.Source, engine *indicator.Engine, classifier *trend.Classifier, opts ...Option) *Runner {
	r := &Runner{
		source:      source,
		engine:      engine,
		classifier:  classifier,
		logger:      logger.NewNopLogger(),
		concurrency: DefaultConcurrency,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run validates symbols and processes each on its own goroutine. Per-symbol
// failures are captured in the result. Invalid tickers fail the whole call
// before any fetch; cancellation of ctx stops issuing further symbols and is
// returned alongside the partial result.
func (r *Runner) Run(ctx context.Context, symbols []string, period marketdata.Period) (*BatchResult, error) {
	normalized, err := NormalizeTickers(symbols)
	if err != nil {
		return nil, err
	}

	batch := &BatchResult{
		RunID:   uuid.New().String(),
		Period:  period,
		Started: r.now(),
	}

	log := r.logger.With(zap.String("run_id", batch.RunID))
	log.Info("Starting batch",
		zap.Strings("symbols", normalized),
		zap.String("period", string(period)),
		zap.String("provider", r.source.Name()),
	)

	results := make([]SymbolResult, len(normalized))
	issued := make([]bool, len(normalized))
	done := make(chan SymbolResult)
	reported := make(chan struct{})

	go func() {
		defer close(reported)

		for result := range done {
			if r.progress != nil {
				r.progress(result)
			}
		}
	}()

	var g errgroup.Group
	g.SetLimit(r.concurrency)

	for i, symbol := range normalized {
		if ctx.Err() != nil {
			break
		}

		issued[i] = true

		g.Go(func() error {
			results[i] = r.Analyze(ctx, symbol, period)
			done <- results[i]

			return nil
		})
	}

	_ = g.Wait()
	close(done)
	<-reported

	for i, ok := range issued {
		if ok {
			batch.Results = append(batch.Results, results[i])
		}
	}

	batch.Finished = r.now()

	if r.metrics != nil {
		r.metrics.ObserveBatch(batch.Finished)
	}

	log.Info("Finished batch",
		zap.Int("successful", len(batch.Successful())),
		zap.Int("failed", len(batch.Failed())),
		zap.Duration("duration", batch.Finished.Sub(batch.Started)),
	)

	if err := ctx.Err(); err != nil {
		return batch, err
	}

	return batch, nil
}

// Analyze fetches and processes a single symbol.
func (r *Runner) Analyze(ctx context.Context, symbol string, period marketdata.Period) SymbolResult {
	started := r.now()
	result := SymbolResult{Symbol: symbol}

	series, err := r.source.Fetch(ctx, symbol, period)
	fetched := r.now()

	if r.metrics != nil {
		r.metrics.ObserveFetch(r.source.Name(), fetched.Sub(started))
	}

	switch {
	case err != nil && errors.IsMalformedSeries(err):
		result.Failure = &Failure{Kind: FailureMalformed, Err: err}
	case err != nil:
		result.Failure = &Failure{Kind: FailureFetch, Err: err}
	case series.IsEmpty():
		result.Failure = &Failure{Kind: FailureEmpty, Err: errors.Newf(errors.ErrCodeEmptySeries, "no data for %s", symbol)}
	default:
		output := r.Process(series)
		result.Output = &output

		if r.metrics != nil {
			r.metrics.ObserveCompute(r.now().Sub(fetched))
		}
	}

	result.Duration = r.now().Sub(started)
	r.record(result)

	return result
}

// Process runs the indicator engine and classifier over an already fetched series.
func (r *Runner) Process(series types.PriceSeries) Output {
	table := r.engine.Compute(series)

	return Output{
		Series:     series,
		Table:      table,
		Assessment: r.classifier.Assess(table),
	}
}

func (r *Runner) record(result SymbolResult) {
	if result.OK() {
		r.logger.Debug("Analyzed symbol",
			zap.String("symbol", result.Symbol),
			zap.Int("bars", result.Output.Series.Len()),
			zap.String("trend", string(result.Output.Assessment.Trend)),
		)

		for _, advisory := range result.Output.Series.Advisories() {
			r.logger.Warn("Bar advisory", zap.String("symbol", result.Symbol), zap.String("advisory", advisory))
		}

		if r.metrics != nil {
			r.metrics.ObserveSuccess(result.Output.Series.Len())
		}

		return
	}

	r.logger.Warn("Symbol failed",
		zap.String("symbol", result.Symbol),
		zap.String("reason", string(result.Failure.Kind)),
		zap.Error(result.Failure.Err),
	)

	if r.metrics != nil {
		r.metrics.ObserveFailure(string(result.Failure.Kind))
	}
}
