// Package api serves analysis results over HTTP as JSON.
package api

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/argo-analysis/internal/history"
	"github.com/rxtech-lab/argo-analysis/internal/logger"
	"github.com/rxtech-lab/argo-analysis/internal/metrics"
	"github.com/rxtech-lab/argo-analysis/internal/pipeline"
	"github.com/rxtech-lab/argo-analysis/internal/version"
	"github.com/rxtech-lab/argo-analysis/pkg/errors"
	"github.com/rxtech-lab/argo-analysis/pkg/marketdata"
	"github.com/rxtech-lab/argo-analysis/pkg/marketdata/provider"
	"go.uber.org/zap"
)

// Config holds the server settings.
type Config struct {
	DefaultPeriod marketdata.Period
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
}

// Server is the HTTP JSON API.
type Server struct {
	runner  *pipeline.Runner
	metrics *metrics.Metrics
	logger  *logger.Logger
	config  Config
	history history.Store
	stream  *Hub

	httpServer *http.Server
	listener   net.Listener
}

// Option configures optional Server routes.
type Option func(*Server)

// WithHistory serves the recorded assessments of store under /api/v1/history.
func WithHistory(store history.Store) Option {
	return func(s *Server) {
		s.history = store
	}
}

// WithStream serves hub under /api/v1/stream.
func WithStream(hub *Hub) Option {
	return func(s *Server) {
		s.stream = hub
	}
}

// NewServer creates a Server. metrics may be nil, in which case /metrics is not served.
func NewServer(runner *pipeline.Runner, m *metrics.Metrics, log *logger.Logger, config Config, opts ...Option) *Server {
	if log == nil {
		log = logger.NewNopLogger()
	}

	if config.DefaultPeriod == "" {
		config.DefaultPeriod = marketdata.DefaultPeriod
	}

	s := &Server{
		runner:  runner,
		metrics: m,
		logger:  log,
		config:  config,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Router returns the route table.
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()
	router.Use(s.logRequests)

	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/providers", s.handleProviders).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/analysis/{symbol}", s.handleAnalysis).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/comparison", s.handleComparison).Methods(http.MethodGet)

	if s.history != nil {
		router.HandleFunc("/api/v1/history/{symbol}", s.handleHistory).Methods(http.MethodGet)
	}

	if s.stream != nil {
		router.Handle("/api/v1/stream", s.stream).Methods(http.MethodGet)
	}

	if s.metrics != nil {
		router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	return router
}

// Start listens on address and serves in the background.
func (s *Server) Start(address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	s.logger.Info("API server listening", zap.String("address", s.Address()))

	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Address returns the address the server is listening on.
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		s.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", recorder.status),
			zap.Duration("duration", time.Since(started)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack lets websocket upgrades pass through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}

	r.status = http.StatusSwitchingProtocols

	return hijacker.Hijack()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: version.GetVersion()})
}

func (s *Server) handleProviders(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, provider.ListProviderInfo())
}

// handleAnalysis handles GET /api/v1/analysis/{symbol}?period=1mo&table=false
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	symbols, err := pipeline.NormalizeTickers([]string{mux.Vars(r)["symbol"]})
	if err != nil {
		writeError(w, err)

		return
	}

	period, err := s.period(r)
	if err != nil {
		writeError(w, err)

		return
	}

	includeTable := true
	if raw := r.URL.Query().Get("table"); raw != "" {
		includeTable, err = strconv.ParseBool(raw)
		if err != nil {
			writeError(w, errors.Newf(errors.ErrCodeInvalidParameter, "invalid table flag %q", raw))

			return
		}
	}

	result := s.runner.Analyze(r.Context(), symbols[0], period)
	if !result.OK() {
		writeFailure(w, result.Failure)

		return
	}

	resp := analysisResponse{
		Symbol:     result.Symbol,
		Period:     period,
		Assessment: result.Output.Assessment,
	}

	if includeTable {
		resp.Table = newTableResponse(result.Output.Table)
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleComparison handles GET /api/v1/comparison?symbols=A,B&period=3mo
func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	symbols, err := pipeline.ParseTickers(r.URL.Query().Get("symbols"))
	if err != nil {
		writeError(w, err)

		return
	}

	period, err := s.period(r)
	if err != nil {
		writeError(w, err)

		return
	}

	batch, err := s.runner.Run(r.Context(), symbols, period)
	if err != nil {
		writeError(w, err)

		return
	}

	failures := newFailureResponses(batch.Failed())
	set := batch.Comparison()

	ranking, err := set.Ranking()
	if err != nil {
		if errors.IsInsufficientComparisonSet(err) {
			writeJSON(w, http.StatusUnprocessableEntity, insufficientComparisonResponse{
				errorResponse: errorResponse{Error: err.Error(), Code: int(errors.GetCode(err))},
				Failures:      failures,
			})

			return
		}

		writeError(w, err)

		return
	}

	// the set holds at least two members past this point
	normalized, _ := set.Normalized()
	rsi, _ := set.RelativeRSI()
	returns, _ := set.Returns()
	summary, _ := set.Summary()

	writeJSON(w, http.StatusOK, comparisonResponse{
		RunID:      batch.RunID,
		Period:     period,
		Normalized: newSeriesResponses(normalized),
		RSI:        newSeriesResponses(rsi),
		Returns:    newReturnsResponses(returns),
		Ranking:    newRankResponses(ranking),
		Summary:    newSummaryResponses(summary),
		Failures:   failures,
	})
}

// handleHistory handles GET /api/v1/history/{symbol}?limit=20
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	symbols, err := pipeline.NormalizeTickers([]string{mux.Vars(r)["symbol"]})
	if err != nil {
		writeError(w, err)

		return
	}

	limit := history.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			writeError(w, errors.Newf(errors.ErrCodeInvalidParameter, "invalid limit %q", raw))

			return
		}
	}

	entries, err := s.history.List(r.Context(), symbols[0], limit)
	if err != nil {
		writeError(w, err)

		return
	}

	if entries == nil {
		entries = []history.Entry{}
	}

	writeJSON(w, http.StatusOK, historyResponse{Symbol: symbols[0], Entries: entries})
}

func (s *Server) period(r *http.Request) (marketdata.Period, error) {
	raw := r.URL.Query().Get("period")
	if raw == "" {
		return s.config.DefaultPeriod, nil
	}

	return marketdata.ParsePeriod(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps coded errors to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)

	status := http.StatusInternalServerError

	switch code {
	case errors.ErrCodeInvalidTicker, errors.ErrCodeInvalidTimespan, errors.ErrCodeInvalidParameter:
		status = http.StatusBadRequest
	case errors.ErrCodeInsufficientComparisonSet, errors.ErrCodeMalformedSeries:
		status = http.StatusUnprocessableEntity
	case errors.ErrCodeDataNotFound, errors.ErrCodeEmptySeries:
		status = http.StatusNotFound
	case errors.ErrCodeMarketDataFetchFailed, errors.ErrCodeMarketDataParseFailed:
		status = http.StatusBadGateway
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, errorResponse{Error: err.Error(), Code: int(code)})
}

func writeFailure(w http.ResponseWriter, failure *pipeline.Failure) {
	status := http.StatusBadGateway

	switch failure.Kind {
	case pipeline.FailureEmpty:
		status = http.StatusNotFound
	case pipeline.FailureMalformed:
		status = http.StatusUnprocessableEntity
	case pipeline.FailureFetch:
		status = http.StatusBadGateway
	}

	writeJSON(w, status, failureResponse{Reason: string(failure.Kind), Error: failure.Error()})
}
