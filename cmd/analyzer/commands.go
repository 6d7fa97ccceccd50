package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rxtech-lab/argo-analysis/internal/api"
	"github.com/rxtech-lab/argo-analysis/internal/config"
	"github.com/rxtech-lab/argo-analysis/internal/history"
	"github.com/rxtech-lab/argo-analysis/internal/logger"
	"github.com/rxtech-lab/argo-analysis/internal/pipeline"
	"github.com/rxtech-lab/argo-analysis/internal/report"
	"github.com/rxtech-lab/argo-analysis/internal/scheduler"
	"github.com/rxtech-lab/argo-analysis/internal/types"
	"github.com/rxtech-lab/argo-analysis/pkg/errors"
	"github.com/rxtech-lab/argo-analysis/pkg/marketdata"
	"github.com/rxtech-lab/argo-analysis/pkg/marketdata/writer"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const (
	defaultTicker   = "AAPL"
	shutdownTimeout = 10 * time.Second
)

// loadConfig reads the configuration file and applies the global flag overrides.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return cfg, err
	}

	if provider := cmd.String("provider"); provider != "" {
		cfg.Provider.Type = provider
	}

	if level := cmd.String("log-level"); level != "" {
		cfg.Log.Level = level
	}

	return cfg, cfg.Validate()
}

func setup(cmd *cli.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log, err := logger.NewLoggerWithLevel(cfg.Log.Level)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to create logger", err)
	}

	return newApp(cfg, log)
}

// periodArg parses the positional period at index, or returns fallback when absent.
func periodArg(cmd *cli.Command, index int, fallback marketdata.Period) (marketdata.Period, error) {
	raw := cmd.Args().Get(index)
	if raw == "" {
		return fallback, nil
	}

	return marketdata.ParsePeriod(raw)
}

func parseFormat(raw string) (report.Format, error) {
	switch format := report.Format(strings.ToLower(raw)); format {
	case report.FormatText, report.FormatJSON:
		return format, nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidParameter, "unknown report format %q (want text or json)", raw)
	}
}

func withSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

// runBatch analyzes symbols with a progress bar on stderr.
func runBatch(ctx context.Context, a *app, symbols []string, period marketdata.Period) (*pipeline.BatchResult, error) {
	bar := progressbar.Default(int64(len(symbols)), "analyzing")

	runner := a.runner(pipeline.WithProgress(func(pipeline.SymbolResult) {
		_ = bar.Add(1)
	}))

	batch, err := runner.Run(ctx, symbols, period)
	_ = bar.Finish()

	return batch, err
}

func printFailures(w io.Writer, batch *pipeline.BatchResult) {
	for _, result := range batch.Failed() {
		fmt.Fprintf(w, "%s %s: %v\n", ErrorStyle.Render("✗"), result.Symbol, result.Failure)
	}
}

func printHeadline(w io.Writer, a types.TrendAssessment) {
	fmt.Fprintf(w, "%s %s\n",
		TitleStyle.Render(a.Symbol),
		TrendStyle(a.Trend).Render(TrendMarker(a.Trend)+" "+string(a.Trend)),
	)
}

func analyzeAction(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	tickers := cmd.Args().Get(0)
	if tickers == "" {
		tickers = defaultTicker
	}

	symbols, err := pipeline.ParseTickers(tickers)
	if err != nil {
		return err
	}

	period, err := periodArg(cmd, 1, a.config.DefaultPeriod())
	if err != nil {
		return err
	}

	rawFormat := a.config.Output.Format
	if f := cmd.String("format"); f != "" {
		rawFormat = f
	}

	format, err := parseFormat(rawFormat)
	if err != nil {
		return err
	}

	directory := a.config.Output.Directory
	if o := cmd.String("output"); o != "" {
		directory = o
	}

	ctx, stop := withSignals(ctx)
	defer stop()

	batch, err := runBatch(ctx, a, symbols, period)
	if err != nil {
		return err
	}

	printFailures(os.Stderr, batch)

	successful := batch.Successful()
	if len(successful) == 0 {
		return errors.Newf(errors.ErrCodeDataNotFound, "no data for %s over %s", strings.Join(symbols, ", "), period)
	}

	if len(symbols) > 1 && len(successful) >= 2 {
		if err := printComparison(os.Stdout, format, batch, false); err != nil {
			return err
		}
	} else {
		for _, result := range successful {
			if err := printAssessment(os.Stdout, format, result.Output.Assessment, period, batch.Finished); err != nil {
				return err
			}
		}
	}

	if directory == "" {
		return nil
	}

	for _, result := range successful {
		path, err := report.SaveAssessment(directory, format, result.Output.Assessment, period, batch.Finished)
		if err != nil {
			return err
		}

		fmt.Fprintln(os.Stderr, HelpStyle.Render("Report saved to "+path))
	}

	return nil
}

func printAssessment(w io.Writer, format report.Format, a types.TrendAssessment, period marketdata.Period, at time.Time) error {
	if format == report.FormatJSON {
		return report.WriteJSON(w, a)
	}

	printHeadline(w, a)

	return report.WriteAssessment(w, a, period, at)
}

func printComparison(w io.Writer, format report.Format, batch *pipeline.BatchResult, ranking bool) error {
	comparison := batch.Comparison()

	rows, err := comparison.Summary()
	if err != nil {
		return err
	}

	entries, err := comparison.Ranking()
	if err != nil {
		return err
	}

	if format == report.FormatJSON {
		return report.WriteJSON(w, struct {
			Period  marketdata.Period `json:"period"`
			Summary any               `json:"summary"`
			Ranking any               `json:"ranking"`
		}{batch.Period, rows, entries})
	}

	if err := report.WriteSummary(w, rows, batch.Period); err != nil {
		return err
	}

	if !ranking {
		return nil
	}

	return report.WriteRanking(w, entries)
}

func compareAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return errors.New(errors.ErrCodeMissingParameter, "compare needs a comma separated list of tickers")
	}

	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	symbols, err := pipeline.ParseTickers(cmd.Args().Get(0))
	if err != nil {
		return err
	}

	period, err := periodArg(cmd, 1, a.config.DefaultPeriod())
	if err != nil {
		return err
	}

	format, err := parseFormat(a.config.Output.Format)
	if err != nil {
		return err
	}

	ctx, stop := withSignals(ctx)
	defer stop()

	batch, err := runBatch(ctx, a, symbols, period)
	if err != nil {
		return err
	}

	printFailures(os.Stderr, batch)

	return printComparison(os.Stdout, format, batch, true)
}

func exportAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return errors.New(errors.ErrCodeMissingParameter, "export needs a ticker")
	}

	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	symbols, err := pipeline.ParseTickers(cmd.Args().Get(0))
	if err != nil {
		return err
	}

	if len(symbols) != 1 {
		return errors.New(errors.ErrCodeInvalidTicker, "export takes a single ticker")
	}

	period, err := periodArg(cmd, 1, a.config.DefaultPeriod())
	if err != nil {
		return err
	}

	ctx, stop := withSignals(ctx)
	defer stop()

	result := a.runner().Analyze(ctx, symbols[0], period)
	if result.Failure != nil {
		return result.Failure
	}

	path, err := writer.WriteTable(writer.NewDuckDBWriter(cmd.String("out")), result.Output.Table)
	if err != nil {
		return err
	}

	fmt.Printf("Exported %d rows of %s to %s\n", result.Output.Table.Len(), symbols[0], path)

	return nil
}

// batchHandler prints, saves, records and broadcasts every scheduled batch.
// out and hub may be nil.
func (a *app) batchHandler(format report.Format, out io.Writer, hub *api.Hub) scheduler.BatchHandler {
	return func(batch *pipeline.BatchResult) {
		if out != nil {
			printFailures(out, batch)

			for _, result := range batch.Successful() {
				printHeadline(out, result.Output.Assessment)
			}
		}

		a.saveReports(format, batch)
		a.recordHistory(batch, out)

		if hub != nil {
			if err := hub.Broadcast(api.NewBatchEvent(batch)); err != nil {
				a.logger.Error("Failed to broadcast batch", zap.String("runId", batch.RunID), zap.Error(err))
			}
		}
	}
}

func (a *app) saveReports(format report.Format, batch *pipeline.BatchResult) {
	if a.config.Output.Directory == "" {
		return
	}

	for _, result := range batch.Successful() {
		path, err := report.SaveAssessment(a.config.Output.Directory, format, result.Output.Assessment, batch.Period, batch.Finished)
		if err != nil {
			a.logger.Error("Failed to save report", zap.String("symbol", result.Symbol), zap.Error(err))

			continue
		}

		a.logger.Info("Report saved", zap.String("symbol", result.Symbol), zap.String("path", path))
	}
}

func (a *app) recordHistory(batch *pipeline.BatchResult, out io.Writer) {
	if a.history == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	entries := history.EntriesFromBatch(batch)

	changes, err := history.Changes(ctx, a.history, entries)
	if err != nil {
		a.logger.Error("Failed to compare with history", zap.Error(err))
	}

	for _, change := range changes {
		a.logger.Info("Trend changed",
			zap.String("symbol", change.Symbol),
			zap.String("previous", string(change.Previous)),
			zap.String("current", string(change.Current)),
		)

		if out != nil {
			fmt.Fprintf(out, "%s %s: %s → %s\n", TrendMarker(change.Current), change.Symbol,
				change.Previous, TrendStyle(change.Current).Render(string(change.Current)))
		}
	}

	if err := a.history.Record(ctx, entries...); err != nil {
		a.logger.Error("Failed to record history", zap.String("runId", batch.RunID), zap.Error(err))
	}
}

// watchFromFlags returns the configured watch with the command's overrides applied.
func (a *app) watchFromFlags(cmd *cli.Command) scheduler.Watch {
	watch := scheduler.Watch{
		Schedule: a.config.Watch.Schedule,
		Symbols:  a.config.Watch.Symbols,
		Period:   a.config.WatchPeriod(),
	}

	if schedule := cmd.String("schedule"); schedule != "" {
		watch.Schedule = schedule
	}

	if symbols := cmd.String("symbols"); symbols != "" {
		watch.Symbols = strings.Split(symbols, ",")
	}

	return watch
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.config.Server.Addr
	if flag := cmd.String("addr"); flag != "" {
		addr = flag
	}

	var opts []api.Option
	if a.history != nil {
		opts = append(opts, api.WithHistory(a.history))
	}

	var sched *scheduler.Scheduler

	hub := api.NewHub(a.logger.Component("stream"))

	if cmd.Bool("watch") {
		format, err := parseFormat(a.config.Output.Format)
		if err != nil {
			return err
		}

		sched = scheduler.NewScheduler(a.runner(), a.logger.Component("scheduler"), a.batchHandler(format, nil, hub))
		if _, err := sched.Register(a.watchFromFlags(cmd)); err != nil {
			return err
		}

		opts = append(opts, api.WithStream(hub))
	}

	server := api.NewServer(a.runner(), a.metrics, a.logger.Component("api"), api.Config{
		DefaultPeriod: a.config.DefaultPeriod(),
		ReadTimeout:   a.config.Server.ReadTimeout,
		WriteTimeout:  a.config.Server.WriteTimeout,
	}, opts...)

	if err := server.Start(addr); err != nil {
		return err
	}

	if sched != nil {
		sched.Start()
	}

	fmt.Println(TitleStyle.Render("Serving on http://" + server.Address()))

	ctx, stop := withSignals(ctx)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.logger.Info("Shutting down API server")

	if sched != nil {
		sched.Stop(shutdownCtx)
	}

	hub.Close()

	return server.Stop(shutdownCtx)
}

func watchAction(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	format, err := parseFormat(a.config.Output.Format)
	if err != nil {
		return err
	}

	watch := a.watchFromFlags(cmd)
	sched := scheduler.NewScheduler(a.runner(), a.logger.Component("scheduler"), a.batchHandler(format, os.Stdout, nil))

	if _, err := sched.Register(watch); err != nil {
		return err
	}

	ctx, stop := withSignals(ctx)
	defer stop()

	if cmd.Bool("now") {
		sched.RunNow(watch)
	}

	sched.Start()
	fmt.Println(HelpStyle.Render(fmt.Sprintf("Watching %s on %q, press Ctrl+C to stop", strings.Join(watch.Symbols, ", "), watch.Schedule)))

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	sched.Stop(shutdownCtx)

	return nil
}

func schemaAction(ctx context.Context, cmd *cli.Command) error {
	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}
