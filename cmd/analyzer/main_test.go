package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rxtech-lab/argo-analysis/internal/config"
	"github.com/rxtech-lab/argo-analysis/internal/indicator"
	"github.com/rxtech-lab/argo-analysis/internal/logger"
	"github.com/rxtech-lab/argo-analysis/internal/pipeline"
	"github.com/rxtech-lab/argo-analysis/internal/report"
	"github.com/rxtech-lab/argo-analysis/internal/types"
	"github.com/rxtech-lab/argo-analysis/mocks"
	"github.com/rxtech-lab/argo-analysis/pkg/errors"
	"github.com/rxtech-lab/argo-analysis/pkg/marketdata"
	"github.com/rxtech-lab/argo-analysis/pkg/marketdata/writer"
	"github.com/stretchr/testify/suite"
	"github.com/urfave/cli/v3"
	"go.uber.org/mock/gomock"
)

type AnalyzerTestSuite struct {
	suite.Suite
	tempDir    string
	configPath string
}

func TestAnalyzerSuite(t *testing.T) {
	suite.Run(t, new(AnalyzerTestSuite))
}

func (suite *AnalyzerTestSuite) SetupSuite() {
	tempDir, err := os.MkdirTemp("", "analyzer-cli-test")
	suite.Require().NoError(err)
	suite.tempDir = tempDir

	engine, err := indicator.NewEngine(indicator.DefaultParams())
	suite.Require().NoError(err)

	dataDir := filepath.Join(tempDir, "data")
	suite.Require().NoError(os.MkdirAll(dataDir, 0o755))

	for _, symbol := range []string{"AAPL", "MSFT"} {
		path := filepath.Join(dataDir, symbol+".parquet")
		_, err := writer.WriteTable(writer.NewDuckDBWriter(path), engine.Compute(mocks.Series(symbol, 80)))
		suite.Require().NoError(err)
	}

	yaml := fmt.Sprintf(`
log:
  level: error
provider:
  type: parquet
  data_path: %q
period: max
`, filepath.Join(dataDir, "*.parquet"))

	suite.configPath = filepath.Join(tempDir, "config.yaml")
	suite.Require().NoError(os.WriteFile(suite.configPath, []byte(yaml), 0o644))
}

func (suite *AnalyzerTestSuite) TearDownSuite() {
	os.RemoveAll(suite.tempDir)
}

func (suite *AnalyzerTestSuite) run(args ...string) error {
	return newCommand().Run(context.Background(), append([]string{"analyzer", "--config", suite.configPath}, args...))
}

func (suite *AnalyzerTestSuite) TestParseFormat() {
	format, err := parseFormat("JSON")
	suite.NoError(err)
	suite.Equal("json", string(format))

	_, err = parseFormat("csv")
	suite.Error(err)
	suite.Equal(errors.ErrCodeInvalidParameter, errors.GetCode(err))
}

func (suite *AnalyzerTestSuite) TestTrendMarker() {
	suite.Equal("▲", TrendMarker(types.TrendStrongBullish))
	suite.Equal("▼", TrendMarker(types.TrendBearish))
	suite.Equal("■", TrendMarker(types.TrendSideways))
	suite.Equal("■", TrendMarker(types.TrendInsufficientData))
}

func (suite *AnalyzerTestSuite) TestDecorate() {
	ctrl := gomock.NewController(suite.T())
	defer ctrl.Finish()

	source := mocks.NewMockSource(ctrl)

	a := &app{config: config.Default(), logger: logger.NewNopLogger()}
	a.config.Pipeline.ThrottleInterval = time.Second

	decorated, err := a.decorate(source)
	suite.NoError(err)
	suite.IsType(&marketdata.CachedSource{}, decorated)

	a.config.Cache.Enabled = false
	decorated, err = a.decorate(source)
	suite.NoError(err)
	suite.IsType(&marketdata.ThrottledSource{}, decorated)

	a.config.Pipeline.ThrottleInterval = 0
	decorated, err = a.decorate(source)
	suite.NoError(err)
	suite.Equal(source, decorated)
}

func (suite *AnalyzerTestSuite) TestDecorateWithRedis() {
	server, err := miniredis.Run()
	suite.Require().NoError(err)
	defer server.Close()

	ctrl := gomock.NewController(suite.T())
	defer ctrl.Finish()

	a := &app{config: config.Default(), logger: logger.NewNopLogger()}
	a.config.Cache.Backend = config.CacheBackendRedis
	a.config.Cache.Redis.Addr = server.Addr()

	decorated, err := a.decorate(mocks.NewMockSource(ctrl))
	suite.Require().NoError(err)
	suite.IsType(&marketdata.RedisCachedSource{}, decorated)
	suite.Len(a.closers, 1)
	a.Close()

	a.config.Cache.Redis.Addr = "127.0.0.1:1"
	_, err = a.decorate(mocks.NewMockSource(ctrl))
	suite.Error(err)
}

func (suite *AnalyzerTestSuite) TestNewAppOpensHistory() {
	cfg := config.Default()
	cfg.History.Path = filepath.Join(suite.tempDir, "history.db")

	a, err := newApp(cfg, logger.NewNopLogger())
	suite.Require().NoError(err)
	defer a.Close()

	suite.NotNil(a.history)
}

func (suite *AnalyzerTestSuite) TestBatchHandlerRecordsHistory() {
	cfg := config.Default()
	cfg.History.Path = filepath.Join(suite.tempDir, "handler.db")

	a, err := newApp(cfg, logger.NewNopLogger())
	suite.Require().NoError(err)
	defer a.Close()

	batch := func(runID string, label types.TrendLabel) *pipeline.BatchResult {
		return &pipeline.BatchResult{
			RunID:    runID,
			Period:   marketdata.PeriodOneMonth,
			Finished: time.Now(),
			Results: []pipeline.SymbolResult{
				{Symbol: "AAPL", Output: &pipeline.Output{Assessment: types.TrendAssessment{Symbol: "AAPL", Trend: label}}},
			},
		}
	}

	var out bytes.Buffer
	handler := a.batchHandler(report.FormatText, &out, nil)

	handler(batch("run-1", types.TrendBullish))
	handler(batch("run-2", types.TrendBearish))

	entries, err := a.history.List(context.Background(), "AAPL", 10)
	suite.Require().NoError(err)
	suite.Len(entries, 2)
	suite.Contains(out.String(), "AAPL: bullish → ")
}

func (suite *AnalyzerTestSuite) TestNewAppWithDefaults() {
	a, err := newApp(config.Default(), logger.NewNopLogger())
	suite.Require().NoError(err)
	defer a.Close()

	suite.Equal("yahoo", a.source.Name())
	suite.NotNil(a.runner())
	suite.NotNil(a.metrics)
}

func (suite *AnalyzerTestSuite) TestLoadConfigOverrides() {
	var got config.Config

	run := func(args ...string) error {
		cmd := &cli.Command{
			Name:  "test",
			Flags: globalFlags(),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				var err error
				got, err = loadConfig(cmd)

				return err
			},
		}

		return cmd.Run(context.Background(), append([]string{"test"}, args...))
	}

	suite.Require().NoError(run("--provider", "binance", "--log-level", "debug"))
	suite.Equal("binance", got.Provider.Type)
	suite.Equal("debug", got.Log.Level)

	err := run("--provider", "nope")
	suite.Error(err)
	suite.Equal(errors.ErrCodeInvalidConfiguration, errors.GetCode(err))
}

func (suite *AnalyzerTestSuite) TestPeriodArg() {
	var got marketdata.Period

	run := func(args ...string) error {
		cmd := &cli.Command{
			Name: "test",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				var err error
				got, err = periodArg(cmd, 0, marketdata.PeriodOneMonth)

				return err
			},
		}

		return cmd.Run(context.Background(), append([]string{"test"}, args...))
	}

	suite.Require().NoError(run())
	suite.Equal(marketdata.PeriodOneMonth, got)

	suite.Require().NoError(run("3mo"))
	suite.Equal(marketdata.PeriodThreeMonths, got)

	err := run("3m")
	suite.Error(err)
	suite.Equal(errors.ErrCodeInvalidTimespan, errors.GetCode(err))
}

func (suite *AnalyzerTestSuite) TestAnalyzeWritesReport() {
	outputDir := filepath.Join(suite.tempDir, "reports")

	suite.Require().NoError(suite.run("analyze", "--output", outputDir, "AAPL"))

	matches, err := filepath.Glob(filepath.Join(outputDir, "AAPL_report_*.txt"))
	suite.NoError(err)
	suite.Len(matches, 1)
}

func (suite *AnalyzerTestSuite) TestAnalyzeUnknownTickerFails() {
	err := suite.run("analyze", "ZZZZ")
	suite.Error(err)
	suite.Equal(errors.ErrCodeDataNotFound, errors.GetCode(err))
}

func (suite *AnalyzerTestSuite) TestCompare() {
	suite.NoError(suite.run("compare", "AAPL,MSFT"))

	err := suite.run("compare", "AAPL")
	suite.Error(err)
	suite.Equal(errors.ErrCodeInsufficientComparisonSet, errors.GetCode(err))

	err = suite.run("compare")
	suite.Error(err)
	suite.Equal(errors.ErrCodeMissingParameter, errors.GetCode(err))
}

func (suite *AnalyzerTestSuite) TestExport() {
	out := filepath.Join(suite.tempDir, "export", "msft.parquet")
	suite.Require().NoError(os.MkdirAll(filepath.Dir(out), 0o755))

	suite.Require().NoError(suite.run("export", "--out", out, "MSFT"))

	info, err := os.Stat(out)
	suite.NoError(err)
	suite.Greater(info.Size(), int64(0))

	err = suite.run("export", "--out", out, "AAPL,MSFT")
	suite.Error(err)
	suite.Equal(errors.ErrCodeInvalidTicker, errors.GetCode(err))
}

func (suite *AnalyzerTestSuite) TestSchemaAndVersion() {
	suite.NoError(suite.run("schema"))
	suite.NoError(suite.run("version"))
}
