package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-analysis/internal/api"
	"github.com/rxtech-lab/argo-analysis/internal/history"
	"github.com/rxtech-lab/argo-analysis/internal/indicator"
	"github.com/rxtech-lab/argo-analysis/internal/logger"
	"github.com/rxtech-lab/argo-analysis/internal/pipeline"
	"github.com/rxtech-lab/argo-analysis/internal/trend"
	"github.com/rxtech-lab/argo-analysis/internal/types"
	"github.com/rxtech-lab/argo-analysis/mocks"
	"github.com/rxtech-lab/argo-analysis/pkg/marketdata"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type StreamTestSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	store  *history.SQLiteStore
	hub    *api.Hub
	server *httptest.Server
}

func TestStreamSuite(t *testing.T) {
	suite.Run(t, new(StreamTestSuite))
}

func (suite *StreamTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	source := mocks.NewMockSource(suite.ctrl)
	source.EXPECT().Name().Return("mock").AnyTimes()

	engine, err := indicator.NewEngine(indicator.DefaultParams())
	suite.Require().NoError(err)
	classifier, err := trend.NewClassifier(trend.DefaultThresholds())
	suite.Require().NoError(err)

	suite.store, err = history.NewSQLiteStore(filepath.Join(suite.T().TempDir(), "history.db"), nil)
	suite.Require().NoError(err)

	suite.hub = api.NewHub(logger.NewNopLogger())

	runner := pipeline.NewRunner(source, engine, classifier)
	apiServer := api.NewServer(runner, nil, logger.NewNopLogger(), api.Config{},
		api.WithHistory(suite.store),
		api.WithStream(suite.hub),
	)
	suite.server = httptest.NewServer(apiServer.Router())
}

func (suite *StreamTestSuite) TearDownTest() {
	suite.hub.Close()
	suite.server.Close()
	suite.store.Close()
	suite.ctrl.Finish()
}

func (suite *StreamTestSuite) TestHistory() {
	recorded := time.Date(2024, 3, 1, 16, 0, 0, 0, time.UTC)
	for i, trendLabel := range []types.TrendLabel{types.TrendBullish, types.TrendBearish} {
		suite.Require().NoError(suite.store.Record(context.Background(), history.Entry{
			RunID:       "run",
			Symbol:      "AAPL",
			Period:      marketdata.PeriodOneMonth,
			BarTime:     recorded,
			RecordedAt:  recorded.Add(time.Duration(i) * time.Minute),
			Trend:       trendLabel,
			RSISignal:   types.RSISignalNeutral,
			MACDSignal:  types.MACDSignalBearish,
			LatestClose: optional.Some(100.0),
		}))
	}

	resp, err := http.Get(suite.server.URL + "/api/v1/history/aapl?limit=1")
	suite.Require().NoError(err)
	defer resp.Body.Close()
	suite.Equal(http.StatusOK, resp.StatusCode)

	var body struct {
		Symbol  string           `json:"symbol"`
		Entries []map[string]any `json:"entries"`
	}
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	suite.Equal("AAPL", body.Symbol)
	suite.Require().Len(body.Entries, 1)
	suite.Equal(string(types.TrendBearish), body.Entries[0]["trend"])
	suite.Nil(body.Entries[0]["rsi"])
}

func (suite *StreamTestSuite) TestHistoryEmptyAndInvalidLimit() {
	resp, err := http.Get(suite.server.URL + "/api/v1/history/MSFT")
	suite.Require().NoError(err)
	defer resp.Body.Close()
	suite.Equal(http.StatusOK, resp.StatusCode)

	var body map[string]any
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	suite.Equal([]any{}, body["entries"])

	resp, err = http.Get(suite.server.URL + "/api/v1/history/MSFT?limit=0")
	suite.Require().NoError(err)
	defer resp.Body.Close()
	suite.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (suite *StreamTestSuite) TestStreamBroadcast() {
	url := "ws" + strings.TrimPrefix(suite.server.URL, "http") + "/api/v1/stream"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	suite.Require().NoError(err)
	defer conn.Close()

	suite.Eventually(func() bool { return suite.hub.Len() == 1 }, time.Second, 10*time.Millisecond)

	batch := &pipeline.BatchResult{
		RunID:    "run-1",
		Period:   marketdata.PeriodOneMonth,
		Finished: time.Date(2024, 3, 1, 16, 0, 0, 0, time.UTC),
		Results: []pipeline.SymbolResult{
			{Symbol: "AAPL", Output: &pipeline.Output{Assessment: types.TrendAssessment{Symbol: "AAPL", Trend: types.TrendBullish}}},
			{Symbol: "BAD", Failure: &pipeline.Failure{Kind: pipeline.FailureEmpty}},
		},
	}
	suite.Require().NoError(suite.hub.Broadcast(api.NewBatchEvent(batch)))

	suite.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	_, data, err := conn.ReadMessage()
	suite.Require().NoError(err)

	var event map[string]any
	suite.Require().NoError(json.Unmarshal(data, &event))
	suite.Equal("batch", event["type"])
	suite.Equal("run-1", event["runId"])
	suite.Len(event["assessments"], 1)
	suite.Len(event["failures"], 1)

	suite.hub.Close()

	_, _, err = conn.ReadMessage()
	suite.Error(err)
	suite.Eventually(func() bool { return suite.hub.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func (suite *StreamTestSuite) TestOptionalRoutesAbsentByDefault() {
	server := httptest.NewServer(api.NewServer(nil, nil, nil, api.Config{}).Router())
	defer server.Close()

	for _, path := range []string{"/api/v1/history/AAPL", "/api/v1/stream", "/metrics"} {
		resp, err := http.Get(server.URL + path)
		suite.Require().NoError(err)
		resp.Body.Close()
		suite.Equal(http.StatusNotFound, resp.StatusCode, path)
	}
}
