package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
)

type MetricsTestSuite struct {
	suite.Suite
	metrics *Metrics
}

func TestMetricsSuite(t *testing.T) {
	suite.Run(t, new(MetricsTestSuite))
}

func (suite *MetricsTestSuite) SetupTest() {
	suite.metrics = NewMetrics()
}

func (suite *MetricsTestSuite) TestObserveOutcomes() {
	suite.metrics.ObserveSuccess(120)
	suite.metrics.ObserveSuccess(30)
	suite.metrics.ObserveFailure("fetch_failed")

	suite.Equal(2.0, testutil.ToFloat64(suite.metrics.SymbolsTotal.WithLabelValues(OutcomeSuccess, "")))
	suite.Equal(1.0, testutil.ToFloat64(suite.metrics.SymbolsTotal.WithLabelValues(OutcomeFailure, "fetch_failed")))
	suite.Equal(150.0, testutil.ToFloat64(suite.metrics.BarsTotal))
}

func (suite *MetricsTestSuite) TestObserveBatch() {
	finished := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	suite.metrics.ObserveBatch(finished)

	suite.Equal(1.0, testutil.ToFloat64(suite.metrics.BatchesTotal))
	suite.Equal(float64(finished.Unix()), testutil.ToFloat64(suite.metrics.LastBatchTime))
}

func (suite *MetricsTestSuite) TestHandlerExposesMetrics() {
	suite.metrics.ObserveFetch("yahoo", 200*time.Millisecond)
	suite.metrics.ObserveCompute(time.Millisecond)

	recorder := httptest.NewRecorder()
	suite.metrics.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	suite.Equal(http.StatusOK, recorder.Code)
	body, err := io.ReadAll(recorder.Body)
	suite.Require().NoError(err)
	suite.Contains(string(body), `analyzer_fetch_duration_seconds_count{provider="yahoo"} 1`)
	suite.Contains(string(body), "analyzer_compute_duration_seconds_count 1")
}

func (suite *MetricsTestSuite) TestRegistriesAreIndependent() {
	other := NewMetrics()
	suite.metrics.ObserveFailure("empty_series")

	suite.Equal(0.0, testutil.ToFloat64(other.SymbolsTotal.WithLabelValues(OutcomeFailure, "empty_series")))
}
