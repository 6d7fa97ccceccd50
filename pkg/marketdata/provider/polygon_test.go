package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-analysis/pkg/marketdata"
	"github.com/stretchr/testify/suite"

	codes "github.com/rxtech-lab/argo-analysis/pkg/errors"
)

// mockPolygonAPIClient implements PolygonAPIClient for testing.
type mockPolygonAPIClient struct {
	iterator   PolygonAggsIterator
	lastParams *models.ListAggsParams
}

func (m *mockPolygonAPIClient) ListAggs(_ context.Context, params *models.ListAggsParams, _ ...models.RequestOption) PolygonAggsIterator {
	m.lastParams = params

	return m.iterator
}

// mockPolygonIterator implements PolygonAggsIterator for testing.
type mockPolygonIterator struct {
	aggs  []models.Agg
	index int
	err   error
}

func (m *mockPolygonIterator) Next() bool {
	if m.index < len(m.aggs) {
		m.index++

		return true
	}

	return false
}

func (m *mockPolygonIterator) Item() models.Agg {
	if m.index > 0 && m.index <= len(m.aggs) {
		return m.aggs[m.index-1]
	}

	return models.Agg{}
}

func (m *mockPolygonIterator) Err() error {
	return m.err
}

type PolygonClientTestSuite struct {
	suite.Suite
	now time.Time
}

func TestPolygonClientSuite(t *testing.T) {
	suite.Run(t, new(PolygonClientTestSuite))
}

func (suite *PolygonClientTestSuite) SetupTest() {
	suite.now = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
}

func (suite *PolygonClientTestSuite) newClient(api PolygonAPIClient, interval marketdata.Interval) *PolygonClient {
	client := NewPolygonClientWithAPI(api, interval)
	client.now = func() time.Time { return suite.now }

	return client
}

func (suite *PolygonClientTestSuite) TestNewPolygonClient_ValidApiKey() {
	client, err := NewPolygonClient("test-api-key", marketdata.IntervalOneDay)
	suite.NoError(err)
	suite.NotNil(client.apiClient)
	suite.Equal("polygon", client.Name())
}

func (suite *PolygonClientTestSuite) TestNewPolygonClient_EmptyApiKey() {
	client, err := NewPolygonClient("", marketdata.IntervalOneDay)
	suite.Error(err)
	suite.Nil(client)
	suite.Equal(codes.ErrCodeMissingParameter, codes.GetCode(err))
}

func (suite *PolygonClientTestSuite) TestFetchBuildsParams() {
	api := &mockPolygonAPIClient{iterator: &mockPolygonIterator{}}
	client := suite.newClient(api, marketdata.IntervalFiveMinutes)

	series, err := client.Fetch(context.Background(), "AAPL", marketdata.PeriodThreeMonths)
	suite.NoError(err)
	suite.True(series.IsEmpty())

	suite.Require().NotNil(api.lastParams)
	suite.Equal("AAPL", api.lastParams.Ticker)
	suite.Equal(5, api.lastParams.Multiplier)
	suite.Equal(models.Minute, api.lastParams.Timespan)
	suite.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), time.Time(api.lastParams.From).UTC())
	suite.Equal(suite.now, time.Time(api.lastParams.To).UTC())
}

func (suite *PolygonClientTestSuite) TestFetchConvertsAggregates() {
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	api := &mockPolygonAPIClient{iterator: &mockPolygonIterator{aggs: []models.Agg{
		{Timestamp: models.Millis(day.AddDate(0, 0, 1)), Open: 11, High: 12, Low: 10, Close: 11.5, Volume: 200},
		{Timestamp: models.Millis(day), Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 100},
	}}}

	series, err := suite.newClient(api, marketdata.IntervalOneDay).Fetch(context.Background(), "AAPL", marketdata.PeriodOneMonth)
	suite.Require().NoError(err)
	suite.Equal(2, series.Len())
	suite.Equal([]float64{10.5, 11.5}, series.Closes())
	suite.Equal(day, series.Bar(0).Time)
	suite.Equal(100.0, series.Bar(0).Volume)
}

func (suite *PolygonClientTestSuite) TestFetchIteratorError() {
	api := &mockPolygonAPIClient{iterator: &mockPolygonIterator{err: errors.New("rate limited")}}

	_, err := suite.newClient(api, marketdata.IntervalOneDay).Fetch(context.Background(), "AAPL", marketdata.PeriodOneMonth)
	suite.Require().Error(err)
	suite.Equal(codes.ErrCodeMarketDataFetchFailed, codes.GetCode(err))
	suite.Contains(err.Error(), "rate limited")
}
