package provider

import (
	"context"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/rxtech-lab/argo-analysis/internal/types"
	"github.com/rxtech-lab/argo-analysis/pkg/errors"
	"github.com/rxtech-lab/argo-analysis/pkg/marketdata"
)

// PolygonAggsIterator is the subset of the polygon aggregate iterator in use.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient is the subset of the polygon REST client in use.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

type polygonAPIWrapper struct {
	client *polygon.Client
}

func (w *polygonAPIWrapper) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return w.client.ListAggs(ctx, params, options...)
}

// PolygonClient fetches aggregate bars from Polygon.io.
type PolygonClient struct {
	apiClient PolygonAPIClient
	interval  marketdata.Interval
	now       func() time.Time
}

// NewPolygonClient creates a Polygon client authenticated with apiKey.
func NewPolygonClient(apiKey string, interval marketdata.Interval) (*PolygonClient, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "apiKey is required")
	}

	return NewPolygonClientWithAPI(&polygonAPIWrapper{client: polygon.New(apiKey)}, interval), nil
}

// NewPolygonClientWithAPI creates a Polygon client over an existing API client.
func NewPolygonClientWithAPI(apiClient PolygonAPIClient, interval marketdata.Interval) *PolygonClient {
	return &PolygonClient{
		apiClient: apiClient,
		interval:  interval,
		now:       time.Now,
	}
}

// Name implements marketdata.Source.
func (c *PolygonClient) Name() string {
	return string(ProviderPolygon)
}

// Fetch implements marketdata.Source.
func (c *PolygonClient) Fetch(ctx context.Context, symbol string, period marketdata.Period) (types.PriceSeries, error) {
	now := c.now()
	timespan, multiplier := c.interval.Polygon()

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: multiplier,
		Timespan:   timespan,
		From:       models.Millis(period.Start(now)),
		To:         models.Millis(now),
	}.WithLimit(50000)

	iter := c.apiClient.ListAggs(ctx, params)

	var bars []types.Bar

	for iter.Next() {
		agg := iter.Item()
		bars = append(bars, types.Bar{
			Time:   time.Time(agg.Timestamp).UTC(),
			Open:   agg.Open,
			High:   agg.High,
			Low:    agg.Low,
			Close:  agg.Close,
			Volume: agg.Volume,
		})
	}

	if iter.Err() != nil {
		return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, iter.Err(), "error iterating polygon aggregates for %s", symbol)
	}

	return marketdata.BuildSeries(symbol, bars)
}
