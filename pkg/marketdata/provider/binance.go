package provider

import (
	"context"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/argo-analysis/internal/types"
	"github.com/rxtech-lab/argo-analysis/pkg/errors"
	"github.com/rxtech-lab/argo-analysis/pkg/marketdata"
)

// binancePageSize is the default number of klines per request.
const binancePageSize = 500

// BinanceKlinesService is the subset of the binance klines service in use.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	StartTime(startTime int64) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// BinanceAPIClient is the subset of the binance client in use.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
}

type binanceAPIWrapper struct {
	client *binance.Client
}

func (w *binanceAPIWrapper) NewKlinesService() BinanceKlinesService {
	return &binanceKlinesWrapper{service: w.client.NewKlinesService()}
}

type binanceKlinesWrapper struct {
	service *binance.KlinesService
}

func (w *binanceKlinesWrapper) Symbol(symbol string) BinanceKlinesService {
	w.service.Symbol(symbol)

	return w
}

func (w *binanceKlinesWrapper) Interval(interval string) BinanceKlinesService {
	w.service.Interval(interval)

	return w
}

func (w *binanceKlinesWrapper) StartTime(startTime int64) BinanceKlinesService {
	w.service.StartTime(startTime)

	return w
}

func (w *binanceKlinesWrapper) EndTime(endTime int64) BinanceKlinesService {
	w.service.EndTime(endTime)

	return w
}

func (w *binanceKlinesWrapper) Do(ctx context.Context) ([]*binance.Kline, error) {
	return w.service.Do(ctx)
}

// BinanceClient fetches klines from the Binance public market data API.
type BinanceClient struct {
	apiClient BinanceAPIClient
	interval  marketdata.Interval
	now       func() time.Time
}

// NewBinanceClient creates a Binance client. Public market data needs no key.
func NewBinanceClient(interval marketdata.Interval) (*BinanceClient, error) {
	return NewBinanceClientWithAPI(&binanceAPIWrapper{client: binance.NewClient("", "")}, interval), nil
}

// NewBinanceClientWithAPI creates a Binance client over an existing API client.
func NewBinanceClientWithAPI(apiClient BinanceAPIClient, interval marketdata.Interval) *BinanceClient {
	return &BinanceClient{
		apiClient: apiClient,
		interval:  interval,
		now:       time.Now,
	}
}

// Name implements marketdata.Source.
func (c *BinanceClient) Name() string {
	return string(ProviderBinance)
}

// Fetch implements marketdata.Source, paging through klines until the end of the period.
func (c *BinanceClient) Fetch(ctx context.Context, symbol string, period marketdata.Period) (types.PriceSeries, error) {
	now := c.now()
	endTimeMillis := now.UnixMilli()
	currentStartTime := period.Start(now).UnixMilli()

	var bars []types.Bar

	for {
		klines, err := c.apiClient.NewKlinesService().
			Symbol(symbol).
			Interval(c.interval.Binance()).
			StartTime(currentStartTime).
			EndTime(endTimeMillis).
			Do(ctx)
		if err != nil {
			return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch klines from Binance for %s", symbol)
		}

		page, err := convertKlines(klines)
		if err != nil {
			return types.PriceSeries{}, err
		}

		bars = append(bars, page...)

		// Break conditions: no data or less than a full page (last page)
		if len(klines) < binancePageSize {
			break
		}

		// Use the close time of the last kline + 1ms to avoid duplicates
		currentStartTime = klines[len(klines)-1].CloseTime + 1
		if currentStartTime >= endTimeMillis {
			break
		}
	}

	return marketdata.BuildSeries(symbol, bars)
}

// convertKlines converts Binance kline strings to bars.
func convertKlines(klines []*binance.Kline) ([]types.Bar, error) {
	bars := make([]types.Bar, 0, len(klines))

	for _, k := range klines {
		values := make([]float64, 5)

		for i, raw := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid kline value %q", raw)
			}

			values[i] = v
		}

		bars = append(bars, types.Bar{
			// OpenTime is the timestamp of the bar
			Time:   time.UnixMilli(k.OpenTime).UTC(),
			Open:   values[0],
			High:   values[1],
			Low:    values[2],
			Close:  values[3],
			Volume: values[4],
		})
	}

	return bars, nil
}
