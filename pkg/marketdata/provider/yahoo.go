package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-analysis/internal/types"
	"github.com/rxtech-lab/argo-analysis/pkg/errors"
	"github.com/rxtech-lab/argo-analysis/pkg/marketdata"
)

// DefaultYahooBaseURL is the public chart API host.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooClient fetches bars from the Yahoo Finance chart API.
type YahooClient struct {
	httpClient *http.Client
	baseURL    string
	interval   marketdata.Interval
	// symbolMap maps common index aliases to Yahoo tickers
	symbolMap map[string]string
}

// NewYahooClient creates a Yahoo client. An empty baseURL selects the public
// host and a zero timeout selects 30 seconds.
func NewYahooClient(baseURL string, interval marketdata.Interval, timeout time.Duration) *YahooClient {
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}

	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &YahooClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		interval:   interval,
		symbolMap: map[string]string{
			"SPX":    "^GSPC",
			"SPX500": "^GSPC",
			"SP500":  "^GSPC",
		},
	}
}

// Name implements marketdata.Source.
func (c *YahooClient) Name() string {
	return string(ProviderYahoo)
}

// yahooChart is the response structure of the chart API. Quote values are
// null on bars without trades.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch implements marketdata.Source. Unknown symbols yield an empty series.
func (c *YahooClient) Fetch(ctx context.Context, symbol string, period marketdata.Period) (types.PriceSeries, error) {
	ticker := symbol
	if mapped, ok := c.symbolMap[symbol]; ok {
		ticker = mapped
	}

	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		c.baseURL, url.PathEscape(ticker), c.interval.Yahoo(), period)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return types.PriceSeries{}, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "failed to build yahoo request", err)
	}

	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "yahoo fetch %s", symbol)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "yahoo read body %s", symbol)
	}

	if resp.StatusCode == http.StatusNotFound {
		return types.EmptySeries(symbol), nil
	}

	if resp.StatusCode != http.StatusOK {
		return types.PriceSeries{}, errors.Newf(errors.ErrCodeMarketDataFetchFailed, "yahoo: status %d for %s", resp.StatusCode, symbol)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return types.PriceSeries{}, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "yahoo decode %s", symbol)
	}

	if chart.Chart.Error != nil {
		return types.PriceSeries{}, errors.Newf(errors.ErrCodeMarketDataFetchFailed, "yahoo api error: %s", chart.Chart.Error.Description)
	}

	return parseYahooChart(symbol, chart)
}

func parseYahooChart(symbol string, chart yahooChart) (types.PriceSeries, error) {
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return types.EmptySeries(symbol), nil
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]types.Bar, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		o, h, l, cl := at(quote.Open, i), at(quote.High, i), at(quote.Low, i), at(quote.Close, i)
		if o == nil || h == nil || l == nil || cl == nil {
			// null bars (holidays, halted sessions)
			continue
		}

		volume := 0.0
		if v := at(quote.Volume, i); v != nil {
			volume = *v
		}

		bars = append(bars, types.Bar{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   *o,
			High:   *h,
			Low:    *l,
			Close:  *cl,
			Volume: volume,
		})
	}

	series, err := marketdata.BuildSeries(symbol, bars)
	if err != nil {
		return types.PriceSeries{}, err
	}

	return series, nil
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}

	return values[i]
}
