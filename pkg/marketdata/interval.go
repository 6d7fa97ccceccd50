package marketdata

import (
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-analysis/pkg/errors"
)

// Interval is the bar size requested from a provider.
type Interval string

const (
	IntervalOneMinute      Interval = "1m"
	IntervalFiveMinutes    Interval = "5m"
	IntervalFifteenMinutes Interval = "15m"
	IntervalThirtyMinutes  Interval = "30m"
	IntervalOneHour        Interval = "1h"
	IntervalOneDay         Interval = "1d"
	IntervalOneWeek        Interval = "1w"
)

// DefaultInterval is daily bars.
const DefaultInterval = IntervalOneDay

// ParseInterval validates s; an empty string selects DefaultInterval.
func ParseInterval(s string) (Interval, error) {
	switch Interval(s) {
	case "":
		return DefaultInterval, nil
	case IntervalOneMinute, IntervalFiveMinutes, IntervalFifteenMinutes, IntervalThirtyMinutes,
		IntervalOneHour, IntervalOneDay, IntervalOneWeek:
		return Interval(s), nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported interval %q", s)
	}
}

// Polygon returns the aggregate timespan and multiplier of the interval.
func (i Interval) Polygon() (models.Timespan, int) {
	switch i {
	case IntervalOneMinute:
		return models.Minute, 1
	case IntervalFiveMinutes:
		return models.Minute, 5
	case IntervalFifteenMinutes:
		return models.Minute, 15
	case IntervalThirtyMinutes:
		return models.Minute, 30
	case IntervalOneHour:
		return models.Hour, 1
	case IntervalOneWeek:
		return models.Week, 1
	default:
		return models.Day, 1
	}
}

// Binance returns the kline interval string.
// Ref: https://binance-docs.github.io/apidocs/spot/en/#kline-candlestick-data
func (i Interval) Binance() string {
	return string(i)
}

// Yahoo returns the chart API interval string.
func (i Interval) Yahoo() string {
	switch i {
	case IntervalOneHour:
		return "60m"
	case IntervalOneWeek:
		return "1wk"
	default:
		return string(i)
	}
}
