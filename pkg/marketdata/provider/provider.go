// Package provider holds the market data Sources: the Yahoo chart API,
// Polygon aggregates, Binance klines and local parquet files.
package provider

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-analysis/internal/logger"
	"github.com/rxtech-lab/argo-analysis/pkg/errors"
	"github.com/rxtech-lab/argo-analysis/pkg/marketdata"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderYahoo   ProviderType = "yahoo"
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
	ProviderParquet ProviderType = "parquet"
)

// Config selects and configures a provider.
type Config struct {
	Type          ProviderType        `validate:"required,oneof=yahoo polygon binance parquet"`
	Interval      marketdata.Interval `validate:"omitempty,oneof=1m 5m 15m 30m 1h 1d 1w"`
	PolygonAPIKey string              `validate:"required_if=Type polygon"`
	DataPath      string              `validate:"required_if=Type parquet"`
	YahooBaseURL  string              `validate:"omitempty,url"`
	Timeout       time.Duration       `validate:"gte=0"`
}

// NewSource creates the Source described by config.
func NewSource(config Config, log *logger.Logger) (marketdata.Source, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidProvider, "invalid provider configuration", err)
	}

	interval, err := marketdata.ParseInterval(string(config.Interval))
	if err != nil {
		return nil, err
	}

	switch config.Type {
	case ProviderYahoo:
		return NewYahooClient(config.YahooBaseURL, interval, config.Timeout), nil
	case ProviderPolygon:
		client, err := NewPolygonClient(config.PolygonAPIKey, interval)
		if err != nil {
			return nil, err
		}

		return client, nil
	case ProviderBinance:
		client, err := NewBinanceClient(interval)
		if err != nil {
			return nil, err
		}

		return client, nil
	case ProviderParquet:
		source, err := NewParquetSource(config.DataPath, log)
		if err != nil {
			return nil, err
		}

		return source, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", config.Type)
	}
}
