package indicator

import (
	"github.com/rxtech-lab/argo-analysis/internal/types"
	"github.com/rxtech-lab/argo-analysis/pkg/errors"
)

// Params holds the windows and spans of the default indicator set.
type Params struct {
	SMAWindows       []int
	VolatilityWindow int
	RSIPeriod        int
	MACDFast         int
	MACDSlow         int
	MACDSignal       int
	BollingerPeriod  int
	BollingerStdDev  float64
	DailyReturn      bool
}

// DefaultParams returns SMA 10/30/60, 20-bar volatility, RSI 14, MACD 12/26/9,
// Bollinger 20 with 2 deviations and daily returns.
func DefaultParams() Params {
	return Params{
		SMAWindows:       []int{10, 30, 60},
		VolatilityWindow: 20,
		RSIPeriod:        14,
		MACDFast:         12,
		MACDSlow:         26,
		MACDSignal:       9,
		BollingerPeriod:  20,
		BollingerStdDev:  2.0,
		DailyReturn:      true,
	}
}

// Engine computes every registered indicator over the close column of a series.
type Engine struct {
	registry IndicatorRegistry
}

// NewEngine builds an engine with the default indicator set configured from params.
func NewEngine(params Params) (*Engine, error) {
	registry := NewIndicatorRegistry()

	configured := make([]Indicator, 0, len(params.SMAWindows)+5)

	for _, window := range params.SMAWindows {
		ma := &MA{}
		if err := ma.Config(window); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "sma window %d", window)
		}

		configured = append(configured, ma)
	}

	volatility := &Volatility{}
	if err := volatility.Config(params.VolatilityWindow); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "volatility", err)
	}

	rsi := &RSI{}
	if err := rsi.Config(params.RSIPeriod); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "rsi", err)
	}

	macd := &MACD{}
	if err := macd.Config(params.MACDFast, params.MACDSlow, params.MACDSignal); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "macd", err)
	}

	bands := &BollingerBands{}
	if err := bands.Config(params.BollingerPeriod, params.BollingerStdDev); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "bollinger bands", err)
	}

	configured = append(configured, volatility, rsi, macd, bands)

	if params.DailyReturn {
		configured = append(configured, NewDailyReturn())
	}

	for _, ind := range configured {
		if err := registry.RegisterIndicator(ind); err != nil {
			return nil, err
		}
	}

	return NewEngineWithRegistry(registry), nil
}

// NewEngineWithRegistry builds an engine over an existing registry.
func NewEngineWithRegistry(registry IndicatorRegistry) *Engine {
	return &Engine{registry: registry}
}

// Indicators returns the registered indicator names in computation order.
func (e *Engine) Indicators() []types.IndicatorType {
	return e.registry.ListIndicators()
}

// Compute derives every column for series. The series is not modified.
// An empty series yields an empty table.
func (e *Engine) Compute(series types.PriceSeries) *Table {
	closes := series.Closes()
	table := newTable(series)

	for _, name := range e.registry.ListIndicators() {
		ind, err := e.registry.GetIndicator(name)
		if err != nil {
			continue
		}

		for _, column := range ind.Compute(closes) {
			table.addColumn(column)
		}
	}

	return table
}
