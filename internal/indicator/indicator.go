// Package indicator computes derived price series (moving averages, volatility,
// RSI, MACD, Bollinger Bands and returns) from a PriceSeries.
//
// Every calculation is a pure function of the close column. Rows that do not
// have enough trailing history hold an undefined marker rather than a guess.
package indicator

import (
	"github.com/rxtech-lab/argo-analysis/internal/types"
)

// Column is one named derived series produced by an indicator.
type Column struct {
	Name   types.IndicatorType
	Values Series
	// Warmup is the number of leading rows that are undefined by construction.
	Warmup int
}

// Indicator defines methods that any technical indicator must implement.
type Indicator interface {
	// Name returns the registry key of the indicator
	Name() types.IndicatorType
	// Config configures the indicator parameters
	Config(params ...any) error
	// Compute derives the indicator columns from the close series
	Compute(closes []float64) []Column
}
