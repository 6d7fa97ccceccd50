package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// TrendAssessment is the snapshot of the last bar of an indicator table.
// Scalars that could not be computed are None.
type TrendAssessment struct {
	Symbol   string    `json:"symbol"`
	Time     time.Time `json:"time"`
	BarCount int       `json:"barCount"`

	LatestClose   optional.Option[float64] `json:"latestClose"`
	Change        optional.Option[float64] `json:"change"`
	ChangePercent optional.Option[float64] `json:"changePercent"`

	SMA10      optional.Option[float64] `json:"sma10"`
	SMA30      optional.Option[float64] `json:"sma30"`
	SMA60      optional.Option[float64] `json:"sma60"`
	Volatility optional.Option[float64] `json:"volatility"`
	RSI        optional.Option[float64] `json:"rsi"`
	MACD       optional.Option[float64] `json:"macd"`
	Signal     optional.Option[float64] `json:"signal"`
	Histogram  optional.Option[float64] `json:"histogram"`

	Trend TrendLabel `json:"trend"`
	// RSISignal is RSISignalNeutral with RSIDefaulted set when RSI is undefined.
	RSISignal    RSISignal  `json:"rsiSignal"`
	RSIDefaulted bool       `json:"rsiDefaulted"`
	MACDSignal   MACDSignal `json:"macdSignal"`

	PeriodReturn  optional.Option[float64] `json:"periodReturn"`
	PeriodHigh    optional.Option[float64] `json:"periodHigh"`
	PeriodLow     optional.Option[float64] `json:"periodLow"`
	AverageVolume optional.Option[float64] `json:"averageVolume"`
}

// HasData reports whether the assessment was built from at least one bar.
func (a TrendAssessment) HasData() bool {
	return a.BarCount > 0
}
