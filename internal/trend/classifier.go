package trend

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-analysis/internal/indicator"
	"github.com/rxtech-lab/argo-analysis/internal/types"
	"github.com/rxtech-lab/argo-analysis/pkg/errors"
)

// Thresholds are the RSI bounds of the momentum reading.
type Thresholds struct {
	Overbought float64 `yaml:"overbought" json:"overbought" validate:"gte=0,lte=100"`
	Oversold   float64 `yaml:"oversold" json:"oversold" validate:"gte=0,lte=100"`
}

// DefaultThresholds returns 70/30.
func DefaultThresholds() Thresholds {
	return Thresholds{Overbought: 70, Oversold: 30}
}

// Validate checks that both bounds lie in [0, 100] and oversold < overbought.
func (t Thresholds) Validate() error {
	if t.Overbought < 0 || t.Overbought > 100 || t.Oversold < 0 || t.Oversold > 100 {
		return errors.Newf(errors.ErrCodeInvalidThreshold, "RSI thresholds must lie in [0, 100], got %v/%v", t.Oversold, t.Overbought)
	}

	if t.Oversold >= t.Overbought {
		return errors.Newf(errors.ErrCodeInvalidThreshold, "oversold threshold (%v) must be below overbought threshold (%v)", t.Oversold, t.Overbought)
	}

	return nil
}

// Classifier turns table rows into trend assessments. It holds no mutable
// state and is safe for concurrent use.
type Classifier struct {
	thresholds Thresholds
	rules      []Rule
}

// NewClassifier creates a classifier over the default decision table.
func NewClassifier(thresholds Thresholds) (*Classifier, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}

	return &Classifier{
		thresholds: thresholds,
		rules:      DefaultRules(),
	}, nil
}

// Thresholds returns the configured RSI bounds.
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

// ClassifyTrend labels the close against SMA_10 and SMA_30.
// Any undefined input yields TrendInsufficientData.
func (c *Classifier) ClassifyTrend(closePrice, sma10, sma30 optional.Option[float64]) types.TrendLabel {
	if closePrice.IsNone() || sma10.IsNone() || sma30.IsNone() {
		return types.TrendInsufficientData
	}

	return Evaluate(c.rules, Inputs{
		Close: closePrice.Unwrap(),
		SMA10: sma10.Unwrap(),
		SMA30: sma30.Unwrap(),
	})
}

// ClassifyRSI returns the momentum reading. An undefined RSI reads neutral and
// the second return value reports that the default was used.
func (c *Classifier) ClassifyRSI(rsi optional.Option[float64]) (types.RSISignal, bool) {
	if rsi.IsNone() {
		return types.RSISignalNeutral, true
	}

	value := rsi.Unwrap()

	switch {
	case value > c.thresholds.Overbought:
		return types.RSISignalOverbought, false
	case value < c.thresholds.Oversold:
		return types.RSISignalOversold, false
	default:
		return types.RSISignalNeutral, false
	}
}

// ClassifyMACD compares MACD against its signal line. Only a strictly greater
// MACD is bullish; a tie is bearish.
func (c *Classifier) ClassifyMACD(macd, signal optional.Option[float64]) types.MACDSignal {
	if macd.IsNone() || signal.IsNone() {
		return types.MACDSignalInsufficientData
	}

	if macd.Unwrap() > signal.Unwrap() {
		return types.MACDSignalBullish
	}

	return types.MACDSignalBearish
}

// Assess builds the assessment of the last row of table.
// An empty table yields only None scalars and the insufficient-data labels.
func (c *Classifier) Assess(table *indicator.Table) types.TrendAssessment {
	series := table.Series()

	assessment := types.TrendAssessment{
		Symbol:   table.Symbol(),
		BarCount: table.Len(),
	}

	latestClose := optional.None[float64]()
	if last, err := series.Last().Take(); err == nil {
		assessment.Time = last.Time
		latestClose = optional.Some(last.Close)
	}

	assessment.LatestClose = latestClose
	assessment.Change, assessment.ChangePercent = previousChange(series)

	assessment.SMA10 = table.Latest(types.IndicatorTypeSMA10)
	assessment.SMA30 = table.Latest(types.IndicatorTypeSMA30)
	assessment.SMA60 = table.Latest(types.IndicatorTypeSMA60)
	assessment.Volatility = table.Latest(types.IndicatorTypeVolatility)
	assessment.RSI = table.Latest(types.IndicatorTypeRSI)
	assessment.MACD = table.Latest(types.IndicatorTypeMACD)
	assessment.Signal = table.Latest(types.IndicatorTypeMACDSignal)
	assessment.Histogram = table.Latest(types.IndicatorTypeMACDHistogram)

	assessment.Trend = c.ClassifyTrend(latestClose, assessment.SMA10, assessment.SMA30)
	assessment.RSISignal, assessment.RSIDefaulted = c.ClassifyRSI(assessment.RSI)
	assessment.MACDSignal = c.ClassifyMACD(assessment.MACD, assessment.Signal)

	assessment.PeriodReturn = indicator.PeriodReturn(table.Closes())
	assessment.PeriodHigh = series.Highest()
	assessment.PeriodLow = series.Lowest()
	assessment.AverageVolume = series.AverageVolume()

	return assessment
}

// previousChange returns the last close minus the previous close, and the same
// move in percent. Both are None with fewer than two bars; the percent is None
// when the previous close is zero.
func previousChange(series types.PriceSeries) (optional.Option[float64], optional.Option[float64]) {
	n := series.Len()
	if n < 2 {
		return optional.None[float64](), optional.None[float64]()
	}

	prev := series.Bar(n - 2).Close
	last := series.Bar(n - 1).Close
	change := last - prev

	if prev == 0 {
		return optional.Some(change), optional.None[float64]()
	}

	return optional.Some(change), optional.Some(change / prev * 100)
}
