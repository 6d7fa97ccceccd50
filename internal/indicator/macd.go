package indicator

import (
	"github.com/rxtech-lab/argo-analysis/internal/types"
	"github.com/rxtech-lab/argo-analysis/pkg/errors"
)

// MACD is the difference of a fast and a slow EMA of closes, with an EMA
// signal line and their histogram.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD indicator.
func NewMACD(fast, slow, signal int) Indicator {
	return &MACD{
		fastPeriod:   fast,
		slowPeriod:   slow,
		signalPeriod: signal,
	}
}

// Name returns the name of the indicator.
func (m *MACD) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

// Config configures the MACD indicator.
// Expected parameters: fastPeriod (int), slowPeriod (int), signalPeriod (int).
func (m *MACD) Config(params ...any) error {
	if len(params) != 3 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 3 parameters: fastPeriod (int), slowPeriod (int), signalPeriod (int)")
	}

	fast, err := positivePeriod("fastPeriod", params[0], 1)
	if err != nil {
		return err
	}

	slow, err := positivePeriod("slowPeriod", params[1], 1)
	if err != nil {
		return err
	}

	signal, err := positivePeriod("signalPeriod", params[2], 1)
	if err != nil {
		return err
	}

	if fast >= slow {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "fastPeriod (%d) must be less than slowPeriod (%d)", fast, slow)
	}

	m.fastPeriod = fast
	m.slowPeriod = slow
	m.signalPeriod = signal

	return nil
}

// Compute returns the macd, macd_signal and macd_histogram columns.
// The EMAs are seeded from the first close, so every row is defined.
func (m *MACD) Compute(closes []float64) []Column {
	fast := ExponentialMovingAverage(closes, m.fastPeriod)
	slow := ExponentialMovingAverage(closes, m.slowPeriod)

	line := NewUndefinedSeries(len(closes))
	for i := range closes {
		line[i] = fast[i] - slow[i]
	}

	signal := ExponentialMovingAverage(line, m.signalPeriod)

	histogram := NewUndefinedSeries(len(closes))
	for i := range closes {
		histogram[i] = line[i] - signal[i]
	}

	return []Column{
		{Name: types.IndicatorTypeMACD, Values: line},
		{Name: types.IndicatorTypeMACDSignal, Values: signal},
		{Name: types.IndicatorTypeMACDHistogram, Values: histogram},
	}
}
