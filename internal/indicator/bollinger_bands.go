package indicator

import (
	"github.com/rxtech-lab/argo-analysis/internal/types"
	"github.com/rxtech-lab/argo-analysis/pkg/errors"
)

// BollingerBands implements the Indicator interface for Bollinger Bands.
type BollingerBands struct {
	period int     // Number of periods for moving average
	stdDev float64 // Number of standard deviations
}

// NewBollingerBands creates a new Bollinger Bands indicator.
func NewBollingerBands(period int, stdDev float64) Indicator {
	return &BollingerBands{
		period: period,
		stdDev: stdDev,
	}
}

// Name returns the name of the indicator.
func (bb *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBBMiddle
}

// Config configures the Bollinger Bands indicator. Expected parameters: period (int), stdDev (float64).
func (bb *BollingerBands) Config(params ...any) error {
	if len(params) != 2 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 2 parameters: period (int), stdDev (float64)")
	}

	period, err := positivePeriod("period", params[0], 2)
	if err != nil {
		return err
	}

	var stdDev float64

	switch v := params[1].(type) {
	case float64:
		stdDev = v
	case int:
		stdDev = float64(v)
	default:
		return errors.New(errors.ErrCodeInvalidType, "invalid type for stdDev parameter, expected float64")
	}

	if stdDev <= 0 {
		return errors.Newf(errors.ErrCodeInvalidMultiplier, "stdDev must be a positive number, got %f", stdDev)
	}

	bb.period = period
	bb.stdDev = stdDev

	return nil
}

// Compute returns the middle, upper and lower bands. The middle band is the
// trailing SMA and the outer bands sit stdDev sample deviations away.
func (bb *BollingerBands) Compute(closes []float64) []Column {
	middle := SimpleMovingAverage(closes, bb.period)
	deviation := RollingStdDev(closes, bb.period)

	upper := NewUndefinedSeries(len(closes))
	lower := NewUndefinedSeries(len(closes))

	for i := range closes {
		if !middle.IsDefined(i) || !deviation.IsDefined(i) {
			continue
		}

		upper[i] = middle[i] + bb.stdDev*deviation[i]
		lower[i] = middle[i] - bb.stdDev*deviation[i]
	}

	warmup := bb.period - 1

	return []Column{
		{Name: types.IndicatorTypeBBMiddle, Values: middle, Warmup: warmup},
		{Name: types.IndicatorTypeBBUpper, Values: upper, Warmup: warmup},
		{Name: types.IndicatorTypeBBLower, Values: lower, Warmup: warmup},
	}
}
