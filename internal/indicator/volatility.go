package indicator

import (
	"github.com/rxtech-lab/argo-analysis/internal/types"
	"github.com/rxtech-lab/argo-analysis/pkg/errors"
)

// Volatility is the rolling sample standard deviation of closes.
type Volatility struct {
	period int
}

// NewVolatility creates a volatility indicator with the given window.
func NewVolatility(period int) Indicator {
	return &Volatility{period: period}
}

func (v *Volatility) Name() types.IndicatorType {
	return types.IndicatorTypeVolatility
}

// Expected parameters: period (int, at least 2).
func (v *Volatility) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	period, err := positivePeriod("period", params[0], 2)
	if err != nil {
		return err
	}

	v.period = period

	return nil
}

func (v *Volatility) Compute(closes []float64) []Column {
	return []Column{{
		Name:   v.Name(),
		Values: RollingStdDev(closes, v.period),
		Warmup: v.period - 1,
	}}
}
