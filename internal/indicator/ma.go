package indicator

import (
	"github.com/rxtech-lab/argo-analysis/internal/types"
	"github.com/rxtech-lab/argo-analysis/pkg/errors"
)

// MA indicator implements Simple Moving Average calculation.
type MA struct {
	period int
}

// NewMA creates a new MA indicator with the given window.
func NewMA(period int) Indicator {
	return &MA{
		period: period,
	}
}

// Name returns the column name, sma_<window>.
func (m *MA) Name() types.IndicatorType {
	return types.SMAType(m.period)
}

// Expected parameters: period (int).
func (m *MA) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	period, err := positivePeriod("period", params[0], 1)
	if err != nil {
		return err
	}

	m.period = period

	return nil
}

// Compute returns the trailing mean of the last period closes.
func (m *MA) Compute(closes []float64) []Column {
	return []Column{{
		Name:   m.Name(),
		Values: SimpleMovingAverage(closes, m.period),
		Warmup: m.period - 1,
	}}
}
