package indicator

import (
	"github.com/rxtech-lab/argo-analysis/internal/types"
	"github.com/rxtech-lab/argo-analysis/pkg/errors"
)

// RSI indicator implements the Relative Strength Index using simple trailing
// means of gains and losses.
type RSI struct {
	period int
}

// NewRSI creates a new RSI indicator with the given lookback.
func NewRSI(period int) Indicator {
	return &RSI{period: period}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Config configures the RSI indicator with the given parameters.
// Expected parameters: period (int).
func (r *RSI) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: period (int)")
	}

	period, err := positivePeriod("period", params[0], 1)
	if err != nil {
		return err
	}

	r.period = period

	return nil
}

// Compute returns RSI values in [0, 100]. The first period rows are undefined
// because period price changes need period+1 closes.
func (r *RSI) Compute(closes []float64) []Column {
	return []Column{{
		Name:   r.Name(),
		Values: RelativeStrengthIndex(closes, r.period),
		Warmup: r.period,
	}}
}
