package indicator

import (
	"github.com/rxtech-lab/argo-analysis/internal/types"
	"github.com/rxtech-lab/argo-analysis/pkg/errors"
)

// DailyReturn is the bar-over-bar percent change of closes.
type DailyReturn struct{}

// NewDailyReturn creates a daily return indicator.
func NewDailyReturn() Indicator {
	return &DailyReturn{}
}

func (d *DailyReturn) Name() types.IndicatorType {
	return types.IndicatorTypeDailyReturn
}

// Config takes no parameters.
func (d *DailyReturn) Config(params ...any) error {
	if len(params) != 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "Config expects no parameters")
	}

	return nil
}

func (d *DailyReturn) Compute(closes []float64) []Column {
	return []Column{{
		Name:   d.Name(),
		Values: PercentChange(closes),
		Warmup: 1,
	}}
}
