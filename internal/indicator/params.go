package indicator

import (
	"github.com/rxtech-lab/argo-analysis/pkg/errors"
)

// intParam accepts int or whole float64 values; config files decode numbers as either.
func intParam(name string, value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case float64:
		if v != float64(int(v)) {
			return 0, errors.Newf(errors.ErrCodeInvalidType, "invalid value for %s parameter, expected a whole number, got %v", name, v)
		}

		return int(v), nil
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidType, "invalid type for %s parameter, expected int or float", name)
	}
}

func positivePeriod(name string, value any, minimum int) (int, error) {
	period, err := intParam(name, value)
	if err != nil {
		return 0, err
	}

	if period < minimum {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "%s must be at least %d, got %d", name, minimum, period)
	}

	return period, nil
}
