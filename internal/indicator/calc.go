package indicator

import (
	"math"

	"github.com/moznion/go-optional"
)

// SimpleMovingAverage returns the trailing arithmetic mean of values over period rows.
// Rows before index period-1 are undefined.
func SimpleMovingAverage(values []float64, period int) Series {
	out := NewUndefinedSeries(len(values))
	if period <= 0 {
		return out
	}

	for i := period - 1; i < len(values); i++ {
		out[i] = windowMean(values[i-period+1 : i+1])
	}

	return out
}

// RollingStdDev returns the trailing sample standard deviation (n-1 denominator).
// A window of one row has no sample deviation and stays undefined.
func RollingStdDev(values []float64, period int) Series {
	out := NewUndefinedSeries(len(values))
	if period <= 1 {
		return out
	}

	for i := period - 1; i < len(values); i++ {
		window := values[i-period+1 : i+1]
		mean := windowMean(window)

		sum := 0.0
		for _, v := range window {
			d := v - mean
			sum += d * d
		}

		out[i] = math.Sqrt(sum / float64(period-1))
	}

	return out
}

// ExponentialMovingAverage applies ema[0] = values[0],
// ema[t] = alpha*values[t] + (1-alpha)*ema[t-1] with alpha = 2/(span+1).
// There is no warm-up adjustment, so early rows lean on the first value.
func ExponentialMovingAverage(values []float64, span int) Series {
	out := NewUndefinedSeries(len(values))
	if len(values) == 0 || span <= 0 {
		return out
	}

	alpha := 2.0 / float64(span+1)

	out[0] = values[0]
	for t := 1; t < len(values); t++ {
		out[t] = alpha*values[t] + (1-alpha)*out[t-1]
	}

	return out
}

// RelativeStrengthIndex returns 100 - 100/(1+RS) where RS is the ratio of the
// simple trailing means of gains and losses over period close-to-close changes.
// Rows before index period are undefined. A zero average loss yields 100.
func RelativeStrengthIndex(values []float64, period int) Series {
	out := NewUndefinedSeries(len(values))
	if period <= 0 || len(values) <= period {
		return out
	}

	gains := make([]float64, len(values))
	losses := make([]float64, len(values))

	for i := 1; i < len(values); i++ {
		delta := values[i] - values[i-1]
		if delta > 0 {
			gains[i] = delta
		} else if delta < 0 {
			losses[i] = -delta
		}
	}

	for i := period; i < len(values); i++ {
		avgGain := windowMean(gains[i-period+1 : i+1])
		avgLoss := windowMean(losses[i-period+1 : i+1])
		out[i] = rsiFromAverages(avgGain, avgLoss)
	}

	return out
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss

	return 100 - 100/(1+rs)
}

// PercentChange returns (values[i]/values[i-1] - 1) * 100.
// The first row and rows whose previous value is zero are undefined.
func PercentChange(values []float64) Series {
	out := NewUndefinedSeries(len(values))

	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}

		out[i] = (values[i]/values[i-1] - 1) * 100
	}

	return out
}

// Normalize rebases values so the first row equals 100.
// Every row is undefined when the first value is zero.
func Normalize(values []float64) Series {
	out := NewUndefinedSeries(len(values))
	if len(values) == 0 || values[0] == 0 {
		return out
	}

	for i, v := range values {
		out[i] = v / values[0] * 100
	}

	return out
}

// CumulativeReturn returns (values[i]/values[0] - 1) * 100 for every row.
func CumulativeReturn(values []float64) Series {
	out := NewUndefinedSeries(len(values))
	if len(values) == 0 || values[0] == 0 {
		return out
	}

	for i, v := range values {
		out[i] = (v/values[0] - 1) * 100
	}

	return out
}

// PeriodReturn returns (last/first - 1) * 100 over the whole series.
func PeriodReturn(values []float64) optional.Option[float64] {
	if len(values) == 0 || values[0] == 0 {
		return optional.None[float64]()
	}

	return optional.Some((values[len(values)-1]/values[0] - 1) * 100)
}

func windowMean(window []float64) float64 {
	sum := 0.0
	for _, v := range window {
		sum += v
	}

	return sum / float64(len(window))
}
