package types

import (
	"math"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-analysis/pkg/errors"
)

// PriceSeries is an ordered, time-indexed run of bars for one symbol.
// Bars are strictly increasing in time. A PriceSeries is never mutated after
// construction; every accessor hands out copies.
type PriceSeries struct {
	Symbol string
	bars   []Bar
}

// NewPriceSeries validates and copies bars into a new series.
// Non-increasing or duplicate timestamps and non-finite prices are structural
// faults and return ErrCodeMalformedSeries. OHLC ordering violations are not
// faults; see Advisories.
func NewPriceSeries(symbol string, bars []Bar) (PriceSeries, error) {
	copied := make([]Bar, len(bars))
	copy(copied, bars)

	for i, bar := range copied {
		if !isFinite(bar.Open) || !isFinite(bar.High) || !isFinite(bar.Low) || !isFinite(bar.Close) || !isFinite(bar.Volume) {
			return PriceSeries{}, errors.Newf(errors.ErrCodeMalformedSeries, "non-finite value in bar %d of %s", i, symbol)
		}

		if i > 0 && !bar.Time.After(copied[i-1].Time) {
			return PriceSeries{}, errors.Newf(errors.ErrCodeMalformedSeries,
				"bar %d of %s at %s is not after %s", i, symbol,
				bar.Time.Format(time.RFC3339), copied[i-1].Time.Format(time.RFC3339))
		}
	}

	return PriceSeries{Symbol: symbol, bars: copied}, nil
}

// EmptySeries returns a series with no bars.
func EmptySeries(symbol string) PriceSeries {
	return PriceSeries{Symbol: symbol, bars: nil}
}

// Len returns the number of bars.
func (p PriceSeries) Len() int {
	return len(p.bars)
}

// IsEmpty reports whether the series has no bars.
func (p PriceSeries) IsEmpty() bool {
	return len(p.bars) == 0
}

// Bars returns a copy of the bars.
func (p PriceSeries) Bars() []Bar {
	out := make([]Bar, len(p.bars))
	copy(out, p.bars)

	return out
}

// Bar returns the i-th bar.
func (p PriceSeries) Bar(i int) Bar {
	return p.bars[i]
}

// Closes returns the close column.
func (p PriceSeries) Closes() []float64 {
	out := make([]float64, len(p.bars))
	for i, b := range p.bars {
		out[i] = b.Close
	}

	return out
}

// Times returns the time index.
func (p PriceSeries) Times() []time.Time {
	out := make([]time.Time, len(p.bars))
	for i, b := range p.bars {
		out[i] = b.Time
	}

	return out
}

// First returns the first bar, or None when empty.
func (p PriceSeries) First() optional.Option[Bar] {
	if len(p.bars) == 0 {
		return optional.None[Bar]()
	}

	return optional.Some(p.bars[0])
}

// Last returns the last bar, or None when empty.
func (p PriceSeries) Last() optional.Option[Bar] {
	if len(p.bars) == 0 {
		return optional.None[Bar]()
	}

	return optional.Some(p.bars[len(p.bars)-1])
}

// Highest returns the maximum High over the whole series.
func (p PriceSeries) Highest() optional.Option[float64] {
	if len(p.bars) == 0 {
		return optional.None[float64]()
	}

	high := p.bars[0].High
	for _, b := range p.bars[1:] {
		high = math.Max(high, b.High)
	}

	return optional.Some(high)
}

// Lowest returns the minimum Low over the whole series.
func (p PriceSeries) Lowest() optional.Option[float64] {
	if len(p.bars) == 0 {
		return optional.None[float64]()
	}

	low := p.bars[0].Low
	for _, b := range p.bars[1:] {
		low = math.Min(low, b.Low)
	}

	return optional.Some(low)
}

// AverageVolume returns the arithmetic mean of Volume.
func (p PriceSeries) AverageVolume() optional.Option[float64] {
	if len(p.bars) == 0 {
		return optional.None[float64]()
	}

	sum := 0.0
	for _, b := range p.bars {
		sum += b.Volume
	}

	return optional.Some(sum / float64(len(p.bars)))
}

// Advisories collects the OHLC invariant notes of every bar.
func (p PriceSeries) Advisories() []string {
	var notes []string
	for _, b := range p.bars {
		notes = append(notes, b.Advisory()...)
	}

	return notes
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
