// Package marketdata defines where price series come from: the Source
// contract, the supported periods and intervals, and decorators that cache or
// throttle any source.
package marketdata

import (
	"context"
	"sort"

	"github.com/rxtech-lab/argo-analysis/internal/types"
)

// Source fetches the bars of one symbol over a period.
// An empty series is a valid result and not an error.
type Source interface {
	// Name returns the provider name
	Name() string
	// Fetch returns the bars of symbol over period, oldest first
	Fetch(ctx context.Context, symbol string, period Period) (types.PriceSeries, error)
}

// BuildSeries sorts bars by time, drops repeated timestamps keeping the last
// one, and builds a validated series. Providers use it to normalize responses.
func BuildSeries(symbol string, bars []types.Bar) (types.PriceSeries, error) {
	if len(bars) == 0 {
		return types.EmptySeries(symbol), nil
	}

	sorted := make([]types.Bar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	deduped := sorted[:0]
	for _, bar := range sorted {
		if n := len(deduped); n > 0 && deduped[n-1].Time.Equal(bar.Time) {
			deduped[n-1] = bar

			continue
		}

		deduped = append(deduped, bar)
	}

	return types.NewPriceSeries(symbol, deduped)
}
