package marketdata

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-analysis/internal/types"
	"golang.org/x/time/rate"
)

// DefaultThrottleInterval is the minimum spacing between upstream requests.
const DefaultThrottleInterval = 3 * time.Second

// ThrottledSource spaces calls to the underlying Source at least minInterval
// apart, across all goroutines sharing it.
type ThrottledSource struct {
	underlying Source
	limiter    *rate.Limiter
}

// NewThrottledSource wraps underlying. A non-positive interval disables throttling.
func NewThrottledSource(underlying Source, minInterval time.Duration) *ThrottledSource {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}

	return &ThrottledSource{
		underlying: underlying,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// Name implements Source.
func (t *ThrottledSource) Name() string {
	return t.underlying.Name()
}

// Fetch waits for its turn, then delegates. A cancelled context returns its error.
func (t *ThrottledSource) Fetch(ctx context.Context, symbol string, period Period) (types.PriceSeries, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return types.PriceSeries{}, err
	}

	return t.underlying.Fetch(ctx, symbol, period)
}
