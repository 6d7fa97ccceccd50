// Package history records trend assessments so successive runs over the same
// symbol can be reviewed and trend changes detected.
package history

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-analysis/internal/pipeline"
	"github.com/rxtech-lab/argo-analysis/internal/types"
	"github.com/rxtech-lab/argo-analysis/pkg/marketdata"
)

// DefaultLimit is the number of entries List returns when no limit is given.
const DefaultLimit = 20

// Entry is one recorded assessment.
type Entry struct {
	// RunID identifies the batch that produced the entry.
	RunID  string            `json:"runId"`
	Symbol string            `json:"symbol"`
	Period marketdata.Period `json:"period"`
	// BarTime is the time of the latest bar the assessment was computed on.
	BarTime    time.Time `json:"barTime"`
	RecordedAt time.Time `json:"recordedAt"`

	Trend      types.TrendLabel `json:"trend"`
	RSISignal  types.RSISignal  `json:"rsiSignal"`
	MACDSignal types.MACDSignal `json:"macdSignal"`

	LatestClose  optional.Option[float64] `json:"latestClose"`
	RSI          optional.Option[float64] `json:"rsi"`
	PeriodReturn optional.Option[float64] `json:"periodReturn"`
}

// Store is the interface for persisting assessments.
type Store interface {
	// Record stores entries atomically.
	Record(ctx context.Context, entries ...Entry) error
	// List returns the most recent entries of symbol, newest first.
	List(ctx context.Context, symbol string, limit int) ([]Entry, error)
	// Close releases the store.
	Close() error
}

// NewEntry builds the entry of one assessment.
func NewEntry(runID string, period marketdata.Period, recordedAt time.Time, a types.TrendAssessment) Entry {
	return Entry{
		RunID:        runID,
		Symbol:       a.Symbol,
		Period:       period,
		BarTime:      a.Time,
		RecordedAt:   recordedAt,
		Trend:        a.Trend,
		RSISignal:    a.RSISignal,
		MACDSignal:   a.MACDSignal,
		LatestClose:  a.LatestClose,
		RSI:          a.RSI,
		PeriodReturn: a.PeriodReturn,
	}
}

// EntriesFromBatch returns an entry for every successful symbol of batch.
func EntriesFromBatch(batch *pipeline.BatchResult) []Entry {
	successful := batch.Successful()
	entries := make([]Entry, 0, len(successful))

	for _, result := range successful {
		entries = append(entries, NewEntry(batch.RunID, batch.Period, batch.Finished, result.Output.Assessment))
	}

	return entries
}

// TrendChange is a symbol whose trend differs from its previous record.
type TrendChange struct {
	Symbol   string
	Previous types.TrendLabel
	Current  types.TrendLabel
}

// Changes compares entries with the latest stored entry of each symbol.
// Symbols without a previous record are not reported. Call it before Record.
func Changes(ctx context.Context, store Store, entries []Entry) ([]TrendChange, error) {
	var changes []TrendChange

	for _, entry := range entries {
		previous, err := store.List(ctx, entry.Symbol, 1)
		if err != nil {
			return nil, err
		}

		if len(previous) == 0 || previous[0].Trend == entry.Trend {
			continue
		}

		changes = append(changes, TrendChange{
			Symbol:   entry.Symbol,
			Previous: previous[0].Trend,
			Current:  entry.Trend,
		})
	}

	return changes, nil
}
