package pipeline

import (
	"fmt"
	"time"

	"github.com/rxtech-lab/argo-analysis/internal/compare"
	"github.com/rxtech-lab/argo-analysis/internal/indicator"
	"github.com/rxtech-lab/argo-analysis/internal/types"
	"github.com/rxtech-lab/argo-analysis/pkg/marketdata"
)

// FailureKind tags why a symbol produced no output.
type FailureKind string

const (
	FailureFetch     FailureKind = "fetch_failed"
	FailureEmpty     FailureKind = "empty_series"
	FailureMalformed FailureKind = "malformed_series"
)

// Failure is the per-symbol error of a batch. It never aborts the batch.
type Failure struct {
	Kind FailureKind
	Err  error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return string(f.Kind)
	}

	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Output is the analysis of one symbol.
type Output struct {
	Series     types.PriceSeries
	Table      *indicator.Table
	Assessment types.TrendAssessment
}

// SymbolResult holds either the Output or the Failure of one symbol.
type SymbolResult struct {
	Symbol   string
	Output   *Output
	Failure  *Failure
	Duration time.Duration
}

// OK reports whether the symbol completed.
func (r SymbolResult) OK() bool {
	return r.Failure == nil && r.Output != nil
}

// BatchResult is the outcome of Runner.Run. Results keep the input order;
// symbols never issued because of cancellation are absent.
type BatchResult struct {
	RunID    string
	Period   marketdata.Period
	Started  time.Time
	Finished time.Time
	Results  []SymbolResult
}

// Successful returns the completed symbols.
func (b *BatchResult) Successful() []SymbolResult {
	var out []SymbolResult

	for _, r := range b.Results {
		if r.OK() {
			out = append(out, r)
		}
	}

	return out
}

// Failed returns the symbols that produced a Failure.
func (b *BatchResult) Failed() []SymbolResult {
	var out []SymbolResult

	for _, r := range b.Results {
		if !r.OK() {
			out = append(out, r)
		}
	}

	return out
}

// Comparison builds a ComparisonSet from the completed symbols, in input order.
func (b *BatchResult) Comparison() *compare.ComparisonSet {
	set := compare.NewComparisonSet()

	for _, r := range b.Successful() {
		set.Add(r.Output.Series, r.Output.Table)
	}

	return set
}

// Result returns the result of symbol.
func (b *BatchResult) Result(symbol string) (SymbolResult, bool) {
	for _, r := range b.Results {
		if r.Symbol == symbol {
			return r, true
		}
	}

	return SymbolResult{}, false
}
