// Package compare derives cross-symbol views (normalized price, RSI overlay,
// returns and ranking) from fully computed per-symbol outputs.
package compare

import (
	"sort"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-analysis/internal/indicator"
	"github.com/rxtech-lab/argo-analysis/internal/types"
	"github.com/rxtech-lab/argo-analysis/pkg/errors"
)

// MinMembers is the smallest set a relative comparison accepts.
const MinMembers = 2

// Member is one symbol of a comparison set.
type Member struct {
	Series types.PriceSeries
	Table  *indicator.Table
}

// ComparisonSet maps symbols to their series and indicator tables in insertion order.
type ComparisonSet struct {
	members map[string]Member
	order   []string
}

// NewComparisonSet creates an empty comparison set.
func NewComparisonSet() *ComparisonSet {
	return &ComparisonSet{
		members: make(map[string]Member),
	}
}

// Add inserts a symbol. Empty series are skipped and Add returns false.
// Adding a symbol twice replaces the earlier member but keeps its position.
func (c *ComparisonSet) Add(series types.PriceSeries, table *indicator.Table) bool {
	if series.IsEmpty() {
		return false
	}

	if _, exists := c.members[series.Symbol]; !exists {
		c.order = append(c.order, series.Symbol)
	}

	c.members[series.Symbol] = Member{Series: series, Table: table}

	return true
}

// Len returns the number of members.
func (c *ComparisonSet) Len() int {
	return len(c.order)
}

// Symbols returns the member symbols in insertion order.
func (c *ComparisonSet) Symbols() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)

	return out
}

// Member returns the member for symbol.
func (c *ComparisonSet) Member(symbol string) (Member, bool) {
	m, ok := c.members[symbol]

	return m, ok
}

// SymbolSeries is one derived series keyed by its member's own timestamps.
type SymbolSeries struct {
	Symbol string
	Times  []time.Time
	Values indicator.Series
}

// ReturnSeries holds the daily and cumulative returns of one member.
type ReturnSeries struct {
	Symbol     string
	Times      []time.Time
	Daily      indicator.Series
	Cumulative indicator.Series
}

// Final returns the last cumulative return.
func (r ReturnSeries) Final() optional.Option[float64] {
	return r.Cumulative.Latest()
}

// RankEntry is one row of the ranking by final cumulative return.
type RankEntry struct {
	Rank             int
	Symbol           string
	CumulativeReturn optional.Option[float64]
}

// SummaryRow is the per-symbol line of a comparison summary.
type SummaryRow struct {
	Symbol       string
	LatestClose  optional.Option[float64]
	PeriodReturn optional.Option[float64]
	RSI          optional.Option[float64]
}

func (c *ComparisonSet) require() error {
	if c.Len() < MinMembers {
		return errors.Newf(errors.ErrCodeInsufficientComparisonSet,
			"comparison needs at least %d symbols with data, got %d", MinMembers, c.Len())
	}

	return nil
}

// Normalized rebases every member's closes to 100 at its first bar.
func (c *ComparisonSet) Normalized() ([]SymbolSeries, error) {
	if err := c.require(); err != nil {
		return nil, err
	}

	out := make([]SymbolSeries, 0, c.Len())

	for _, symbol := range c.order {
		m := c.members[symbol]
		out = append(out, SymbolSeries{
			Symbol: symbol,
			Times:  m.Series.Times(),
			Values: indicator.Normalize(m.Series.Closes()),
		})
	}

	return out, nil
}

// RelativeRSI returns each member's own RSI column for overlay.
// Values are not adjusted across members.
func (c *ComparisonSet) RelativeRSI() ([]SymbolSeries, error) {
	if err := c.require(); err != nil {
		return nil, err
	}

	out := make([]SymbolSeries, 0, c.Len())

	for _, symbol := range c.order {
		m := c.members[symbol]

		rsi, ok := m.Table.Column(types.IndicatorTypeRSI)
		if !ok {
			rsi = indicator.NewUndefinedSeries(m.Series.Len())
		}

		out = append(out, SymbolSeries{
			Symbol: symbol,
			Times:  m.Series.Times(),
			Values: rsi,
		})
	}

	return out, nil
}

// Returns computes daily and cumulative returns of every member.
func (c *ComparisonSet) Returns() ([]ReturnSeries, error) {
	if err := c.require(); err != nil {
		return nil, err
	}

	out := make([]ReturnSeries, 0, c.Len())

	for _, symbol := range c.order {
		m := c.members[symbol]
		closes := m.Series.Closes()

		out = append(out, ReturnSeries{
			Symbol:     symbol,
			Times:      m.Series.Times(),
			Daily:      indicator.PercentChange(closes),
			Cumulative: indicator.CumulativeReturn(closes),
		})
	}

	return out, nil
}

// Ranking orders members by final cumulative return, best first.
// Ties are broken by symbol and undefined returns sort last.
func (c *ComparisonSet) Ranking() ([]RankEntry, error) {
	returns, err := c.Returns()
	if err != nil {
		return nil, err
	}

	entries := make([]RankEntry, len(returns))
	for i, r := range returns {
		entries[i] = RankEntry{Symbol: r.Symbol, CumulativeReturn: r.Final()}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].CumulativeReturn, entries[j].CumulativeReturn
		if a.IsSome() != b.IsSome() {
			return a.IsSome()
		}

		if a.IsSome() && a.Unwrap() != b.Unwrap() {
			return a.Unwrap() > b.Unwrap()
		}

		return entries[i].Symbol < entries[j].Symbol
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries, nil
}

// Summary returns the latest close, period return and latest RSI of every
// member in ranking order.
func (c *ComparisonSet) Summary() ([]SummaryRow, error) {
	ranking, err := c.Ranking()
	if err != nil {
		return nil, err
	}

	rows := make([]SummaryRow, 0, len(ranking))

	for _, entry := range ranking {
		m := c.members[entry.Symbol]

		latest := optional.None[float64]()
		if bar, err := m.Series.Last().Take(); err == nil {
			latest = optional.Some(bar.Close)
		}

		rows = append(rows, SummaryRow{
			Symbol:       entry.Symbol,
			LatestClose:  latest,
			PeriodReturn: indicator.PeriodReturn(m.Series.Closes()),
			RSI:          m.Table.Latest(types.IndicatorTypeRSI),
		})
	}

	return rows, nil
}
