package indicator

import (
	"math"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-analysis/internal/types"
	"github.com/rxtech-lab/argo-analysis/pkg/errors"
)

// Table is a price series plus its derived columns, sharing one time index.
type Table struct {
	series  types.PriceSeries
	columns map[types.IndicatorType]Column
	order   []types.IndicatorType
}

// Row is a single time slice of a table.
type Row struct {
	Time   time.Time
	Bar    types.Bar
	Values map[types.IndicatorType]float64
}

// Value returns the column value of the row, or None when undefined.
func (r Row) Value(name types.IndicatorType) optional.Option[float64] {
	v, ok := r.Values[name]
	if !ok || math.IsNaN(v) {
		return optional.None[float64]()
	}

	return optional.Some(v)
}

func newTable(series types.PriceSeries) *Table {
	return &Table{
		series:  series,
		columns: make(map[types.IndicatorType]Column),
	}
}

func (t *Table) addColumn(column Column) {
	if _, exists := t.columns[column.Name]; !exists {
		t.order = append(t.order, column.Name)
	}

	t.columns[column.Name] = column
}

// Symbol returns the symbol of the underlying series.
func (t *Table) Symbol() string {
	return t.series.Symbol
}

// Series returns the underlying price series.
func (t *Table) Series() types.PriceSeries {
	return t.series
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return t.series.Len()
}

// IsEmpty reports whether the table has no rows.
func (t *Table) IsEmpty() bool {
	return t.series.IsEmpty()
}

// Times returns the time index.
func (t *Table) Times() []time.Time {
	return t.series.Times()
}

// Closes returns the close column.
func (t *Table) Closes() []float64 {
	return t.series.Closes()
}

// Columns returns the derived column names in computation order.
func (t *Table) Columns() []types.IndicatorType {
	out := make([]types.IndicatorType, len(t.order))
	copy(out, t.order)

	return out
}

// Column returns a copy of the named column.
func (t *Table) Column(name types.IndicatorType) (Series, bool) {
	column, ok := t.columns[name]
	if !ok {
		return nil, false
	}

	return Series(column.Values.Values()), true
}

// Latest returns the last row of the named column, or None when the column is
// missing or its last row is undefined.
func (t *Table) Latest(name types.IndicatorType) optional.Option[float64] {
	column, ok := t.columns[name]
	if !ok {
		return optional.None[float64]()
	}

	return column.Values.Latest()
}

// LatestValue is Latest with an InsufficientDataError describing how many bars
// the column needs before it is defined.
func (t *Table) LatestValue(name types.IndicatorType) (float64, error) {
	column, ok := t.columns[name]
	if !ok {
		return 0, errors.Newf(errors.ErrCodeIndicatorNotFound, "column %s not found", name)
	}

	v, err := column.Values.Latest().Take()
	if err != nil {
		return 0, errors.NewInsufficientDataErrorf(column.Warmup+1, t.Len(), t.Symbol(),
			"%s needs at least %d bars", name, column.Warmup+1)
	}

	return v, nil
}

// Row returns the i-th row with every column value, NaN where undefined.
func (t *Table) Row(i int) (Row, bool) {
	if i < 0 || i >= t.Len() {
		return Row{}, false
	}

	bar := t.series.Bar(i)
	values := make(map[types.IndicatorType]float64, len(t.columns))

	for name, column := range t.columns {
		values[name] = column.Values[i]
	}

	return Row{Time: bar.Time, Bar: bar, Values: values}, true
}

// LastRow returns the final row, or None on an empty table.
func (t *Table) LastRow() optional.Option[Row] {
	row, ok := t.Row(t.Len() - 1)
	if !ok {
		return optional.None[Row]()
	}

	return optional.Some(row)
}
