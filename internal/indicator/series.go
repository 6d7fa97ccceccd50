package indicator

import (
	"math"

	"github.com/moznion/go-optional"
)

// Series is a derived column aligned to the time index of its price series.
// Undefined rows hold NaN; callers should read values through At or Latest.
type Series []float64

// undefined marks a row without enough trailing history.
var undefined = math.NaN()

// NewUndefinedSeries returns a series of length n with every row undefined.
func NewUndefinedSeries(n int) Series {
	s := make(Series, n)
	for i := range s {
		s[i] = undefined
	}

	return s
}

// Len returns the number of rows.
func (s Series) Len() int {
	return len(s)
}

// IsDefined reports whether row i holds a value.
func (s Series) IsDefined(i int) bool {
	return i >= 0 && i < len(s) && !math.IsNaN(s[i])
}

// At returns row i, or None when the row is undefined or out of range.
func (s Series) At(i int) optional.Option[float64] {
	if !s.IsDefined(i) {
		return optional.None[float64]()
	}

	return optional.Some(s[i])
}

// Latest returns the last row, or None when the series is empty or the last row is undefined.
func (s Series) Latest() optional.Option[float64] {
	return s.At(len(s) - 1)
}

// DefinedCount returns the number of defined rows.
func (s Series) DefinedCount() int {
	n := 0

	for i := range s {
		if s.IsDefined(i) {
			n++
		}
	}

	return n
}

// Values returns a copy of the raw rows, NaN for undefined.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	copy(out, s)

	return out
}

// Pointers returns the rows as pointers with nil for undefined, for JSON or SQL encoding.
func (s Series) Pointers() []*float64 {
	out := make([]*float64, len(s))

	for i := range s {
		if s.IsDefined(i) {
			v := s[i]
			out[i] = &v
		}
	}

	return out
}
