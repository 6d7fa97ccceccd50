package mocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataGenerator_GenerateBars(t *testing.T) {
	gen := NewDataGenerator(42)
	config := DefaultConfig()
	config.Count = 100

	bars := gen.GenerateBars(config)
	require.Len(t, bars, 100)

	for i, b := range bars {
		assert.Positive(t, b.Open, "open at %d", i)
		assert.Positive(t, b.Close, "close at %d", i)
		assert.GreaterOrEqual(t, b.High, b.Low, "high < low at %d", i)

		if i > 0 {
			assert.Equal(t, config.Interval, b.Time.Sub(bars[i-1].Time))
		}
	}
}

func TestDataGenerator_Reproducibility(t *testing.T) {
	config := DefaultConfig()
	config.Count = 10

	a := NewDataGenerator(42).GenerateBars(config)
	b := NewDataGenerator(42).GenerateBars(config)
	assert.Equal(t, a, b)

	c := NewDataGenerator(123).GenerateBars(config)
	assert.NotEqual(t, a, c)
}

func TestSeries(t *testing.T) {
	series := Series("AAPL", 30)

	assert.Equal(t, "AAPL", series.Symbol)
	assert.Equal(t, 30, series.Len())
}
