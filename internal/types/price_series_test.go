package types

import (
	"math"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-analysis/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type PriceSeriesTestSuite struct {
	suite.Suite
	start time.Time
}

func TestPriceSeriesSuite(t *testing.T) {
	suite.Run(t, new(PriceSeriesTestSuite))
}

func (suite *PriceSeriesTestSuite) SetupTest() {
	suite.start = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
}

func (suite *PriceSeriesTestSuite) bars(closes ...float64) []Bar {
	out := make([]Bar, len(closes))
	for i, c := range closes {
		out[i] = Bar{
			Time:   suite.start.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: float64(1000 * (i + 1)),
		}
	}

	return out
}

func (suite *PriceSeriesTestSuite) TestNewPriceSeries() {
	series, err := NewPriceSeries("AAPL", suite.bars(10, 11, 12))
	suite.Require().NoError(err)
	suite.Equal("AAPL", series.Symbol)
	suite.Equal(3, series.Len())
	suite.False(series.IsEmpty())
	suite.Equal([]float64{10, 11, 12}, series.Closes())
	suite.Equal(suite.start.AddDate(0, 0, 2), series.Times()[2])
}

func (suite *PriceSeriesTestSuite) TestSourceBarsAreCopied() {
	bars := suite.bars(10, 11)
	series, err := NewPriceSeries("AAPL", bars)
	suite.Require().NoError(err)

	bars[0].Close = 999
	suite.Equal(10.0, series.Bar(0).Close)

	out := series.Bars()
	out[1].Close = 999
	suite.Equal(11.0, series.Bar(1).Close)
}

func (suite *PriceSeriesTestSuite) TestRejectsDuplicateTimestamps() {
	bars := suite.bars(10, 11, 12)
	bars[2].Time = bars[1].Time

	_, err := NewPriceSeries("AAPL", bars)
	suite.Error(err)
	suite.True(errors.IsMalformedSeries(err))
}

func (suite *PriceSeriesTestSuite) TestRejectsOutOfOrderTimestamps() {
	bars := suite.bars(10, 11, 12)
	bars[0], bars[1] = bars[1], bars[0]

	_, err := NewPriceSeries("AAPL", bars)
	suite.True(errors.IsMalformedSeries(err))
}

func (suite *PriceSeriesTestSuite) TestRejectsNonFiniteValues() {
	bars := suite.bars(10, 11)
	bars[1].Close = math.NaN()

	_, err := NewPriceSeries("AAPL", bars)
	suite.True(errors.IsMalformedSeries(err))

	bars[1].Close = 11
	bars[1].Volume = math.Inf(1)
	_, err = NewPriceSeries("AAPL", bars)
	suite.True(errors.IsMalformedSeries(err))
}

func (suite *PriceSeriesTestSuite) TestOHLCViolationsAreAdvisory() {
	bars := suite.bars(10, 11)
	bars[0].High = 5
	bars[1].Low = 50
	bars[1].Volume = -1

	series, err := NewPriceSeries("AAPL", bars)
	suite.Require().NoError(err)
	suite.Len(series.Advisories(), 3)
}

func (suite *PriceSeriesTestSuite) TestScalarAccessors() {
	series, err := NewPriceSeries("AAPL", suite.bars(10, 14, 12))
	suite.Require().NoError(err)

	suite.Equal(15.0, series.Highest().Unwrap())
	suite.Equal(9.0, series.Lowest().Unwrap())
	suite.Equal(2000.0, series.AverageVolume().Unwrap())
	suite.Equal(10.0, series.First().Unwrap().Close)
	suite.Equal(12.0, series.Last().Unwrap().Close)
}

func (suite *PriceSeriesTestSuite) TestEmptySeries() {
	series := EmptySeries("NONE")
	suite.True(series.IsEmpty())
	suite.Empty(series.Closes())
	suite.True(series.First().IsNone())
	suite.True(series.Last().IsNone())
	suite.True(series.Highest().IsNone())
	suite.True(series.Lowest().IsNone())
	suite.True(series.AverageVolume().IsNone())
	suite.Empty(series.Advisories())

	fromNil, err := NewPriceSeries("NONE", nil)
	suite.NoError(err)
	suite.True(fromNil.IsEmpty())
}
