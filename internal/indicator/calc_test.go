package indicator

import (
	"math"
	"testing"

	"github.com/markcheno/go-talib"
	"github.com/stretchr/testify/suite"
)

type CalcTestSuite struct {
	suite.Suite
}

func TestCalcSuite(t *testing.T) {
	suite.Run(t, new(CalcTestSuite))
}

func ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}

	return out
}

func (suite *CalcTestSuite) TestSimpleMovingAverageWindowMean() {
	values := []float64{1, 2, 3, 4, 5, 6}
	sma := SimpleMovingAverage(values, 3)

	suite.False(sma.IsDefined(0))
	suite.False(sma.IsDefined(1))
	suite.InDelta(2.0, sma[2], 1e-12)
	suite.InDelta(3.0, sma[3], 1e-12)
	suite.InDelta(5.0, sma[5], 1e-12)
	suite.Equal(4, sma.DefinedCount())
}

func (suite *CalcTestSuite) TestSimpleMovingAverageMatchesTalib() {
	values := []float64{101.2, 99.8, 100.5, 103.1, 104.7, 102.2, 101.9, 105.5, 106.1, 104.3, 107.8, 109.0, 108.2}
	period := 5

	ours := SimpleMovingAverage(values, period)
	reference := talib.Sma(values, period)

	for i := period - 1; i < len(values); i++ {
		suite.InDelta(reference[i], ours[i], 1e-9, "row %d", i)
	}
}

func (suite *CalcTestSuite) TestSimpleMovingAverageShortInput() {
	sma := SimpleMovingAverage([]float64{1, 2}, 10)
	suite.Equal(2, sma.Len())
	suite.Equal(0, sma.DefinedCount())
}

func (suite *CalcTestSuite) TestRollingStdDevSample() {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	std := RollingStdDev(values, 8)

	suite.Equal(1, std.DefinedCount())
	// sample variance of the classic example is 32/7
	suite.InDelta(math.Sqrt(32.0/7.0), std[7], 1e-12)
}

func (suite *CalcTestSuite) TestRollingStdDevConstantIsZero() {
	std := RollingStdDev(ramp(25, 50, 0), 20)
	suite.InDelta(0.0, std[24], 1e-12)
}

func (suite *CalcTestSuite) TestExponentialMovingAverageSeededAtFirstValue() {
	values := []float64{10, 20, 30}
	ema := ExponentialMovingAverage(values, 3)
	alpha := 0.5

	suite.Equal(3, ema.DefinedCount())
	suite.InDelta(10.0, ema[0], 1e-12)
	suite.InDelta(alpha*20+(1-alpha)*10, ema[1], 1e-12)
	suite.InDelta(alpha*30+(1-alpha)*ema[1], ema[2], 1e-12)
}

func (suite *CalcTestSuite) TestRelativeStrengthIndexRange() {
	values := []float64{44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42, 45.84, 46.08,
		45.89, 46.03, 45.61, 46.28, 46.28, 46.00, 46.03, 46.41, 46.22, 45.64}
	rsi := RelativeStrengthIndex(values, 14)

	for i := 0; i < 14; i++ {
		suite.False(rsi.IsDefined(i), "row %d should be undefined", i)
	}

	for i := 14; i < len(values); i++ {
		suite.True(rsi.IsDefined(i))
		suite.GreaterOrEqual(rsi[i], 0.0)
		suite.LessOrEqual(rsi[i], 100.0)
	}
}

func (suite *CalcTestSuite) TestRelativeStrengthIndexAllGains() {
	rsi := RelativeStrengthIndex(ramp(20, 100, 1), 14)
	suite.InDelta(100.0, rsi[19], 1e-12)
}

func (suite *CalcTestSuite) TestRelativeStrengthIndexAllLosses() {
	rsi := RelativeStrengthIndex(ramp(20, 100, -1), 14)
	suite.InDelta(0.0, rsi[19], 1e-12)
}

func (suite *CalcTestSuite) TestRelativeStrengthIndexFlatWindow() {
	rsi := RelativeStrengthIndex(ramp(20, 100, 0), 14)
	suite.InDelta(100.0, rsi[19], 1e-12)
}

func (suite *CalcTestSuite) TestRelativeStrengthIndexKnownValue() {
	// one gain of 2 and one loss of 1 over a two-change window
	rsi := RelativeStrengthIndex([]float64{10, 12, 11}, 2)
	suite.InDelta(100-100/(1+2.0), rsi[2], 1e-12)
}

func (suite *CalcTestSuite) TestPercentChange() {
	change := PercentChange([]float64{100, 110, 0, 5})

	suite.False(change.IsDefined(0))
	suite.InDelta(10.0, change[1], 1e-12)
	suite.InDelta(-100.0, change[2], 1e-12)
	suite.False(change.IsDefined(3))
}

func (suite *CalcTestSuite) TestNormalizeAndCumulative() {
	values := []float64{50, 55, 45}

	normalized := Normalize(values)
	suite.InDelta(100.0, normalized[0], 1e-12)
	suite.InDelta(110.0, normalized[1], 1e-12)
	suite.InDelta(90.0, normalized[2], 1e-12)

	cumulative := CumulativeReturn(values)
	suite.InDelta(0.0, cumulative[0], 1e-12)
	suite.InDelta(10.0, cumulative[1], 1e-12)
	suite.InDelta(-10.0, cumulative[2], 1e-12)
}

func (suite *CalcTestSuite) TestNormalizeZeroBase() {
	suite.Equal(0, Normalize([]float64{0, 1, 2}).DefinedCount())
	suite.Equal(0, CumulativeReturn([]float64{0, 1, 2}).DefinedCount())
}

func (suite *CalcTestSuite) TestPeriodReturn() {
	suite.InDelta(0.0, PeriodReturn(ramp(10, 42, 0)).Unwrap(), 1e-12)
	suite.InDelta(25.0, PeriodReturn([]float64{80, 90, 100}).Unwrap(), 1e-12)
	suite.True(PeriodReturn(nil).IsNone())
	suite.True(PeriodReturn([]float64{0, 10}).IsNone())
}

func (suite *CalcTestSuite) TestRecomputeIsIdentical() {
	values := []float64{10, 11, 10.5, 12, 13, 12.5, 14, 13.8, 15, 15.2, 14.9, 16, 16.5, 17, 16.8, 18}

	suite.Equal(SimpleMovingAverage(values, 5).Pointers(), SimpleMovingAverage(values, 5).Pointers())
	suite.Equal(ExponentialMovingAverage(values, 5), ExponentialMovingAverage(values, 5))
	suite.Equal(RelativeStrengthIndex(values, 14).Pointers(), RelativeStrengthIndex(values, 14).Pointers())
}
