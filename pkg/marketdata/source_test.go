package marketdata

import (
	"math"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-analysis/internal/types"
	"github.com/rxtech-lab/argo-analysis/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type BuildSeriesTestSuite struct {
	suite.Suite
}

func TestBuildSeriesSuite(t *testing.T) {
	suite.Run(t, new(BuildSeriesTestSuite))
}

func bar(day int, closePrice float64) types.Bar {
	return types.Bar{
		Time:  time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		Open:  closePrice,
		High:  closePrice,
		Low:   closePrice,
		Close: closePrice,
	}
}

func (suite *BuildSeriesTestSuite) TestEmpty() {
	series, err := BuildSeries("AAPL", nil)
	suite.NoError(err)
	suite.True(series.IsEmpty())
	suite.Equal("AAPL", series.Symbol)
}

func (suite *BuildSeriesTestSuite) TestSortsAndDedupes() {
	series, err := BuildSeries("AAPL", []types.Bar{bar(3, 30), bar(1, 10), bar(2, 20), bar(3, 31)})
	suite.Require().NoError(err)

	suite.Equal([]float64{10, 20, 31}, series.Closes())
}

func (suite *BuildSeriesTestSuite) TestRejectsNonFinite() {
	bad := bar(1, 10)
	bad.Close = math.NaN()

	_, err := BuildSeries("AAPL", []types.Bar{bad})
	suite.True(errors.IsMalformedSeries(err))
}
