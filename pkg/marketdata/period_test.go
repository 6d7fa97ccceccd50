package marketdata

import (
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-analysis/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type PeriodTestSuite struct {
	suite.Suite
}

func TestPeriodSuite(t *testing.T) {
	suite.Run(t, new(PeriodTestSuite))
}

func (suite *PeriodTestSuite) TestParseValidPeriods() {
	for _, p := range Periods() {
		parsed, err := ParsePeriod(string(p))
		suite.NoError(err)
		suite.Equal(p, parsed)
	}

	parsed, err := ParsePeriod("  ")
	suite.NoError(err)
	suite.Equal(PeriodOneMonth, parsed)
}

func (suite *PeriodTestSuite) TestParseSuggestsMonth() {
	tests := []struct {
		input      string
		suggestion string
	}{
		{"1m", "1mo"},
		{"3m", "3mo"},
		{"6M", "6mo"},
	}

	for _, tc := range tests {
		_, err := ParsePeriod(tc.input)
		suite.Require().Error(err)
		suite.Equal(errors.ErrCodeInvalidTimespan, errors.GetCode(err))
		suite.Contains(err.Error(), "did you mean \""+tc.suggestion+"\"")
	}
}

func (suite *PeriodTestSuite) TestParseUnknownListsValid() {
	_, err := ParsePeriod("2w")
	suite.Require().Error(err)
	suite.Contains(err.Error(), "valid periods: 1d, 5d, 1mo")
}

func (suite *PeriodTestSuite) TestStart() {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	suite.Equal(time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC), PeriodOneMonth.Start(now))
	suite.Equal(time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC), PeriodOneYear.Start(now))
	suite.Equal(time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC), PeriodFiveDays.Start(now))
	suite.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), PeriodYearToDate.Start(now))
	suite.True(PeriodMax.Start(now).Equal(time.Unix(0, 0)))
}

func (suite *PeriodTestSuite) TestParseInterval() {
	interval, err := ParseInterval("")
	suite.NoError(err)
	suite.Equal(IntervalOneDay, interval)

	_, err = ParseInterval("7m")
	suite.Equal(errors.ErrCodeInvalidTimespan, errors.GetCode(err))
}

func (suite *PeriodTestSuite) TestIntervalMappings() {
	timespan, multiplier := IntervalFifteenMinutes.Polygon()
	suite.Equal(models.Minute, timespan)
	suite.Equal(15, multiplier)

	timespan, multiplier = IntervalOneDay.Polygon()
	suite.Equal(models.Day, timespan)
	suite.Equal(1, multiplier)

	suite.Equal("1h", IntervalOneHour.Binance())
	suite.Equal("60m", IntervalOneHour.Yahoo())
	suite.Equal("1wk", IntervalOneWeek.Yahoo())
	suite.Equal("1d", IntervalOneDay.Yahoo())
}
