package marketdata

import (
	"strings"
	"time"

	"github.com/rxtech-lab/argo-analysis/pkg/errors"
)

// Period is the lookback range of a fetch, in the notation of the Yahoo chart API.
type Period string

const (
	PeriodOneDay      Period = "1d"
	PeriodFiveDays    Period = "5d"
	PeriodOneMonth    Period = "1mo"
	PeriodThreeMonths Period = "3mo"
	PeriodSixMonths   Period = "6mo"
	PeriodOneYear     Period = "1y"
	PeriodTwoYears    Period = "2y"
	PeriodFiveYears   Period = "5y"
	PeriodTenYears    Period = "10y"
	PeriodYearToDate  Period = "ytd"
	PeriodMax         Period = "max"
)

// DefaultPeriod is used when no period is given.
const DefaultPeriod = PeriodOneMonth

// periodSuggestions maps common minute-looking typos to the month period.
var periodSuggestions = map[string]Period{
	"1m": PeriodOneMonth,
	"3m": PeriodThreeMonths,
	"6m": PeriodSixMonths,
}

// Periods returns every supported period in ascending length.
func Periods() []Period {
	return []Period{
		PeriodOneDay, PeriodFiveDays, PeriodOneMonth, PeriodThreeMonths, PeriodSixMonths,
		PeriodOneYear, PeriodTwoYears, PeriodFiveYears, PeriodTenYears, PeriodYearToDate, PeriodMax,
	}
}

// ParsePeriod validates s. Unknown values return ErrCodeInvalidTimespan; when a
// close match exists the message suggests it.
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultPeriod, nil
	}

	for _, p := range Periods() {
		if string(p) == s {
			return p, nil
		}
	}

	if suggestion, ok := periodSuggestions[strings.ToLower(s)]; ok {
		return "", errors.Newf(errors.ErrCodeInvalidTimespan, "invalid period %q, did you mean %q?", s, suggestion)
	}

	return "", errors.Newf(errors.ErrCodeInvalidTimespan, "invalid period %q, valid periods: %s", s, joinPeriods())
}

// Start returns the lower bound of the period ending at now.
func (p Period) Start(now time.Time) time.Time {
	switch p {
	case PeriodOneDay:
		return now.AddDate(0, 0, -1)
	case PeriodFiveDays:
		return now.AddDate(0, 0, -5)
	case PeriodOneMonth:
		return now.AddDate(0, -1, 0)
	case PeriodThreeMonths:
		return now.AddDate(0, -3, 0)
	case PeriodSixMonths:
		return now.AddDate(0, -6, 0)
	case PeriodOneYear:
		return now.AddDate(-1, 0, 0)
	case PeriodTwoYears:
		return now.AddDate(-2, 0, 0)
	case PeriodFiveYears:
		return now.AddDate(-5, 0, 0)
	case PeriodTenYears:
		return now.AddDate(-10, 0, 0)
	case PeriodYearToDate:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	default:
		return time.Unix(0, 0).UTC()
	}
}

func joinPeriods() string {
	parts := make([]string, 0, len(Periods()))
	for _, p := range Periods() {
		parts = append(parts, string(p))
	}

	return strings.Join(parts, ", ")
}
