package pipeline

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-analysis/pkg/errors"
)

// tickerPattern admits plain tickers and the provider notations BRK.B,
// BTC-USD, BTCUSDT, ^GSPC and EURUSD=X.
var tickerPattern = regexp.MustCompile(`^\^?[A-Z0-9][A-Z0-9.\-=]{0,19}$`)

var tickerValidator = newTickerValidator()

func newTickerValidator() *validator.Validate {
	validate := validator.New()
	_ = validate.RegisterValidation("ticker", func(fl validator.FieldLevel) bool {
		return tickerPattern.MatchString(fl.Field().String())
	})

	return validate
}

// ParseTickers splits a comma separated list such as "aapl, tsla" and
// normalizes it with NormalizeTickers.
func ParseTickers(input string) ([]string, error) {
	return NormalizeTickers(strings.Split(input, ","))
}

// NormalizeTickers trims and upper-cases symbols, dropping blanks and
// duplicates while keeping first-seen order. An empty result or a malformed
// symbol is an ErrCodeInvalidTicker error.
func NormalizeTickers(symbols []string) ([]string, error) {
	seen := make(map[string]struct{}, len(symbols))
	normalized := make([]string, 0, len(symbols))

	for _, raw := range symbols {
		symbol := strings.ToUpper(strings.TrimSpace(raw))
		if symbol == "" {
			continue
		}

		if err := tickerValidator.Var(symbol, "ticker"); err != nil {
			return nil, errors.Newf(errors.ErrCodeInvalidTicker, "invalid ticker %q", raw)
		}

		if _, ok := seen[symbol]; ok {
			continue
		}

		seen[symbol] = struct{}{}
		normalized = append(normalized, symbol)
	}

	if len(normalized) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidTicker, "no tickers given")
	}

	return normalized, nil
}
