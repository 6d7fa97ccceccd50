// Package trend classifies the last row of an indicator table into a trend
// label, an RSI momentum reading and a MACD crossover state.
package trend

import (
	"github.com/rxtech-lab/argo-analysis/internal/types"
)

// Inputs are the defined values the trend rules compare.
type Inputs struct {
	Close float64
	SMA10 float64
	SMA30 float64
}

// Rule pairs a predicate with the label it yields.
type Rule struct {
	Label types.TrendLabel
	Match func(in Inputs) bool
}

// DefaultRules is the trend decision table. Rules are evaluated top to bottom
// and the first match wins; TrendSideways is the fallback.
func DefaultRules() []Rule {
	return []Rule{
		{
			Label: types.TrendStrongBullish,
			Match: func(in Inputs) bool { return in.Close > in.SMA10 && in.SMA10 > in.SMA30 },
		},
		{
			Label: types.TrendBullish,
			Match: func(in Inputs) bool { return in.Close > in.SMA10 },
		},
		{
			Label: types.TrendStrongBearish,
			Match: func(in Inputs) bool { return in.Close < in.SMA10 && in.SMA10 < in.SMA30 },
		},
		{
			Label: types.TrendBearish,
			Match: func(in Inputs) bool { return in.Close < in.SMA10 },
		},
	}
}

// Evaluate returns the label of the first matching rule, or TrendSideways.
func Evaluate(rules []Rule, in Inputs) types.TrendLabel {
	for _, rule := range rules {
		if rule.Match(in) {
			return rule.Label
		}
	}

	return types.TrendSideways
}
