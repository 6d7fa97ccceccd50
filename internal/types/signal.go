package types

// TrendLabel is the categorical trend of the latest bar.
type TrendLabel string

const (
	// TrendStrongBullish means close > SMA_10 > SMA_30.
	TrendStrongBullish TrendLabel = "strong bullish"
	// TrendBullish means close > SMA_10 without the SMA_10 > SMA_30 confirmation.
	TrendBullish TrendLabel = "bullish"
	// TrendStrongBearish means close < SMA_10 < SMA_30.
	TrendStrongBearish TrendLabel = "strong bearish"
	// TrendBearish means close < SMA_10 without the SMA_10 < SMA_30 confirmation.
	TrendBearish TrendLabel = "bearish"
	// TrendSideways is the fallback when none of the directional rules match.
	TrendSideways TrendLabel = "sideways/neutral"
	// TrendInsufficientData is reported when SMA_10 or SMA_30 is undefined.
	TrendInsufficientData TrendLabel = "insufficient data"
)

// RSISignal is the momentum reading of the latest RSI value.
type RSISignal string

const (
	RSISignalOverbought RSISignal = "overbought"
	RSISignalOversold   RSISignal = "oversold"
	RSISignalNeutral    RSISignal = "neutral"
)

// MACDSignal is the crossover state of MACD against its signal line.
type MACDSignal string

const (
	MACDSignalBullish MACDSignal = "bullish crossover state"
	// MACDSignalBearish covers MACD < Signal and the MACD == Signal tie.
	MACDSignalBearish          MACDSignal = "bearish crossover state"
	MACDSignalInsufficientData MACDSignal = "insufficient data"
)

// IsBullish reports whether the label is one of the two bullish trends.
func (t TrendLabel) IsBullish() bool {
	return t == TrendStrongBullish || t == TrendBullish
}

// IsBearish reports whether the label is one of the two bearish trends.
func (t TrendLabel) IsBearish() bool {
	return t == TrendStrongBearish || t == TrendBearish
}
