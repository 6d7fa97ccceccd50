package types

import "strconv"

// IndicatorType names a derived column of an indicator table.
type IndicatorType string

const (
	IndicatorTypeSMA10         IndicatorType = "sma_10"
	IndicatorTypeSMA30         IndicatorType = "sma_30"
	IndicatorTypeSMA60         IndicatorType = "sma_60"
	IndicatorTypeVolatility    IndicatorType = "volatility"
	IndicatorTypeRSI           IndicatorType = "rsi"
	IndicatorTypeMACD          IndicatorType = "macd"
	IndicatorTypeMACDSignal    IndicatorType = "macd_signal"
	IndicatorTypeMACDHistogram IndicatorType = "macd_histogram"
	IndicatorTypeBBMiddle      IndicatorType = "bb_middle"
	IndicatorTypeBBUpper       IndicatorType = "bb_upper"
	IndicatorTypeBBLower       IndicatorType = "bb_lower"
	IndicatorTypeDailyReturn   IndicatorType = "daily_return"
)

// SMAType returns the column name of a simple moving average with the given window.
func SMAType(window int) IndicatorType {
	switch window {
	case 10:
		return IndicatorTypeSMA10
	case 30:
		return IndicatorTypeSMA30
	case 60:
		return IndicatorTypeSMA60
	default:
		return IndicatorType("sma_" + strconv.Itoa(window))
	}
}
