package convert

import (
	"math"
)

func TwoDecimals(number float64) float64 {
	return RoundFloat64(number, 2)
}

func FourDecimals(number float64) float64 {
	return RoundFloat64(number, 4)
}

func RoundFloat64(number float64, decimals int) float64 {
	return math.Round(number*math.Pow10(decimals)) / math.Pow10(decimals)
}

// MWh2KWh converts a price per MWh to a price per kWh.
func MWh2KWh(pricePerMWh float64) float64 {
	return pricePerMWh / 1e3
}
