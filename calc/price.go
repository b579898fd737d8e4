package calc

import "time"

// Öre per SEK
const OrePerSEK = 100

func Ore(sek float64) float64 {
	return sek * OrePerSEK
}

// BuyPrice is the cost in SEK for kWh bought at a spot price, with energy tax
// and grid transfer fee on top.
func BuyPrice(kWh, price, energyTax, gridFee float64) float64 {
	return kWh * (price + energyTax + gridFee)
}

// ChargeCost is the cost of drawing powerKW during d at an average spot price.
func ChargeCost(powerKW float64, d time.Duration, avgPrice, energyTax, gridFee float64) float64 {
	return BuyPrice(powerKW*d.Hours(), avgPrice, energyTax, gridFee)
}
