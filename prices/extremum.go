package prices

import (
	"github.com/icodeforyou/elpris-go/types/maybe"
)

// Cheapest returns the hour with the lowest average price, the earliest one
// if several share it.
func Cheapest(avgs []HourlyAverage) maybe.Maybe[HourlyAverage] {
	return selectBy(avgs, func(candidate, best HourlyAverage) bool {
		return candidate.SEKPerKWh < best.SEKPerKWh
	})
}

// MostExpensive returns the hour with the highest average price, the
// earliest one if several share it.
func MostExpensive(avgs []HourlyAverage) maybe.Maybe[HourlyAverage] {
	return selectBy(avgs, func(candidate, best HourlyAverage) bool {
		return candidate.SEKPerKWh > best.SEKPerKWh
	})
}

// Extremes returns the cheapest and the most expensive hour in one call.
func Extremes(avgs []HourlyAverage) (maybe.Maybe[HourlyAverage], maybe.Maybe[HourlyAverage]) {
	return Cheapest(avgs), MostExpensive(avgs)
}

// Mean of the hourly averages.
func Mean(avgs []HourlyAverage) maybe.Maybe[float64] {
	if len(avgs) == 0 {
		return maybe.None[float64]()
	}
	sum := 0.0
	for _, a := range avgs {
		sum += a.SEKPerKWh
	}
	return maybe.Some(sum / float64(len(avgs)))
}

// selectBy keeps the current best unless better reports a strict
// improvement, or the prices are equal and the candidate starts earlier.
func selectBy(avgs []HourlyAverage, better func(candidate, best HourlyAverage) bool) maybe.Maybe[HourlyAverage] {
	if len(avgs) == 0 {
		return maybe.None[HourlyAverage]()
	}

	best := avgs[0]
	for _, a := range avgs[1:] {
		if better(a, best) ||
			(a.SEKPerKWh == best.SEKPerKWh && a.TimeStart.Before(best.TimeStart)) {
			best = a
		}
	}

	return maybe.Some(best)
}
