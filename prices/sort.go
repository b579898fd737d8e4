package prices

import (
	"cmp"
	"slices"

	"github.com/icodeforyou/elpris-go/types"
)

// SortedByPriceDesc returns a copy ordered by price, most expensive first,
// then by start time.
func SortedByPriceDesc(samples []types.PriceSample) []types.PriceSample {
	sorted := slices.Clone(samples)
	slices.SortStableFunc(sorted, func(a, b types.PriceSample) int {
		if c := cmp.Compare(b.SEKPerKWh, a.SEKPerKWh); c != 0 {
			return c
		}
		return a.TimeStart.Compare(b.TimeStart)
	})
	return sorted
}
