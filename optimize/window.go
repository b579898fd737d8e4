package optimize

import (
	"github.com/icodeforyou/elpris-go/types"
	"github.com/icodeforyou/elpris-go/types/maybe"
)

// Window is a run of consecutive price samples.
type Window struct {
	Start        int               `json:"start" yaml:"start"`   // Index of the first sample
	Length       int               `json:"length" yaml:"length"` // Number of samples
	Sum          float64           `json:"sum" yaml:"sum"`
	AveragePrice float64           `json:"average_price" yaml:"average_price"`
	First        types.PriceSample `json:"first" yaml:"first"`
	Last         types.PriceSample `json:"last" yaml:"last"`
}

// Running sums drift. Candidates within this of the best are summed again
// from scratch before they are compared.
const tolerance = 1e-9

// CheapestWindow finds the n consecutive samples with the lowest total price
// using a running sum. The earliest window wins a tie. None is returned if n
// is not positive or longer than the series.
func CheapestWindow(samples []types.PriceSample, n int) maybe.Maybe[Window] {
	if n <= 0 || n > len(samples) {
		return maybe.None[Window]()
	}

	sum := 0.0
	for _, s := range samples[:n] {
		sum += s.SEKPerKWh
	}

	bestSum, bestStart := sum, 0
	for i := n; i < len(samples); i++ {
		sum += samples[i].SEKPerKWh
		sum -= samples[i-n].SEKPerKWh
		if sum >= bestSum+tolerance {
			continue
		}
		start := i - n + 1
		sum = windowSum(samples, start, n)
		if sum < bestSum {
			bestSum, bestStart = sum, start
		}
	}

	return maybe.Some(newWindow(samples, bestStart, n))
}

func windowSum(samples []types.PriceSample, start, n int) float64 {
	sum := 0.0
	for _, s := range samples[start : start+n] {
		sum += s.SEKPerKWh
	}
	return sum
}

// newWindow sums the winning window again so the reported sum carries no
// running sum drift.
func newWindow(samples []types.PriceSample, start, n int) Window {
	sum := windowSum(samples, start, n)
	return Window{
		Start:        start,
		Length:       n,
		Sum:          sum,
		AveragePrice: sum / float64(n),
		First:        samples[start],
		Last:         samples[start+n-1],
	}
}
