package optimize

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/icodeforyou/elpris-go/types"
)

func series(prices ...float64) []types.PriceSample {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.FixedZone("CET", 3600))
	samples := make([]types.PriceSample, len(prices))
	for i, p := range prices {
		samples[i] = types.PriceSample{
			SEKPerKWh: p,
			TimeStart: start.Add(time.Duration(i) * time.Hour),
			TimeEnd:   start.Add(time.Duration(i+1) * time.Hour),
		}
	}
	return samples
}

func TestCheapestWindow(t *testing.T) {
	tests := []struct {
		name      string
		prices    []float64
		n         int
		wantStart int
		wantSum   float64
	}{
		{name: "picks the cheapest pair", prices: []float64{1.0, 0.5, 0.2, 0.8}, n: 2, wantStart: 1, wantSum: 0.7},
		{name: "whole series", prices: []float64{1.0, 0.5, 0.2, 0.8}, n: 4, wantStart: 0, wantSum: 2.5},
		{name: "single sample", prices: []float64{1.0, 0.5, 0.2, 0.8}, n: 1, wantStart: 2, wantSum: 0.2},
		{name: "tie goes to earliest", prices: []float64{0.3, 0.1, 0.9, 0.1, 0.3}, n: 2, wantStart: 0, wantSum: 0.4},
		{name: "cheapest at the end", prices: []float64{2, 2, 2, 1, 1}, n: 2, wantStart: 3, wantSum: 2},
		{name: "negative prices", prices: []float64{0.1, -0.2, -0.3, 0.4}, n: 2, wantStart: 1, wantSum: -0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples := series(tt.prices...)
			w, ok := CheapestWindow(samples, tt.n).Get()
			if !ok {
				t.Fatalf("expected a window")
			}
			if w.Start != tt.wantStart {
				t.Errorf("got start %d, wanted %d", w.Start, tt.wantStart)
			}
			if !almostEqual(w.Sum, tt.wantSum) {
				t.Errorf("got sum %f, wanted %f", w.Sum, tt.wantSum)
			}
			if !almostEqual(w.AveragePrice, tt.wantSum/float64(tt.n)) {
				t.Errorf("got average %f, wanted %f", w.AveragePrice, tt.wantSum/float64(tt.n))
			}
			if w.Length != tt.n {
				t.Errorf("got length %d, wanted %d", w.Length, tt.n)
			}
			if w.First != samples[tt.wantStart] || w.Last != samples[tt.wantStart+tt.n-1] {
				t.Errorf("got first/last %v/%v, wanted samples %d and %d", w.First, w.Last, tt.wantStart, tt.wantStart+tt.n-1)
			}
		})
	}
}

func TestCheapestWindowNoResult(t *testing.T) {
	samples := series(1, 2, 3)
	for _, n := range []int{-1, 0, 4} {
		if w := CheapestWindow(samples, n); w.IsValid() {
			t.Errorf("n=%d expected no window, got %+v", n, w.Value())
		}
	}
	if w := CheapestWindow(nil, 1); w.IsValid() {
		t.Errorf("empty series expected no window")
	}
}

func TestCheapestWindowTieWithDecimals(t *testing.T) {
	// Both windows sum to the same float but the running sum reaches the
	// second one through additions and subtractions
	samples := series(0.1, 0.2, 0.7, 0.2, 0.1, 0.9)
	w := CheapestWindow(samples, 2).Value()
	if w.Start != 0 {
		t.Errorf("got start %d, wanted 0", w.Start)
	}
}

func TestCheapestWindowTinyDifference(t *testing.T) {
	tests := []struct {
		prices []float64
		n      int
		start  int
	}{
		{[]float64{5e-10, 0, 5e-10}, 1, 1},
		{[]float64{1, 1e-12, 2e-12, 1}, 1, 1},
		{[]float64{0.5, 0.5, 0.5 - 1e-12}, 2, 1},
	}

	for _, tt := range tests {
		samples := series(tt.prices...)
		w := CheapestWindow(samples, tt.n).Value()
		if w.Start != tt.start {
			t.Errorf("CheapestWindow(%v, %d) start = %d, wanted %d", tt.prices, tt.n, w.Start, tt.start)
		}
		for i := 0; i <= len(samples)-tt.n; i++ {
			if s := windowSum(samples, i, tt.n); s < w.Sum {
				t.Errorf("CheapestWindow(%v, %d): window at %d has sum %g < %g", tt.prices, tt.n, i, s, w.Sum)
			}
		}
	}
}

func TestCheapestWindowIsOptimal(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for round := 0; round < 200; round++ {
		prices := make([]float64, 1+rnd.Intn(96))
		for i := range prices {
			prices[i] = math.Round(rnd.Float64()*300-50) / 100
		}
		samples := series(prices...)
		n := 1 + rnd.Intn(len(prices))

		got := CheapestWindow(samples, n).Value()
		want := bruteForce(samples, n)

		for i := 0; i <= len(samples)-n; i++ {
			if s := windowSum(samples, i, n); s < got.Sum {
				t.Fatalf("round %d: window at %d has sum %f, lower than returned %f at %d", round, i, s, got.Sum, got.Start)
			}
		}
		if got.Start != want {
			t.Fatalf("round %d: got start %d, brute force found %d", round, got.Start, want)
		}
	}
}

// bruteForce recomputes every window from scratch and returns the first
// start with the lowest sum.
func bruteForce(samples []types.PriceSample, n int) int {
	bestSum, bestStart := math.Inf(1), -1
	for i := 0; i <= len(samples)-n; i++ {
		if sum := windowSum(samples, i, n); sum < bestSum {
			bestSum, bestStart = sum, i
		}
	}
	return bestStart
}

func almostEqual(f1 float64, f2 float64) bool {
	return math.Abs(f1-f2) < 1e-9
}
