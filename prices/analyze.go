package prices

import (
	"github.com/icodeforyou/elpris-go/optimize"
	"github.com/icodeforyou/elpris-go/types"
	"github.com/icodeforyou/elpris-go/types/maybe"
)

// Options controls which optional parts Analyze produces.
type Options struct {
	WindowLength int  // Number of consecutive samples to find the cheapest window for, 0 skips it
	Sorted       bool // Order the listing by price instead of time
}

// Analysis is the result of Analyze. Listing keeps the input order unless
// Options.Sorted was set.
type Analysis struct {
	Listing       []types.PriceSample
	Hourly        []HourlyAverage
	Mean          maybe.Maybe[float64]
	Cheapest      maybe.Maybe[HourlyAverage]
	MostExpensive maybe.Maybe[HourlyAverage]
	Window        maybe.Maybe[optimize.Window]
}

// Analyze runs the whole pipeline over a chronological series. Extremes and
// mean are computed over hourly averages, the window over the raw samples.
func Analyze(samples []types.PriceSample, opts Options) Analysis {
	hourly := HourlyAverages(samples)
	cheapest, mostExpensive := Extremes(hourly)

	listing := samples
	if opts.Sorted {
		listing = SortedByPriceDesc(samples)
	}

	window := maybe.None[optimize.Window]()
	if opts.WindowLength > 0 {
		window = optimize.CheapestWindow(samples, opts.WindowLength)
	}

	return Analysis{
		Listing:       listing,
		Hourly:        hourly,
		Mean:          Mean(hourly),
		Cheapest:      cheapest,
		MostExpensive: mostExpensive,
		Window:        window,
	}
}

func (a Analysis) IsEmpty() bool {
	return len(a.Listing) == 0
}
