package prices

import (
	"slices"

	"github.com/icodeforyou/elpris-go/types"
)

// HourlyAverage is the mean price of all samples starting within the same
// hour of day. Everything but SEKPerKWh is copied from the first sample of
// the hour.
type HourlyAverage struct {
	types.PriceSample `yaml:",inline"`

	Hour  uint8 `json:"hour" yaml:"hour"`
	Count int   `json:"count" yaml:"count"` // Number of samples in the hour
}

// HourlyAverages groups samples by the hour of day of their start time and
// returns one average per hour present, in ascending hour order.
//
// The key is the hour of day only, samples for 05:00 today and 05:00
// tomorrow end up in the same bucket.
func HourlyAverages(samples []types.PriceSample) []HourlyAverage {
	type bucket struct {
		first types.PriceSample
		sum   float64
		count int
	}

	buckets := make(map[uint8]*bucket)
	for _, s := range samples {
		h := uint8(s.TimeStart.Hour())
		b, ok := buckets[h]
		if !ok {
			b = &bucket{first: s}
			buckets[h] = b
		}
		b.sum += s.SEKPerKWh
		b.count++
	}

	keys := make([]uint8, 0, len(buckets))
	for h := range buckets {
		keys = append(keys, h)
	}
	slices.Sort(keys)

	result := make([]HourlyAverage, 0, len(keys))
	for _, h := range keys {
		b := buckets[h]
		avg := HourlyAverage{PriceSample: b.first, Hour: h, Count: b.count}
		avg.SEKPerKWh = b.sum / float64(b.count)
		result = append(result, avg)
	}

	return result
}
