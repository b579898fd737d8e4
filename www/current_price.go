package www

import (
	"context"
	"time"

	"github.com/icodeforyou/elpris-go/calc"
	"github.com/icodeforyou/elpris-go/hours"
	"github.com/icodeforyou/elpris-go/types"
	"github.com/icodeforyou/elpris-go/types/maybe"
)

type CurrentPrice struct {
	Area  types.Area
	Range string
	Ore   maybe.Maybe[float64]
	At    string
}

// currentPrice looks up the sample covering now.
func currentPrice(ctx context.Context, src PriceSource, area types.Area, now time.Time) (CurrentPrice, error) {
	cp := CurrentPrice{Area: area, At: hours.LocationStockholm(now).Format("15:04")}

	samples, err := src.Day(ctx, area, now)
	if err != nil {
		return cp, err
	}

	for _, s := range samples {
		if !now.Before(s.TimeStart) && now.Before(s.TimeEnd) {
			cp.Range = hours.FormatRange(s.TimeStart, s.TimeEnd)
			cp.Ore = maybe.Some(calc.Ore(s.SEKPerKWh))
			break
		}
	}

	return cp, nil
}
