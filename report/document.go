package report

import (
	"time"

	"github.com/icodeforyou/elpris-go/calc"
	"github.com/icodeforyou/elpris-go/hours"
	"github.com/icodeforyou/elpris-go/optimize"
	"github.com/icodeforyou/elpris-go/prices"
	"github.com/icodeforyou/elpris-go/types"
	"github.com/icodeforyou/elpris-go/types/maybe"
)

type Row struct {
	Range     string    `json:"range" yaml:"range"` // HH-HH
	TimeStart time.Time `json:"time_start" yaml:"time_start"`
	TimeEnd   time.Time `json:"time_end" yaml:"time_end"`
	SEKPerKWh float64   `json:"sek_per_kwh" yaml:"sek_per_kwh"`
	Ore       float64   `json:"ore_per_kwh" yaml:"ore_per_kwh"`
}

type Extreme struct {
	Range     string  `json:"range" yaml:"range"`
	Hour      uint8   `json:"hour" yaml:"hour"`
	SEKPerKWh float64 `json:"sek_per_kwh" yaml:"sek_per_kwh"`
	Ore       float64 `json:"ore_per_kwh" yaml:"ore_per_kwh"`
	Samples   int     `json:"samples" yaml:"samples"`
}

type ChargingWindow struct {
	StartAt      string    `json:"start_at" yaml:"start_at"` // HH:MM
	Range        string    `json:"range" yaml:"range"`
	Length       int       `json:"length" yaml:"length"`
	TimeStart    time.Time `json:"time_start" yaml:"time_start"`
	TimeEnd      time.Time `json:"time_end" yaml:"time_end"`
	AveragePrice float64   `json:"average_sek_per_kwh" yaml:"average_sek_per_kwh"`
	AverageOre   float64   `json:"average_ore_per_kwh" yaml:"average_ore_per_kwh"`
	// Spot price plus tax and grid fee for the configured charging power, SEK
	EstimatedCost maybe.Maybe[float64] `json:"estimated_cost_sek" yaml:"estimated_cost_sek"`
}

// Document is an analysis prepared for presentation. All prices are per kWh.
type Document struct {
	Area          types.Area                  `json:"area" yaml:"area"`
	Date          string                      `json:"date" yaml:"date"`
	Prices        []Row                       `json:"prices" yaml:"prices"`
	Mean          maybe.Maybe[float64]        `json:"mean_sek_per_kwh" yaml:"mean_sek_per_kwh"`
	MeanOre       maybe.Maybe[float64]        `json:"mean_ore_per_kwh" yaml:"mean_ore_per_kwh"`
	Cheapest      maybe.Maybe[Extreme]        `json:"cheapest" yaml:"cheapest"`
	MostExpensive maybe.Maybe[Extreme]        `json:"most_expensive" yaml:"most_expensive"`
	Window        maybe.Maybe[ChargingWindow] `json:"window" yaml:"window"`
}

func NewDocument(area types.Area, date time.Time, a prices.Analysis) Document {
	rows := make([]Row, len(a.Listing))
	for i, s := range a.Listing {
		rows[i] = Row{
			Range:     hours.FormatRange(s.TimeStart, s.TimeEnd),
			TimeStart: s.TimeStart,
			TimeEnd:   s.TimeEnd,
			SEKPerKWh: s.SEKPerKWh,
			Ore:       calc.Ore(s.SEKPerKWh),
		}
	}

	return Document{
		Area:          area,
		Date:          hours.DateString(date),
		Prices:        rows,
		Mean:          a.Mean,
		MeanOre:       maybe.Map(a.Mean, calc.Ore),
		Cheapest:      maybe.Map(a.Cheapest, newExtreme),
		MostExpensive: maybe.Map(a.MostExpensive, newExtreme),
		Window:        maybe.Map(a.Window, newChargingWindow),
	}
}

func newExtreme(h prices.HourlyAverage) Extreme {
	return Extreme{
		Range:     hours.FormatRange(h.TimeStart, h.TimeEnd),
		Hour:      h.Hour,
		SEKPerKWh: h.SEKPerKWh,
		Ore:       calc.Ore(h.SEKPerKWh),
		Samples:   h.Count,
	}
}

func newChargingWindow(w optimize.Window) ChargingWindow {
	return ChargingWindow{
		StartAt:      w.First.TimeStart.Format("15:04"),
		Range:        hours.FormatRange(w.First.TimeStart, w.Last.TimeEnd),
		Length:       w.Length,
		TimeStart:    w.First.TimeStart,
		TimeEnd:      w.Last.TimeEnd,
		AveragePrice: w.AveragePrice,
		AverageOre:   calc.Ore(w.AveragePrice),
	}
}

// EstimateChargeCost adds the cost of charging at powerKW through the whole
// window, energy tax and grid fee included.
func (d *Document) EstimateChargeCost(powerKW, energyTax, gridFee float64) {
	w, ok := d.Window.Get()
	if !ok || powerKW <= 0 {
		return
	}
	cost := calc.ChargeCost(powerKW, w.TimeEnd.Sub(w.TimeStart), w.AveragePrice, energyTax, gridFee)
	w.EstimatedCost = maybe.Some(cost)
	d.Window = maybe.Some(w)
}
