package types

import (
	"context"
	"time"
)

// A single spot price for one interval, as published for a pricing area.
type PriceSample struct {
	SEKPerKWh float64 `json:"sek_per_kwh" yaml:"sek_per_kwh"`
	EURPerKWh float64 `json:"eur_per_kwh" yaml:"eur_per_kwh"`
	// Exchange rate EUR -> SEK
	EXR float64 `json:"exr" yaml:"exr"`
	// Inclusive, keeps the publisher's zone offset
	TimeStart time.Time `json:"time_start" yaml:"time_start"`
	TimeEnd   time.Time `json:"time_end" yaml:"time_end"`
}

type PriceProvider interface {
	GetPrices(ctx context.Context, area Area, date time.Time) ([]PriceSample, error)
}
