package nordpool

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/icodeforyou/elpris-go/convert"
	"github.com/icodeforyou/elpris-go/hours"
	"github.com/icodeforyou/elpris-go/types"
)

type Nordpool struct {
	baseURL string
	client  *http.Client
}

func New() Nordpool {
	return NewWithBaseURL(DefaultBaseURL)
}

func NewWithBaseURL(baseURL string) Nordpool {
	return Nordpool{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (n Nordpool) String() string {
	return "nordpool"
}

// GetPrices returns day-ahead prices in SEK for one delivery day. Nord Pool
// quotes in UTC, the intervals are moved to Swedish time so hours line up
// with other providers. EUR prices are derived from the exchange rate when
// the response carries one.
func (n Nordpool) GetPrices(ctx context.Context, area types.Area, date time.Time) ([]types.PriceSample, error) {
	url := fmt.Sprintf("%s/api/DayAheadPrices?date=%s&market=DayAhead&deliveryArea=%s&currency=SEK",
		n.baseURL,
		date.Format(hours.DateLayout),
		area)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}
	defer resp.Body.Close()

	// No content is what Nord Pool answers before the auction is published
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		return []types.PriceSample{}, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var data nordpoolData
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	prices := make([]types.PriceSample, 0, len(data.MultiAreaEntries))
	for _, entry := range data.MultiAreaEntries {
		price, ok := entry.EntryPerArea[area.String()]
		if !ok {
			continue
		}
		sek := convert.FourDecimals(convert.MWh2KWh(price))
		var eur float64
		if data.ExchangeRate > 0 {
			eur = convert.FourDecimals(sek / data.ExchangeRate)
		}
		prices = append(prices, types.PriceSample{
			SEKPerKWh: sek,
			EURPerKWh: eur,
			EXR:       data.ExchangeRate,
			TimeStart: hours.LocationStockholm(entry.DeliveryStart),
			TimeEnd:   hours.LocationStockholm(entry.DeliveryEnd),
		})
	}

	return prices, nil
}
