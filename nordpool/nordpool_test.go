package nordpool

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/icodeforyou/elpris-go/hours"
	"github.com/icodeforyou/elpris-go/types"
)

const response = `{
	"deliveryDateCET": "2025-10-14",
	"version": 3,
	"deliveryAreas": ["SE3"],
	"market": "DayAhead",
	"currency": "SEK",
	"exchangeRate": 11.0,
	"multiAreaEntries": [
		{"deliveryStart":"2025-10-13T22:00:00Z","deliveryEnd":"2025-10-13T22:15:00Z","entryPerArea":{"SE3":550.0}},
		{"deliveryStart":"2025-10-13T22:15:00Z","deliveryEnd":"2025-10-13T22:30:00Z","entryPerArea":{"SE3":1234.56}},
		{"deliveryStart":"2025-10-13T22:30:00Z","deliveryEnd":"2025-10-13T22:45:00Z","entryPerArea":{"SE4":99.0}}
	]
}`

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestGetPrices(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(response))
	}))
	defer srv.Close()

	date, _ := hours.ParseDate("2025-10-14")
	prices, err := NewWithBaseURL(srv.URL).GetPrices(context.Background(), types.AreaSE3, date)
	if err != nil {
		t.Fatalf("GetPrices() unexpected error: %v", err)
	}

	if want := "date=2025-10-14&market=DayAhead&deliveryArea=SE3&currency=SEK"; gotQuery != want {
		t.Errorf("expected query %s, got %s", want, gotQuery)
	}
	if len(prices) != 2 {
		t.Fatalf("expected 2 prices for SE3, got %d", len(prices))
	}

	tests := []struct {
		sek float64
		eur float64
		min int
	}{
		{0.55, 0.05, 0},
		{1.2346, 0.1122, 15},
	}
	for i, tt := range tests {
		p := prices[i]
		if !almostEqual(p.SEKPerKWh, tt.sek) {
			t.Errorf("price %d: expected SEK %v, got %v", i, tt.sek, p.SEKPerKWh)
		}
		if !almostEqual(p.EURPerKWh, tt.eur) {
			t.Errorf("price %d: expected EUR %v, got %v", i, tt.eur, p.EURPerKWh)
		}
		if p.TimeStart.Hour() != 0 || p.TimeStart.Minute() != tt.min {
			t.Errorf("price %d: expected start 00:%02d Stockholm time, got %v", i, tt.min, p.TimeStart)
		}
		if p.EXR != 11.0 {
			t.Errorf("price %d: expected EXR 11, got %v", i, p.EXR)
		}
	}
}

func TestGetPricesNotPublished(t *testing.T) {
	for _, status := range []int{http.StatusNoContent, http.StatusNotFound} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		prices, err := NewWithBaseURL(srv.URL).GetPrices(context.Background(), types.AreaSE3, hours.Today())
		srv.Close()
		if err != nil {
			t.Fatalf("status %d: unexpected error: %v", status, err)
		}
		if prices == nil || len(prices) != 0 {
			t.Errorf("status %d: expected an empty slice, got %v", status, prices)
		}
	}
}

func TestGetPricesBadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	if _, err := NewWithBaseURL(srv.URL).GetPrices(context.Background(), types.AreaSE3, hours.Today()); err == nil {
		t.Errorf("expected a decode error")
	}
}
