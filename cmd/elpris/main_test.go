package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/icodeforyou/elpris-go/hours"
	"github.com/icodeforyou/elpris-go/types"
)

type fakeProvider struct {
	prices []float64
}

func (f fakeProvider) GetPrices(ctx context.Context, area types.Area, date time.Time) ([]types.PriceSample, error) {
	if hours.DateString(date) != "2025-10-14" {
		return []types.PriceSample{}, nil
	}
	samples := make([]types.PriceSample, len(f.prices))
	for i, p := range f.prices {
		start := date.Add(time.Duration(i) * time.Hour)
		samples[i] = types.PriceSample{SEKPerKWh: p, TimeStart: start, TimeEnd: start.Add(time.Hour)}
	}
	return samples, nil
}

func runApp(t *testing.T, prices []float64, args ...string) string {
	t.Helper()
	t.Chdir(t.TempDir())
	var out bytes.Buffer
	a := app{
		out:    &out,
		errOut: io.Discard,
		providers: func(names []string) ([]types.PriceProvider, error) {
			return []types.PriceProvider{fakeProvider{prices: prices}}, nil
		},
	}
	if err := a.run(context.Background(), args); err != nil {
		t.Fatalf("run() unexpected error: %v", err)
	}
	return out.String()
}

func TestRunMessages(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"help", []string{"--help"}, "Usage: elpris"},
		{"missing zone", []string{"--date", "2025-10-14"}, "Usage: elpris"},
		{"invalid zone", []string{"--zone", "SE7"}, "Ogiltig zon: SE7\n"},
		{"invalid date", []string{"--zone", "SE3", "--date", "14/10/2025"}, "Ogiltigt datum: 14/10/2025\n"},
		{"invalid charging", []string{"--zone", "SE3", "--charging", "xh"}, "Ogiltigt laddfönster: xh\n"},
		{"invalid format", []string{"--zone", "SE3", "--format", "xml"}, "Ogiltigt format: xml\n"},
		{"no prices", []string{"--zone", "SE3", "--date", "2025-10-01"}, "Inga priser tillgängliga\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := runApp(t, []float64{1}, tt.args...)
			if !strings.HasPrefix(out, tt.expected) {
				t.Errorf("expected output starting with %q, got %q", tt.expected, out)
			}
		})
	}
}

func TestRunText(t *testing.T) {
	out := runApp(t, []float64{0.30, 0.12, 0.25},
		"--zone", "se3", "--date", "2025-10-14", "--sorted", "--charging", "2h")

	expected := `00-01 30,00 öre
02-03 25,00 öre
01-02 12,00 öre
Medelpris: 22,33 öre
Lägsta pris: 12,00 öre (01-02)
Högsta pris: 30,00 öre (00-01)
Påbörja laddning kl 01:00
Medelpris för fönster: 18,50 öre
Fönster: 01-03
`
	if out != expected {
		t.Errorf("unexpected output:\n%s\nexpected:\n%s", out, expected)
	}
}

func TestRunJSON(t *testing.T) {
	out := runApp(t, []float64{0.30, 0.12, 0.25}, "--zone", "SE4", "--date", "2025-10-14", "--format", "json")

	var doc struct {
		Area   string `json:"area"`
		Prices []any  `json:"prices"`
		Window any    `json:"window"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if doc.Area != "SE4" || len(doc.Prices) != 3 || doc.Window != nil {
		t.Errorf("unexpected document %s", out)
	}
}
