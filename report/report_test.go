package report

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/icodeforyou/elpris-go/hours"
	"github.com/icodeforyou/elpris-go/prices"
	"github.com/icodeforyou/elpris-go/types"
	"gopkg.in/yaml.v3"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func testDocument(t *testing.T, window int) Document {
	t.Helper()
	date, err := hours.ParseDate("2025-10-14")
	if err != nil {
		t.Fatal(err)
	}
	var samples []types.PriceSample
	for i, p := range []float64{0.5, 0.2, 0.3, 0.9} {
		start := date.Add(time.Duration(i) * time.Hour)
		samples = append(samples, types.PriceSample{SEKPerKWh: p, TimeStart: start, TimeEnd: start.Add(time.Hour)})
	}
	a := prices.Analyze(samples, prices.Options{WindowLength: window})
	return NewDocument(types.AreaSE3, date, a)
}

func TestFormatDecimal(t *testing.T) {
	tests := []struct {
		value    float64
		expected string
	}{
		{0, "0,00"},
		{41.3, "41,30"},
		{7.126, "7,13"},
		{12345.678, "12345,68"},
	}

	for _, tt := range tests {
		if got := FormatDecimal(tt.value); got != tt.expected {
			t.Errorf("FormatDecimal(%v) = %q, expected %q", tt.value, got, tt.expected)
		}
	}
}

func TestWriteText(t *testing.T) {
	doc := testDocument(t, 2)
	doc.EstimateChargeCost(11, 0.5, 0.3)

	var buf bytes.Buffer
	if err := WriteText(&buf, doc); err != nil {
		t.Fatalf("WriteText() unexpected error: %v", err)
	}

	expected := `00-01 50,00 öre
01-02 20,00 öre
02-03 30,00 öre
03-04 90,00 öre
Medelpris: 47,50 öre
Lägsta pris: 20,00 öre (01-02)
Högsta pris: 90,00 öre (03-04)
Påbörja laddning kl 01:00
Medelpris för fönster: 25,00 öre
Fönster: 01-03
Uppskattad kostnad: 23,10 kr
`
	if got := buf.String(); got != expected {
		t.Errorf("unexpected text output:\n%s\nexpected:\n%s", got, expected)
	}
}

func TestWriteTextWithoutWindow(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, testDocument(t, 0)); err != nil {
		t.Fatalf("WriteText() unexpected error: %v", err)
	}
	if bytes.Contains(buf.Bytes(), []byte("Fönster")) {
		t.Errorf("expected no window lines, got:\n%s", buf.String())
	}
}

func TestEstimateChargeCost(t *testing.T) {
	doc := testDocument(t, 2)
	doc.EstimateChargeCost(11, 0.5, 0.3)
	w, _ := doc.Window.Get()
	cost, ok := w.EstimatedCost.Get()
	if !ok || !almostEqual(cost, 23.1) {
		t.Errorf("expected cost 23.1, got %v (%v)", cost, ok)
	}

	noWindow := testDocument(t, 0)
	noWindow.EstimateChargeCost(11, 0.5, 0.3)
	if noWindow.Window.IsValid() {
		t.Errorf("expected no window")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, testDocument(t, 0)); err != nil {
		t.Fatalf("WriteJSON() unexpected error: %v", err)
	}

	var decoded struct {
		Area     string           `json:"area"`
		Date     string           `json:"date"`
		Prices   []map[string]any `json:"prices"`
		Cheapest struct {
			Range string `json:"range"`
			Hour  int    `json:"hour"`
		} `json:"cheapest"`
		Window *map[string]any `json:"window"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	if decoded.Area != "SE3" || decoded.Date != "2025-10-14" {
		t.Errorf("unexpected area/date %s %s", decoded.Area, decoded.Date)
	}
	if len(decoded.Prices) != 4 {
		t.Errorf("expected 4 prices, got %d", len(decoded.Prices))
	}
	if decoded.Cheapest.Range != "01-02" || decoded.Cheapest.Hour != 1 {
		t.Errorf("unexpected cheapest %+v", decoded.Cheapest)
	}
	if decoded.Window != nil {
		t.Errorf("expected window to be null, got %v", *decoded.Window)
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteYAML(&buf, testDocument(t, 2)); err != nil {
		t.Fatalf("WriteYAML() unexpected error: %v", err)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid yaml: %v", err)
	}

	if decoded["area"] != "SE3" {
		t.Errorf("expected area SE3, got %v", decoded["area"])
	}
	window, ok := decoded["window"].(map[string]any)
	if !ok {
		t.Fatalf("expected a window mapping, got %T", decoded["window"])
	}
	if window["start_at"] != "01:00" || window["range"] != "01-03" {
		t.Errorf("unexpected window %v", window)
	}
	if window["estimated_cost_sek"] != nil {
		t.Errorf("expected no estimated cost, got %v", window["estimated_cost_sek"])
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.expected {
			t.Errorf("ParseFormat(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}
