package www

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/icodeforyou/elpris-go/config"
	"github.com/icodeforyou/elpris-go/hours"
	"github.com/icodeforyou/elpris-go/logging"
	"github.com/icodeforyou/elpris-go/source"
	"github.com/icodeforyou/elpris-go/types"
)

type fakeSource struct {
	samples []types.PriceSample
	err     error
	area    types.Area
}

func (f *fakeSource) Day(ctx context.Context, area types.Area, date time.Time) ([]types.PriceSample, error) {
	f.area = area
	return f.samples, f.err
}

func (f *fakeSource) TwoDays(ctx context.Context, area types.Area, date time.Time) ([]types.PriceSample, error) {
	f.area = area
	return f.samples, f.err
}

type fakeLogs []logging.LogEntry

func (f fakeLogs) GetLogEntries(ctx context.Context, minLvl slog.Level, page, pageSize int) ([]logging.LogEntry, error) {
	return f, nil
}

func testSamples(t *testing.T) []types.PriceSample {
	t.Helper()
	date, err := hours.ParseDate("2025-10-14")
	if err != nil {
		t.Fatal(err)
	}
	var samples []types.PriceSample
	for i, p := range []float64{0.8, 0.1, 0.2, 0.9} {
		start := date.Add(time.Duration(i) * time.Hour)
		samples = append(samples, types.PriceSample{SEKPerKWh: p, TimeStart: start, TimeEnd: start.Add(time.Hour)})
	}
	return samples
}

func newTestServer(t *testing.T, src PriceSource, refresh func()) *Server {
	t.Helper()
	cnfg := &config.AppConfig{
		EnergyPrice: config.AppConfigEnergyPrice{Area: "SE3"},
	}
	logs := fakeLogs{{Timestamp: time.Now(), Level: int(slog.LevelWarn), Message: "provider timed out", Attrs: "[]"}}
	s, err := NewServer(cnfg, src, logs, refresh)
	if err != nil {
		t.Fatalf("NewServer() unexpected error: %v", err)
	}
	return s
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestAnalysisHandler(t *testing.T) {
	src := &fakeSource{samples: testSamples(t)}
	s := newTestServer(t, src, nil)

	rec := get(t, s, "/api/analysis?zone=se1&date=2025-10-14&charging=2h")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected json content type, got %s", ct)
	}
	if src.area != types.AreaSE1 {
		t.Errorf("expected zone SE1 to be used, got %s", src.area)
	}

	var doc struct {
		Area   string `json:"area"`
		Prices []any  `json:"prices"`
		Window struct {
			StartAt string `json:"start_at"`
			Range   string `json:"range"`
		} `json:"window"`
		MostExpensive struct {
			Range string `json:"range"`
		} `json:"most_expensive"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if doc.Area != "SE1" || len(doc.Prices) != 4 {
		t.Errorf("unexpected document %s", rec.Body.String())
	}
	if doc.Window.StartAt != "01:00" || doc.Window.Range != "01-03" {
		t.Errorf("unexpected window %+v", doc.Window)
	}
	if doc.MostExpensive.Range != "03-04" {
		t.Errorf("unexpected most expensive %+v", doc.MostExpensive)
	}
}

func TestAnalysisHandlerErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		src    *fakeSource
		status int
	}{
		{"invalid zone", "/api/analysis?zone=SE9", &fakeSource{}, http.StatusBadRequest},
		{"invalid date", "/api/analysis?date=2025-13-40", &fakeSource{}, http.StatusBadRequest},
		{"invalid charging", "/api/analysis?charging=abc", &fakeSource{}, http.StatusBadRequest},
		{"invalid sorted", "/api/analysis?sorted=maybe", &fakeSource{}, http.StatusBadRequest},
		{"no prices", "/api/analysis", &fakeSource{err: source.ErrNoPrices}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newTestServer(t, tt.src, nil), tt.target)
			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestIndexHandler(t *testing.T) {
	s := newTestServer(t, &fakeSource{samples: testSamples(t)}, nil)

	rec := get(t, s, "/?date=2025-10-14&charging=2h")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"Elpris SE3", "Lägsta pris: 10,00 öre (01-02)", "Påbörja laddning kl 01:00", "<td>03-04</td>"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected page to contain %q", want)
		}
	}
}

func TestIndexHandlerNoPrices(t *testing.T) {
	s := newTestServer(t, &fakeSource{err: source.ErrNoPrices}, nil)

	rec := get(t, s, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), noPricesMessage) {
		t.Errorf("expected the no prices message")
	}
}

func TestRefreshHandler(t *testing.T) {
	done := make(chan struct{})
	s := newTestServer(t, &fakeSource{}, func() { close(done) })

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresh task was not run")
	}

	if rec := get(t, s, "/api/refresh"); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for GET, got %d", rec.Code)
	}
}

func TestLogHandler(t *testing.T) {
	rec := get(t, newTestServer(t, &fakeSource{}, nil), "/log?page=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "provider timed out") || !strings.Contains(body, "WARN") {
		t.Errorf("expected the log entry on the page, got %s", body)
	}
	if !strings.Contains(body, "page=3") {
		t.Errorf("expected a link to the next page")
	}
}

func TestStaticFiles(t *testing.T) {
	if rec := get(t, newTestServer(t, &fakeSource{}, nil), "/static/style.css"); rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequestId(t *testing.T) {
	s := newTestServer(t, &fakeSource{err: source.ErrNoPrices}, nil)

	rec := get(t, s, "/api/analysis")
	if rec.Header().Get(requestIdHeader) == "" {
		t.Errorf("expected a generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/analysis", nil)
	req.Header.Set(requestIdHeader, "abc-123")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIdHeader); got != "abc-123" {
		t.Errorf("expected the client's request id, got %q", got)
	}
}

func TestCurrentPrice(t *testing.T) {
	samples := testSamples(t)
	src := &fakeSource{samples: samples}

	cp, err := currentPrice(context.Background(), src, types.AreaSE3, samples[2].TimeStart.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("currentPrice() unexpected error: %v", err)
	}
	ore, ok := cp.Ore.Get()
	if !ok || cp.Range != "02-03" || ore < 19.99 || ore > 20.01 {
		t.Errorf("unexpected current price %+v", cp)
	}

	cp, _ = currentPrice(context.Background(), src, types.AreaSE3, samples[0].TimeStart.Add(-time.Minute))
	if cp.Ore.IsValid() {
		t.Errorf("expected no price before the first sample")
	}
}
