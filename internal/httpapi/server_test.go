package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finley/internal/domain"
)

// fakeReader serves canned records and optionally fails.
type fakeReader struct {
	records map[string][]domain.ForecastRecord
	err     error
}

func (f *fakeReader) Forecasts(_ context.Context, ticker, horizon string) ([]domain.ForecastRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.ForecastRecord
	for _, r := range f.records[ticker] {
		if horizon == "" || r.Horizon == horizon {
			out = append(out, r)
		}
	}
	return out, nil
}

func serve(t *testing.T, reader *fakeReader, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	NewServer(reader).Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleForecast(t *testing.T) {
	d := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	reader := &fakeReader{records: map[string][]domain.ForecastRecord{
		"AAPL": {
			{Ticker: "AAPL", Date: d, Price: 190.5, Horizon: "monthly"},
			{Ticker: "AAPL", Date: d.AddDate(0, 0, 1), Price: 191.25, Horizon: "monthly"},
		},
	}}

	rec := serve(t, reader, "/api/forecast/AAPL?horizon=monthly")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var entries []forecastEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Date != "2024-01-05" || entries[0].Price != 190.5 {
		t.Errorf("entry 0 = %+v", entries[0])
	}
}

func TestHandleForecastLowercaseTicker(t *testing.T) {
	d := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	reader := &fakeReader{records: map[string][]domain.ForecastRecord{
		"AAPL": {{Ticker: "AAPL", Date: d, Price: 1, Horizon: "monthly"}},
	}}

	rec := serve(t, reader, "/api/forecast/aapl")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var entries []forecastEntry
	json.Unmarshal(rec.Body.Bytes(), &entries)
	if len(entries) != 1 {
		t.Errorf("ticker should be case-insensitive, got %d entries", len(entries))
	}
}

func TestHandleForecastAbsentTicker(t *testing.T) {
	rec := serve(t, &fakeReader{}, "/api/forecast/NOPE")
	if rec.Code != http.StatusOK {
		t.Fatalf("absence of data must not be an error, status = %d", rec.Code)
	}

	var entries []forecastEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries, want empty array", len(entries))
	}
}

func TestHandleForecastUnknownHorizon(t *testing.T) {
	rec := serve(t, &fakeReader{}, "/api/forecast/AAPL?horizon=decade")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown horizon status = %d, want 400", rec.Code)
	}
}

func TestHandleForecastStoreError(t *testing.T) {
	rec := serve(t, &fakeReader{err: errors.New("db down")}, "/api/forecast/AAPL")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("store failure status = %d, want 500", rec.Code)
	}
}
