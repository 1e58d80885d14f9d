package gather

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"finley/internal/domain"
)

// fakeSource serves canned bars per symbol and fails for symbols not in the
// map.
type fakeSource struct {
	bars map[string][]domain.Bar
}

func (f *fakeSource) FetchBars(_ context.Context, symbol string, _ domain.Horizon) ([]domain.Bar, error) {
	bars, ok := f.bars[symbol]
	if !ok {
		return nil, errors.New("unknown symbol")
	}
	return bars, nil
}

func dailyBars(n int, start time.Time) []domain.Bar {
	bars := make([]domain.Bar, n)
	for i := range bars {
		price := 100 + float64(i)
		bars[i] = domain.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      price, High: price, Low: price, Close: price,
			Volume: 1000,
		}
	}
	return bars
}

func TestFetchAllFaultIsolation(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	source := &fakeSource{bars: map[string][]domain.Bar{
		"GOOD": dailyBars(5, start),
	}}

	f := NewFetcher(source, 2, 0)
	out := f.FetchAll(context.Background(), []string{"GOOD", "BAD"}, domain.Horizons[2])

	if len(out) != 2 {
		t.Fatalf("result should have an entry per requested symbol, got %d", len(out))
	}
	if len(out["GOOD"]) != 5 {
		t.Errorf("GOOD series has %d bars, want 5", len(out["GOOD"]))
	}
	if len(out["BAD"]) != 0 {
		t.Errorf("failed symbol should yield an empty series, got %d bars", len(out["BAD"]))
	}
}

func TestFetchAllCancelledContextKeepsEntries(t *testing.T) {
	source := &fakeSource{bars: map[string][]domain.Bar{}}
	f := NewFetcher(source, 2, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := f.FetchAll(ctx, []string{"A", "B", "C"}, domain.Horizons[2])
	if len(out) != 3 {
		t.Errorf("cancelled fetch should still return an entry per symbol, got %d", len(out))
	}
}

func TestNormalizeOrdersAndDedupes(t *testing.T) {
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := []domain.Bar{
		{Timestamp: ts.AddDate(0, 0, 2), Close: 3},
		{Timestamp: ts, Close: 1},
		{Timestamp: ts.AddDate(0, 0, 2), Close: 99}, // duplicate timestamp
		{Timestamp: ts.AddDate(0, 0, 1), Close: math.Inf(1)},
	}

	s := normalize(bars)
	if len(s) != 3 {
		t.Fatalf("normalized series has %d bars, want 3", len(s))
	}
	for i := 1; i < len(s); i++ {
		if !s[i].Timestamp.After(s[i-1].Timestamp) {
			t.Fatal("timestamps not strictly ascending")
		}
	}
	if !math.IsNaN(s[1].Close) {
		t.Error("infinite close should be sanitized to NaN")
	}
	if s[2].Close != 3 {
		t.Errorf("duplicate timestamp should keep the first bar, close = %v", s[2].Close)
	}
}
