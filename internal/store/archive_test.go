package store

import (
	"testing"
	"time"

	"finley/internal/domain"
)

func TestBarArchiveRoundTrip(t *testing.T) {
	a := NewBarArchive(t.TempDir())

	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	in := domain.Series{
		{Timestamp: start, Open: 185, High: 186.5, Low: 184, Close: 185.5, Volume: 50000000},
		{Timestamp: start.AddDate(0, 0, 1), Open: 185.5, High: 187, Low: 185, Close: 186, Volume: 45000000},
	}

	if err := a.WriteSeries("monthly", "aapl", in); err != nil {
		t.Fatalf("WriteSeries: %v", err)
	}

	out, err := a.ReadSeries("monthly", "AAPL")
	if err != nil {
		t.Fatalf("ReadSeries: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d bars, want %d", len(out), len(in))
	}
	for i := range in {
		if !out[i].Timestamp.Equal(in[i].Timestamp) || out[i].Close != in[i].Close {
			t.Errorf("bar %d = %+v, want %+v", i, out[i], in[i])
		}
	}
}

func TestBarArchiveEmptySeries(t *testing.T) {
	a := NewBarArchive(t.TempDir())
	if err := a.WriteSeries("monthly", "EMPTY", nil); err != nil {
		t.Errorf("empty series should be a no-op, got %v", err)
	}
	if _, err := a.ReadSeries("monthly", "EMPTY"); err == nil {
		t.Error("reading a never-written series should fail")
	}
}
