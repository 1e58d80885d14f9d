package forecast

import (
	"testing"
	"time"

	"finley/internal/dataset"
	"finley/internal/domain"
)

// rampTable builds a feature table from n daily bars with linear closes.
func rampTable(t *testing.T, n, shift int) dataset.Table {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(domain.Series, n)
	for i := range s {
		c := float64(i + 1)
		s[i] = domain.Bar{Timestamp: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 1}
	}
	return dataset.BuildFeatures(s, shift)
}

func TestTrainPredictSplit(t *testing.T) {
	h, _ := domain.HorizonByLabel("monthly") // shift 20
	tbl := rampTable(t, 100, h.Shift)        // 70 rows

	points := NewTrainer().TrainPredict("TEST", tbl, h)
	if len(points) != h.Shift {
		t.Fatalf("got %d predictions, want %d", len(points), h.Shift)
	}

	// Predictions carry the held-out rows' timestamps, in ascending order,
	// all strictly later than every training row.
	lastTrain := tbl.Times[tbl.Len()-h.Shift-1]
	for i, p := range points {
		if !p.Date.Equal(tbl.Times[tbl.Len()-h.Shift+i]) {
			t.Errorf("prediction %d dated %v, want %v", i, p.Date, tbl.Times[tbl.Len()-h.Shift+i])
		}
		if !p.Date.After(lastTrain) {
			t.Errorf("prediction %d dated %v not after last training row %v", i, p.Date, lastTrain)
		}
	}
	for i := 1; i < len(points); i++ {
		if !points[i].Date.After(points[i-1].Date) {
			t.Fatal("prediction dates not ascending")
		}
	}
}

func TestTrainPredictTooShort(t *testing.T) {
	h, _ := domain.HorizonByLabel("monthly")

	if points := NewTrainer().TrainPredict("TEST", dataset.Table{}, h); points != nil {
		t.Errorf("empty table should yield no predictions, got %d", len(points))
	}

	// Exactly shift rows leaves no training data.
	tbl := rampTable(t, 50, h.Shift) // 20 rows
	if points := NewTrainer().TrainPredict("TEST", tbl, h); points != nil {
		t.Errorf("too-short table should yield no predictions, got %d", len(points))
	}
}

func TestTrainPredictTracksRamp(t *testing.T) {
	h, _ := domain.HorizonByLabel("monthly")
	tbl := rampTable(t, 120, h.Shift)

	points := NewTrainer().TrainPredict("TEST", tbl, h)
	if len(points) == 0 {
		t.Fatal("expected predictions")
	}
	// A tree ensemble cannot extrapolate a ramp, but predictions must stay
	// within the observed target range.
	minY, maxY := tbl.Y[0], tbl.Y[0]
	for _, y := range tbl.Y {
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	for _, p := range points {
		if p.Price < minY-1 || p.Price > maxY+1 {
			t.Errorf("prediction %v outside observed target range [%v, %v]", p.Price, minY, maxY)
		}
	}
}
