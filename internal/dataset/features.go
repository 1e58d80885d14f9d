package dataset

import (
	"time"

	"finley/internal/domain"
)

// warmup is the number of leading bars without a full feature history: the
// widest moving-average window. Rows before it are dropped.
const warmup = 10

var (
	maWindows = []int{10, 5, 3}
	lags      = []int{3, 5, 8}
)

// NumFeatures is the width of a feature row: return, three moving averages,
// three lagged closes.
const NumFeatures = 7

// Table is a dense supervised dataset for one ticker and one horizon. Rows
// are in ascending time order with no missing values; Y holds the close
// price Shift bars after each row's timestamp.
type Table struct {
	Times []time.Time
	X     [][]float64
	Y     []float64
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.X) }

// Usable reports whether the table is big enough to train on and still hold
// out shift test rows.
func (t Table) Usable(shift int) bool { return t.Len() >= shift+1 }

// BuildFeatures derives the feature table from a cleaned series. Per bar:
// the one-step return, trailing moving averages over {3,5,10} bars, and
// lagged closes at {3,5,8} bars, with the target the close shift bars
// ahead. Rows lacking full trailing history (the first 10) and rows without
// a defined target (the trailing shift) are dropped, so an n-bar series
// yields n-10-shift rows.
func BuildFeatures(s domain.Series, shift int) Table {
	n := len(s)
	rows := n - warmup - shift
	if rows <= 0 {
		return Table{}
	}

	closes := s.Closes()

	t := Table{
		Times: make([]time.Time, 0, rows),
		X:     make([][]float64, 0, rows),
		Y:     make([]float64, 0, rows),
	}

	for i := warmup; i < n-shift; i++ {
		row := make([]float64, 0, NumFeatures)
		row = append(row, (closes[i]-closes[i-1])/closes[i-1])
		for _, w := range maWindows {
			row = append(row, mean(closes[i-w+1:i+1]))
		}
		for _, lag := range lags {
			row = append(row, closes[i-lag])
		}

		t.Times = append(t.Times, s[i].Timestamp)
		t.X = append(t.X, row)
		t.Y = append(t.Y, closes[i+shift])
	}
	return t
}

func mean(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
