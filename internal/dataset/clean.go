// Package dataset turns raw fetched price series into the dense numeric
// tables consumed by the trainer: peer-relative quality filtering, gap
// imputation, and feature/target construction.
package dataset

import (
	"log/slog"
	"math"

	"finley/internal/domain"
)

// coverageRatio is the minimum series length relative to the longest peer
// series; anything shorter is treated as insufficient coverage.
const coverageRatio = 0.95

// Clean filters and imputes the fetcher's output for one granularity.
// Tickers whose series are materially incomplete relative to peers are
// dropped entirely; retained series have missing cells filled by linear
// interpolation along the time axis, with column means covering boundary
// gaps. Dropped tickers are simply absent from the result.
func Clean(all map[string]domain.Series) map[string]domain.Series {
	longest := 0
	for _, s := range all {
		if len(s) > longest {
			longest = len(s)
		}
	}

	out := make(map[string]domain.Series, len(all))
	if longest == 0 {
		return out
	}

	threshold := coverageRatio * float64(longest)
	for ticker, s := range all {
		if len(s) == 0 || float64(len(s)) < threshold {
			slog.Debug("ticker dropped for insufficient coverage",
				"ticker", ticker, "bars", len(s), "longest", longest)
			continue
		}
		out[ticker] = impute(s)
	}
	return out
}

// barColumns enumerates the numeric columns of a bar for column-wise
// imputation.
var barColumns = []struct {
	get func(*domain.Bar) float64
	set func(*domain.Bar, float64)
}{
	{func(b *domain.Bar) float64 { return b.Open }, func(b *domain.Bar, v float64) { b.Open = v }},
	{func(b *domain.Bar) float64 { return b.High }, func(b *domain.Bar, v float64) { b.High = v }},
	{func(b *domain.Bar) float64 { return b.Low }, func(b *domain.Bar, v float64) { b.Low = v }},
	{func(b *domain.Bar) float64 { return b.Close }, func(b *domain.Bar, v float64) { b.Close = v }},
	{func(b *domain.Bar) float64 { return b.Volume }, func(b *domain.Bar, v float64) { b.Volume = v }},
}

// impute returns a copy of the series with NaN cells filled, column by
// column: interior gaps by linear interpolation between the nearest known
// neighbours, then boundary gaps by the column mean.
func impute(s domain.Series) domain.Series {
	out := make(domain.Series, len(s))
	copy(out, s)

	col := make([]float64, len(out))
	for _, c := range barColumns {
		for i := range out {
			col[i] = c.get(&out[i])
		}
		fillColumn(col)
		for i := range out {
			c.set(&out[i], col[i])
		}
	}
	return out
}

// fillColumn fills NaN entries in place. Interior runs of NaN are linearly
// interpolated; leading and trailing runs, where interpolation has nothing
// to anchor on, get the mean of the known values. A column with no known
// values is zero-filled.
func fillColumn(col []float64) {
	var sum float64
	known := 0
	for _, v := range col {
		if !math.IsNaN(v) {
			sum += v
			known++
		}
	}
	if known == 0 {
		for i := range col {
			col[i] = 0
		}
		return
	}
	mean := sum / float64(known)

	prev := -1 // index of the last known value
	for i := 0; i <= len(col); i++ {
		if i < len(col) && math.IsNaN(col[i]) {
			continue
		}

		// col[prev+1 : i] is a run of NaNs (possibly empty).
		switch {
		case prev == -1 && i == len(col):
			// Unreachable: known > 0 guarantees at least one anchor.
		case prev == -1:
			for j := 0; j < i; j++ {
				col[j] = mean
			}
		case i == len(col):
			for j := prev + 1; j < i; j++ {
				col[j] = mean
			}
		default:
			span := float64(i - prev)
			step := (col[i] - col[prev]) / span
			for j := prev + 1; j < i; j++ {
				col[j] = col[prev] + step*float64(j-prev)
			}
		}
		prev = i
	}
}
