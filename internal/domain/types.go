// Package domain defines the core types shared across the forecasting
// pipeline: price bars, horizon profiles, and forecast records.
package domain

import (
	"math"
	"time"
)

// Bar is a single sampled OHLCV observation. Missing numeric cells are
// represented as NaN until the imputer fills them.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Series is an ordered sequence of bars for one ticker at one granularity.
// Invariant: strictly ascending timestamps, no duplicates.
type Series []Bar

// Closes returns the close column of the series.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Complete reports whether the series contains no NaN cells.
func (s Series) Complete() bool {
	for _, b := range s {
		for _, v := range [...]float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
			if math.IsNaN(v) {
				return false
			}
		}
	}
	return true
}

// Horizon is a named forecasting profile fixing the fetch window, the
// sampling interval, and the number of bars ahead to predict.
type Horizon struct {
	Label     string
	Lookback  time.Duration // fetch window
	BarLength time.Duration // sampling interval
	Shift     int           // target shift in bars
}

// The three fixed horizon profiles. The (window, interval, shift) pairings
// are part of the observable contract and must not change.
var Horizons = []Horizon{
	{Label: "intraday", Lookback: 7 * 24 * time.Hour, BarLength: time.Minute, Shift: 30},
	{Label: "weekly", Lookback: 60 * 24 * time.Hour, BarLength: 2 * time.Minute, Shift: 720},
	{Label: "monthly", Lookback: 365 * 24 * time.Hour, BarLength: 24 * time.Hour, Shift: 20},
}

// HorizonByLabel looks up one of the fixed horizon profiles.
func HorizonByLabel(label string) (Horizon, bool) {
	for _, h := range Horizons {
		if h.Label == label {
			return h, true
		}
	}
	return Horizon{}, false
}

// ForecastPoint is one predicted price at a future date.
type ForecastPoint struct {
	Date  time.Time
	Price float64
}

// ForecastRecord is a persisted prediction. One record exists per
// (ticker, forecast date); later runs overwrite via upsert.
type ForecastRecord struct {
	Ticker  string
	Date    time.Time
	Price   float64
	Horizon string
}
