package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"finley/internal/domain"
)

// BarArchive snapshots cleaned bar series to Parquet files, one file per
// (horizon, symbol), overwritten each run.
type BarArchive struct {
	DataDir string
}

// NewBarArchive creates an archive rooted at the given data directory.
func NewBarArchive(dataDir string) *BarArchive {
	return &BarArchive{DataDir: dataDir}
}

// barRecord is the Parquet schema for archived bars.
type barRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    float64 `parquet:"volume"`
}

// WriteSeries writes one symbol's cleaned series for a horizon.
// Layout: <DataDir>/bars/<horizon>/<SYMBOL>.parquet
func (a *BarArchive) WriteSeries(horizon, symbol string, s domain.Series) error {
	if len(s) == 0 {
		return nil
	}

	records := make([]barRecord, len(s))
	for i, b := range s {
		records[i] = barRecord{
			Symbol:    symbol,
			Timestamp: b.Timestamp.UnixMilli(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		}
	}

	path := a.seriesPath(horizon, symbol)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating archive dir: %w", err)
	}
	if err := parquet.WriteFile(path, records); err != nil {
		return fmt.Errorf("writing archive for %s/%s: %w", horizon, symbol, err)
	}
	return nil
}

// ReadSeries reads back an archived series.
func (a *BarArchive) ReadSeries(horizon, symbol string) (domain.Series, error) {
	records, err := parquet.ReadFile[barRecord](a.seriesPath(horizon, symbol))
	if err != nil {
		return nil, err
	}

	s := make(domain.Series, len(records))
	for i, r := range records {
		s[i] = domain.Bar{
			Timestamp: time.UnixMilli(r.Timestamp).UTC(),
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
			Volume:    r.Volume,
		}
	}
	return s, nil
}

func (a *BarArchive) seriesPath(horizon, symbol string) string {
	return filepath.Join(a.DataDir, "bars", horizon, strings.ToUpper(symbol)+".parquet")
}
