// Package store persists forecast records in a relational database and
// archives cleaned bar series to Parquet files.
package store

import (
	"context"

	"finley/internal/domain"
)

// ForecastWriter upserts predictions. Writes for a single ticker are
// committed atomically.
type ForecastWriter interface {
	// SaveForecasts persists one row per point using upsert semantics keyed
	// on (ticker, forecast date): an existing row's price is overwritten, a
	// missing row is inserted.
	SaveForecasts(ctx context.Context, ticker, horizon string, points []domain.ForecastPoint) error
}

// ForecastReader is the read-only lookup consumed by the serving front end.
type ForecastReader interface {
	// Forecasts returns all records for the ticker, optionally restricted to
	// one horizon label, ordered by ascending forecast date. Zero rows is a
	// normal empty result, not an error.
	Forecasts(ctx context.Context, ticker, horizon string) ([]domain.ForecastRecord, error)
}
