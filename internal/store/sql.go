package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"       // PostgreSQL driver.
	_ "modernc.org/sqlite"      // Pure-Go SQLite driver for local runs and tests.

	"finley/internal/domain"
	"finley/internal/util"
)

// Compile-time interface checks.
var _ ForecastWriter = (*SQLStore)(nil)
var _ ForecastReader = (*SQLStore)(nil)

const dateLayout = "2006-01-02"

// SQLStore persists forecasts in a relational database via database/sql.
// Supported drivers: "postgres" (lib/pq) and "sqlite" (modernc).
type SQLStore struct {
	db     *sql.DB
	driver string
}

// Open connects to the database and verifies the connection, retrying the
// ping with backoff so a briefly unavailable database does not fail the
// process at startup.
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := util.Retry(ctx, 3, time.Second, func() error {
		return db.PingContext(ctx)
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s database: %w", driver, err)
	}

	return &SQLStore{db: db, driver: driver}, nil
}

// Close releases the underlying connection pool.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the forecasts table when it does not exist. Intended
// for local and sqlite runs; production schemas are provisioned externally.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS forecasts (
			ticker          VARCHAR(10) NOT NULL,
			forecast_date   DATE        NOT NULL,
			predicted_price FLOAT       NOT NULL,
			horizon         VARCHAR(16) NOT NULL DEFAULT '',
			PRIMARY KEY (ticker, forecast_date)
		)`)
	if err != nil {
		return fmt.Errorf("creating forecasts table: %w", err)
	}
	return nil
}

// placeholder renders the nth positional parameter in the driver's dialect.
func (s *SQLStore) placeholder(n int) string {
	if s.driver == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// placeholders renders positional parameters 1..n.
func (s *SQLStore) placeholders(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s.placeholder(i + 1)
	}
	return out
}

// SaveForecasts upserts one row per point inside a single transaction, so a
// mid-write failure rolls back the whole ticker batch without touching
// other tickers' already-committed writes.
func (s *SQLStore) SaveForecasts(ctx context.Context, ticker, horizon string, points []domain.ForecastPoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction for %s: %w", ticker, err)
	}
	defer tx.Rollback()

	ph := s.placeholders(4)
	query := fmt.Sprintf(`
		INSERT INTO forecasts (ticker, forecast_date, predicted_price, horizon)
		VALUES (%s)
		ON CONFLICT (ticker, forecast_date) DO UPDATE
		SET predicted_price = excluded.predicted_price,
		    horizon = excluded.horizon`,
		strings.Join(ph, ", "))

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing upsert for %s: %w", ticker, err)
	}
	defer stmt.Close()

	for _, p := range points {
		date := p.Date.UTC().Format(dateLayout)
		if _, err := stmt.ExecContext(ctx, ticker, date, p.Price, horizon); err != nil {
			return fmt.Errorf("upserting forecast %s@%s: %w", ticker, date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing forecasts for %s: %w", ticker, err)
	}
	return nil
}

// Forecasts returns all persisted records for the ticker ordered by
// ascending forecast date. An empty horizon matches every horizon. No rows
// is a normal empty result.
func (s *SQLStore) Forecasts(ctx context.Context, ticker, horizon string) ([]domain.ForecastRecord, error) {
	query := `
		SELECT ticker, forecast_date, predicted_price, horizon
		FROM forecasts
		WHERE ticker = ` + s.placeholder(1)
	args := []any{ticker}
	if horizon != "" {
		query += ` AND horizon = ` + s.placeholder(2)
		args = append(args, horizon)
	}
	query += ` ORDER BY forecast_date ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying forecasts for %s: %w", ticker, err)
	}
	defer rows.Close()

	var records []domain.ForecastRecord
	for rows.Next() {
		var (
			rec     domain.ForecastRecord
			rawDate any
		)
		if err := rows.Scan(&rec.Ticker, &rawDate, &rec.Price, &rec.Horizon); err != nil {
			return nil, fmt.Errorf("scanning forecast row: %w", err)
		}
		rec.Date, err = parseDate(rawDate)
		if err != nil {
			return nil, fmt.Errorf("parsing forecast date: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating forecast rows: %w", err)
	}
	return records, nil
}

// parseDate normalizes the driver-dependent representation of a DATE
// column: lib/pq returns time.Time, sqlite returns the stored text.
func parseDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d.UTC(), nil
	case string:
		return time.Parse(dateLayout, d)
	case []byte:
		return time.Parse(dateLayout, string(d))
	default:
		return time.Time{}, fmt.Errorf("unsupported date type %T", v)
	}
}
