// Package gather acquires the ticker universe and historical price bars
// from external sources, normalizing everything into domain types before
// any downstream stage sees it.
package gather

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// UniverseProvider supplies the ordered, deduplicated set of symbols to
// process. The catalog is an HTTP-retrievable CSV listing of equities; only
// the symbol column is consumed. A local CSV path may be configured as a
// fallback for offline runs.
type UniverseProvider struct {
	client  *http.Client
	url     string
	csvPath string
	log     *slog.Logger
}

// NewUniverseProvider creates a provider for the given catalog URL and
// optional local CSV fallback.
func NewUniverseProvider(url, csvPath string) *UniverseProvider {
	return &UniverseProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		url:     url,
		csvPath: csvPath,
		log:     slog.Default().With("component", "universe"),
	}
}

// Symbols returns the ticker universe. On any failure to reach or parse the
// catalog it returns an empty slice rather than an error: the pipeline
// degrades to a no-op run, not a crash.
func (p *UniverseProvider) Symbols(ctx context.Context) []string {
	if p.url != "" {
		symbols, err := p.fetchRemote(ctx)
		if err == nil {
			p.log.Info("universe loaded", "source", p.url, "symbols", len(symbols))
			return symbols
		}
		p.log.Warn("fetching universe catalog failed", "url", p.url, "err", err)
	}

	if p.csvPath != "" {
		f, err := os.Open(p.csvPath)
		if err != nil {
			p.log.Warn("opening universe CSV failed", "path", p.csvPath, "err", err)
			return nil
		}
		defer f.Close()

		symbols, err := parseSymbolCSV(f)
		if err != nil {
			p.log.Warn("parsing universe CSV failed", "path", p.csvPath, "err", err)
			return nil
		}
		p.log.Info("universe loaded", "source", p.csvPath, "symbols", len(symbols))
		return symbols
	}

	return nil
}

func (p *UniverseProvider) fetchRemote(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &statusError{code: resp.StatusCode}
	}

	return parseSymbolCSV(resp.Body)
}

type statusError struct{ code int }

func (e *statusError) Error() string {
	return "unexpected status " + http.StatusText(e.code)
}

// parseSymbolCSV reads a CSV listing with a header row and returns the
// symbol column, uppercased and deduplicated with input order preserved.
// The symbol column is the one whose header equals "symbol"
// (case-insensitive); the first column is used when no header matches.
func parseSymbolCSV(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	col := 0
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "symbol") {
			col = i
			break
		}
	}

	var symbols []string
	seen := make(map[string]struct{})
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if col >= len(record) {
			continue
		}
		sym := strings.ToUpper(strings.TrimSpace(record[col]))
		if sym == "" {
			continue
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		symbols = append(symbols, sym)
	}
	return symbols, nil
}
