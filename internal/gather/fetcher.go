package gather

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"

	"finley/internal/domain"
	"finley/internal/util"
)

// BarFetcher retrieves raw price history for one symbol at one horizon's
// granularity.
type BarFetcher interface {
	FetchBars(ctx context.Context, symbol string, h domain.Horizon) ([]domain.Bar, error)
}

// Fetcher runs bounded-parallel fetches across a ticker universe. Workers
// return results over a channel and the calling goroutine assembles the
// final map, so no shared state is mutated concurrently.
type Fetcher struct {
	source     BarFetcher
	maxWorkers int
	limiter    *util.RateLimiter
	log        *slog.Logger
}

// NewFetcher creates a Fetcher over the given source with the given pool
// width. A rateLimitPerMin of zero disables rate limiting.
func NewFetcher(source BarFetcher, maxWorkers, rateLimitPerMin int) *Fetcher {
	if maxWorkers <= 0 {
		maxWorkers = 10
	}
	var limiter *util.RateLimiter
	if rateLimitPerMin > 0 {
		limiter = util.NewRateLimiter(rateLimitPerMin)
	}
	return &Fetcher{
		source:     source,
		maxWorkers: maxWorkers,
		limiter:    limiter,
		log:        slog.Default().With("component", "fetcher"),
	}
}

type fetchResult struct {
	symbol string
	bars   []domain.Bar
}

// FetchAll fetches the horizon's price history for every symbol. Each fetch
// is fault-isolated: an error for one ticker is logged and yields an empty
// series without affecting the others. When ctx expires mid-stage the
// remaining tickers come back empty and already-gathered results are kept.
// The returned map has an entry for every requested symbol.
func (f *Fetcher) FetchAll(ctx context.Context, symbols []string, h domain.Horizon) map[string]domain.Series {
	out := make(map[string]domain.Series, len(symbols))
	if len(symbols) == 0 {
		return out
	}

	jobs := make(chan string, len(symbols))
	for _, sym := range symbols {
		jobs <- sym
	}
	close(jobs)

	results := make(chan fetchResult, len(symbols))

	var wg sync.WaitGroup
	workers := f.maxWorkers
	if workers > len(symbols) {
		workers = len(symbols)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sym := range jobs {
				results <- fetchResult{symbol: sym, bars: f.fetchOne(ctx, sym, h)}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		out[r.symbol] = normalize(r.bars)
	}
	return out
}

// fetchOne fetches a single symbol, degrading every failure to an empty
// series.
func (f *Fetcher) fetchOne(ctx context.Context, symbol string, h domain.Horizon) []domain.Bar {
	if ctx.Err() != nil {
		f.log.Warn("fetch skipped", "symbol", symbol, "horizon", h.Label, "err", ctx.Err())
		return nil
	}
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			f.log.Warn("fetch skipped", "symbol", symbol, "horizon", h.Label, "err", err)
			return nil
		}
	}

	bars, err := f.source.FetchBars(ctx, symbol, h)
	if err != nil {
		f.log.Warn("fetch failed", "symbol", symbol, "horizon", h.Label, "err", err)
		return nil
	}
	return bars
}

// normalize enforces the series invariant: ascending timestamps with no
// duplicates. Non-finite cells become NaN so the imputer can treat them as
// missing.
func normalize(bars []domain.Bar) domain.Series {
	if len(bars) == 0 {
		return nil
	}

	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})

	out := make(domain.Series, 0, len(bars))
	for _, b := range bars {
		if len(out) > 0 && !b.Timestamp.After(out[len(out)-1].Timestamp) {
			continue
		}
		b.Open = sanitize(b.Open)
		b.High = sanitize(b.High)
		b.Low = sanitize(b.Low)
		b.Close = sanitize(b.Close)
		b.Volume = sanitize(b.Volume)
		out = append(out, b)
	}
	return out
}

func sanitize(v float64) float64 {
	if math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}
