// Package pipeline orchestrates one forecasting run: fetch → clean →
// build features → train/predict → persist, per horizon, strictly linear
// per ticker. Partial completion is the expected steady state: a failed
// ticker at any stage is logged and skipped, never fatal to the run.
package pipeline

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"finley/internal/dataset"
	"finley/internal/domain"
	"finley/internal/forecast"
	"finley/internal/gather"
	"finley/internal/store"
)

// Pipeline wires the forecasting stages together. All components are
// injected; the pipeline owns every ephemeral entity (series, feature
// tables, fitted models) only for the duration of a run.
type Pipeline struct {
	universe     *gather.UniverseProvider
	fetcher      *gather.Fetcher
	trainer      *forecast.Trainer
	forecasts    store.ForecastWriter
	archive      *store.BarArchive // nil disables archiving
	fetchTimeout time.Duration
	log          *slog.Logger
}

// New creates a Pipeline. archive may be nil.
func New(
	universe *gather.UniverseProvider,
	fetcher *gather.Fetcher,
	trainer *forecast.Trainer,
	forecasts store.ForecastWriter,
	archive *store.BarArchive,
	fetchTimeout time.Duration,
) *Pipeline {
	return &Pipeline{
		universe:     universe,
		fetcher:      fetcher,
		trainer:      trainer,
		forecasts:    forecasts,
		archive:      archive,
		fetchTimeout: fetchTimeout,
		log:          slog.Default().With("component", "pipeline"),
	}
}

// Run executes one full forecasting pass over every horizon profile. An
// empty universe degrades to a no-op run.
func (p *Pipeline) Run(ctx context.Context) error {
	start := time.Now()

	symbols := p.universe.Symbols(ctx)
	if len(symbols) == 0 {
		p.log.Warn("empty ticker universe, nothing to do")
		return nil
	}
	p.log.Info("run starting", "symbols", len(symbols))

	for _, h := range domain.Horizons {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.runHorizon(ctx, symbols, h)
	}

	p.log.Info("run complete", "elapsed", time.Since(start).Round(time.Second))
	return nil
}

// runHorizon processes one granularity profile end to end.
func (p *Pipeline) runHorizon(ctx context.Context, symbols []string, h domain.Horizon) {
	// The fetch stage gets its own deadline; whatever was gathered before it
	// expires is kept.
	fetchCtx := ctx
	if p.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, p.fetchTimeout)
		defer cancel()
	}
	raw := p.fetcher.FetchAll(fetchCtx, symbols, h)

	cleaned := dataset.Clean(raw)
	p.log.Info("series cleaned", "horizon", h.Label, "fetched", len(raw), "retained", len(cleaned))

	tickers := make([]string, 0, len(cleaned))
	for t := range cleaned {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	saved := 0
	for _, ticker := range tickers {
		series := cleaned[ticker]

		if p.archive != nil {
			if err := p.archive.WriteSeries(h.Label, ticker, series); err != nil {
				p.log.Warn("archiving series failed", "ticker", ticker, "horizon", h.Label, "err", err)
			}
		}

		tbl := dataset.BuildFeatures(series, h.Shift)
		points := p.trainer.TrainPredict(ticker, tbl, h)
		if len(points) == 0 {
			continue
		}

		if err := p.forecasts.SaveForecasts(ctx, ticker, h.Label, points); err != nil {
			p.log.Error("persisting forecasts failed", "ticker", ticker, "horizon", h.Label, "err", err)
			continue
		}
		saved++
	}

	p.log.Info("horizon done", "horizon", h.Label, "tickers_saved", saved)
}
