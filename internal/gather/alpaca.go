package gather

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"finley/internal/domain"
)

// Compile-time interface check.
var _ BarFetcher = (*AlpacaFetcher)(nil)

// AlpacaFetcher fetches OHLCV history from the Alpaca market-data API.
type AlpacaFetcher struct {
	client *marketdata.Client
	feed   marketdata.Feed
}

// NewAlpacaFetcher creates an AlpacaFetcher with the given credentials.
// dataURL overrides the default data endpoint when non-empty.
func NewAlpacaFetcher(apiKey, apiSecret, dataURL string) *AlpacaFetcher {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	return &AlpacaFetcher{
		client: marketdata.NewClient(opts),
		feed:   marketdata.IEX,
	}
}

// FetchBars retrieves bars for the symbol covering the horizon's lookback
// window at the horizon's sampling interval.
func (a *AlpacaFetcher) FetchBars(ctx context.Context, symbol string, h domain.Horizon) ([]domain.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	end := time.Now().UTC()
	start := end.Add(-h.Lookback)

	alpacaBars, err := a.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame: timeFrame(h),
		Start:     start,
		End:       end,
		Feed:      a.feed,
	})
	if err != nil {
		return nil, fmt.Errorf("GetBars %s: %w", symbol, err)
	}

	bars := make([]domain.Bar, 0, len(alpacaBars))
	for _, ab := range alpacaBars {
		bars = append(bars, domain.Bar{
			Timestamp: ab.Timestamp,
			Open:      ab.Open,
			High:      ab.High,
			Low:       ab.Low,
			Close:     ab.Close,
			Volume:    float64(ab.Volume),
		})
	}
	return bars, nil
}

// timeFrame maps a horizon's sampling interval onto an Alpaca timeframe.
func timeFrame(h domain.Horizon) marketdata.TimeFrame {
	if h.BarLength >= 24*time.Hour {
		return marketdata.OneDay
	}
	return marketdata.NewTimeFrame(int(h.BarLength/time.Minute), marketdata.Min)
}
