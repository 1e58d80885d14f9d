package forecast

import (
	"log/slog"

	"finley/internal/dataset"
	"finley/internal/domain"
)

// Trainer fits one regressor per (ticker, horizon) and produces predictions
// for the held-out future window. Hyperparameters are uniform across
// tickers, and no model state survives the call: every pipeline run is a
// full retrain.
type Trainer struct {
	log *slog.Logger
}

// NewTrainer creates a Trainer.
func NewTrainer() *Trainer {
	return &Trainer{log: slog.Default().With("component", "trainer")}
}

// TrainPredict splits the table chronologically — the last shift rows form
// the test set, everything before them the training set — fits a
// gradient-boosted regressor on the training rows, and returns one
// predicted price per test row, dated with the test row's timestamp. The
// ordering is load-bearing: the model never sees rows from the future
// window during fitting.
//
// A table too small to split yields an empty prediction list, not an error.
func (t *Trainer) TrainPredict(ticker string, tbl dataset.Table, h domain.Horizon) []domain.ForecastPoint {
	if !tbl.Usable(h.Shift) {
		t.log.Debug("feature table too small", "ticker", ticker, "horizon", h.Label, "rows", tbl.Len())
		return nil
	}

	split := tbl.Len() - h.Shift

	model := NewGBTRegressor()
	model.Fit(tbl.X[:split], tbl.Y[:split])

	preds := model.PredictBatch(tbl.X[split:])

	points := make([]domain.ForecastPoint, len(preds))
	for i, p := range preds {
		points[i] = domain.ForecastPoint{Date: tbl.Times[split+i], Price: p}
	}

	t.log.Info("model trained",
		"ticker", ticker,
		"horizon", h.Label,
		"train_rows", split,
		"test_rows", len(preds),
		"smape", SMAPE(tbl.Y[split:], preds),
	)
	return points
}
