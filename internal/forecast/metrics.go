// Package forecast fits one gradient-boosted regression model per
// (ticker, horizon) on a chronologically split feature table and emits
// predictions for the held-out future window.
package forecast

import "math"

// SMAPE computes the symmetric mean absolute percentage error, in percent:
//
//	100 * mean( |pred-true| / ((|true|+|pred|)/2) )
//
// Points where the denominator is zero contribute exactly 0 to the mean
// rather than NaN or Inf. Inputs must have equal length; an empty input
// yields 0.
func SMAPE(truth, pred []float64) float64 {
	if len(truth) == 0 || len(truth) != len(pred) {
		return 0
	}

	sum := 0.0
	for i := range truth {
		denom := (math.Abs(truth[i]) + math.Abs(pred[i])) / 2.0
		if denom == 0 {
			continue
		}
		sum += math.Abs(pred[i]-truth[i]) / denom
	}
	return 100 * sum / float64(len(truth))
}
