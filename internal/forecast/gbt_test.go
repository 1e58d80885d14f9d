package forecast

import (
	"math"
	"testing"
)

func TestGBTConstantTarget(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}}
	y := []float64{7, 7, 7, 7}

	m := NewGBTRegressor()
	m.Fit(X, y)

	if got := m.Predict([]float64{2.5}); math.Abs(got-7) > 1e-9 {
		t.Errorf("constant target prediction = %v, want 7", got)
	}
}

func TestGBTStepFunction(t *testing.T) {
	// y = 1 for x < 5, y = 10 for x >= 5: a single split separates the
	// classes, so the boosted ensemble should fit it nearly exactly.
	var X [][]float64
	var y []float64
	for i := 0; i < 20; i++ {
		X = append(X, []float64{float64(i)})
		if i < 5 {
			y = append(y, 1)
		} else {
			y = append(y, 10)
		}
	}

	m := NewGBTRegressor()
	m.Fit(X, y)

	if got := m.Predict([]float64{2}); math.Abs(got-1) > 0.1 {
		t.Errorf("left side prediction = %v, want ~1", got)
	}
	if got := m.Predict([]float64{15}); math.Abs(got-10) > 0.1 {
		t.Errorf("right side prediction = %v, want ~10", got)
	}
}

func TestGBTReducesTrainingError(t *testing.T) {
	var X [][]float64
	var y []float64
	for i := 0; i < 40; i++ {
		x := float64(i) / 4
		X = append(X, []float64{x, x * x})
		y = append(y, 3*x+math.Sin(x))
	}

	m := NewGBTRegressor()
	m.Fit(X, y)

	preds := m.PredictBatch(X)
	var naive, fitted float64
	mean := meanAt(y, indices(len(y)))
	for i := range y {
		naive += (y[i] - mean) * (y[i] - mean)
		fitted += (y[i] - preds[i]) * (y[i] - preds[i])
	}
	if fitted >= naive/10 {
		t.Errorf("boosting barely improved on the mean: naive=%v fitted=%v", naive, fitted)
	}
	for i, p := range preds {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			t.Fatalf("prediction %d is not finite: %v", i, p)
		}
	}
}

func TestGBTEmptyInput(t *testing.T) {
	m := NewGBTRegressor()
	m.Fit(nil, nil)
	if got := m.Predict([]float64{1, 2, 3}); got != 0 {
		t.Errorf("unfitted model prediction = %v, want 0", got)
	}
}

func indices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
