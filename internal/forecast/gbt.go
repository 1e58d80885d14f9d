package forecast

import "sort"

// GBTRegressor is a gradient-boosted ensemble of regression trees with a
// squared-error objective. Boosting fits each tree to the residuals of the
// running prediction and shrinks its contribution by the learning rate.
type GBTRegressor struct {
	Estimators   int
	LearningRate float64
	MaxDepth     int
	MinLeaf      int

	base  float64
	trees []*treeNode
}

// NewGBTRegressor returns a regressor with the fixed hyperparameters used
// across all tickers: 100 estimators, learning rate 0.3, depth 6.
func NewGBTRegressor() *GBTRegressor {
	return &GBTRegressor{
		Estimators:   100,
		LearningRate: 0.3,
		MaxDepth:     6,
		MinLeaf:      1,
	}
}

// Fit trains the ensemble on the given rows. X must be rectangular and
// parallel to y; an empty input leaves the model predicting zero.
func (m *GBTRegressor) Fit(X [][]float64, y []float64) {
	m.trees = m.trees[:0]
	m.base = 0
	if len(X) == 0 {
		return
	}

	sum := 0.0
	for _, v := range y {
		sum += v
	}
	m.base = sum / float64(len(y))

	pred := make([]float64, len(y))
	for i := range pred {
		pred[i] = m.base
	}

	idx := make([]int, len(y))
	for i := range idx {
		idx[i] = i
	}

	resid := make([]float64, len(y))
	for t := 0; t < m.Estimators; t++ {
		for i := range y {
			resid[i] = y[i] - pred[i]
		}

		tree := m.growTree(X, resid, idx, 0)
		m.trees = append(m.trees, tree)

		for i := range y {
			pred[i] += m.LearningRate * tree.predict(X[i])
		}
	}
}

// Predict returns the model output for one feature row.
func (m *GBTRegressor) Predict(x []float64) float64 {
	out := m.base
	for _, tree := range m.trees {
		out += m.LearningRate * tree.predict(x)
	}
	return out
}

// PredictBatch predicts every row of X.
func (m *GBTRegressor) PredictBatch(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, x := range X {
		out[i] = m.Predict(x)
	}
	return out
}

// treeNode is one node of a regression tree. Leaves have left == nil.
type treeNode struct {
	feature   int
	threshold float64
	value     float64
	left      *treeNode
	right     *treeNode
}

func (n *treeNode) predict(x []float64) float64 {
	for n.left != nil {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// growTree builds a depth-limited regression tree over the rows in idx,
// greedily choosing the split that minimizes the summed squared error of
// the two children.
func (m *GBTRegressor) growTree(X [][]float64, target []float64, idx []int, depth int) *treeNode {
	node := &treeNode{value: meanAt(target, idx)}
	if depth >= m.MaxDepth || len(idx) < 2*m.MinLeaf {
		return node
	}

	feature, threshold, ok := m.bestSplit(X, target, idx)
	if !ok {
		return node
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < m.MinLeaf || len(right) < m.MinLeaf {
		return node
	}

	node.feature = feature
	node.threshold = threshold
	node.left = m.growTree(X, target, left, depth+1)
	node.right = m.growTree(X, target, right, depth+1)
	return node
}

// bestSplit scans every feature with a sorted sweep, using prefix sums to
// evaluate each candidate threshold in O(1).
func (m *GBTRegressor) bestSplit(X [][]float64, target []float64, idx []int) (int, float64, bool) {
	n := len(idx)

	var totalSum, totalSq float64
	for _, i := range idx {
		totalSum += target[i]
		totalSq += target[i] * target[i]
	}
	bestScore := totalSq - totalSum*totalSum/float64(n)

	bestFeature, bestThreshold := -1, 0.0
	order := make([]int, n)

	for f := 0; f < len(X[idx[0]]); f++ {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool {
			return X[order[a]][f] < X[order[b]][f]
		})

		var leftSum, leftSq float64
		for pos := 0; pos < n-1; pos++ {
			i := order[pos]
			leftSum += target[i]
			leftSq += target[i] * target[i]

			cur, next := X[i][f], X[order[pos+1]][f]
			if cur == next {
				continue
			}
			k := float64(pos + 1)
			if int(k) < m.MinLeaf || n-int(k) < m.MinLeaf {
				continue
			}

			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			score := (leftSq - leftSum*leftSum/k) +
				(rightSq - rightSum*rightSum/float64(n-int(k)))
			if score < bestScore-1e-12 {
				bestScore = score
				bestFeature = f
				bestThreshold = cur + (next-cur)/2
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

func meanAt(vals []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	sum := 0.0
	for _, i := range idx {
		sum += vals[i]
	}
	return sum / float64(len(idx))
}
