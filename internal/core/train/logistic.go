package train

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Logistic is the baseline classifier: logistic regression trained by
// full-batch gradient descent on log-loss with optional L2.
type Logistic struct {
	LearningRate float64
	Iterations   int
	L2           float64

	// weights[0] is the bias term.
	weights []float64
}

func NewLogistic(p Params) *Logistic {
	return &Logistic{
		LearningRate: p.Get("learning_rate", 0.1),
		Iterations:   int(p.Get("iterations", 300)),
		L2:           p.Get("l2", 0),
	}
}

// LogisticFactory adapts NewLogistic to the evaluator's Factory contract.
func LogisticFactory(p Params) Classifier { return NewLogistic(p) }

func (m *Logistic) Fit(ctx context.Context, X [][]float64, y []int) error {
	if len(X) == 0 {
		return errors.New("fit: empty training set")
	}
	if len(X) != len(y) {
		return fmt.Errorf("fit: %d rows but %d labels", len(X), len(y))
	}
	if m.LearningRate <= 0 || m.Iterations <= 0 {
		return fmt.Errorf("fit: invalid hyperparameters lr=%g iters=%d", m.LearningRate, m.Iterations)
	}

	dims := len(X[0])
	for i, row := range X {
		if len(row) != dims {
			return fmt.Errorf("fit: row %d has %d features, want %d", i, len(row), dims)
		}
	}

	w := make([]float64, dims+1)
	grad := make([]float64, dims+1)
	n := float64(len(X))

	best := make([]float64, dims+1)
	bestLoss := math.Inf(1)

	for iter := 0; iter < m.Iterations; iter++ {
		// Cooperative cancellation checkpoint: keep the best weights
		// seen so far, then stop.
		select {
		case <-ctx.Done():
			m.weights = best
			return ctx.Err()
		default:
		}

		for k := range grad {
			grad[k] = 0
		}

		var loss float64
		for i, row := range X {
			z := w[0]
			for j, v := range row {
				z += w[j+1] * v
			}
			p := sigmoid(z)
			target := float64(y[i])

			loss += logLoss(p, target)

			// gradient of -[y·log(p)+(1-y)·log(1-p)] is (p-y)·x
			e := p - target
			grad[0] += e
			for j, v := range row {
				grad[j+1] += e * v
			}
		}
		loss /= n

		if loss < bestLoss {
			bestLoss = loss
			copy(best, w)
		}

		for k := range w {
			step := grad[k] / n
			if k > 0 {
				step += m.L2 * w[k]
			}
			w[k] -= m.LearningRate * step
		}
	}

	// Final weights may be past the optimum on a too-hot learning rate;
	// keep whichever epoch scored best.
	if finalLoss := meanLogLoss(w, X, y); finalLoss < bestLoss {
		m.weights = w
	} else {
		m.weights = best
	}
	return nil
}

func (m *Logistic) Predict(X [][]float64) ([]int, error) {
	if m.weights == nil {
		return nil, errors.New("predict: model not fitted")
	}

	out := make([]int, len(X))
	for i, row := range X {
		if len(row) != len(m.weights)-1 {
			return nil, fmt.Errorf("predict: row %d has %d features, want %d", i, len(row), len(m.weights)-1)
		}
		z := m.weights[0]
		for j, v := range row {
			z += m.weights[j+1] * v
		}
		if sigmoid(z) >= 0.5 {
			out[i] = 1
		}
	}
	return out, nil
}

func meanLogLoss(w []float64, X [][]float64, y []int) float64 {
	var loss float64
	for i, row := range X {
		z := w[0]
		for j, v := range row {
			z += w[j+1] * v
		}
		loss += logLoss(sigmoid(z), float64(y[i]))
	}
	return loss / float64(len(X))
}

func logLoss(p, target float64) float64 {
	const eps = 1e-12
	p = math.Min(math.Max(p, eps), 1-eps)
	return -(target*math.Log(p) + (1-target)*math.Log(1-p))
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
