// Package train runs hyperparameter search over a pluggable classifier
// and produces the structured evaluation report.
package train

import "context"

// Params is one hyperparameter combination from the grid.
type Params map[string]float64

func (p Params) Get(key string, fallback float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return fallback
}

// Classifier is the minimal contract the evaluator needs. Fit takes a
// context so long training loops can honor cancellation at iteration
// boundaries; Predict must be safe after a successful Fit.
type Classifier interface {
	Fit(ctx context.Context, X [][]float64, y []int) error
	Predict(X [][]float64) ([]int, error)
}

// Factory builds a fresh classifier for one grid combination. Each grid
// point gets its own instance so combinations share no mutable state.
type Factory func(p Params) Classifier
