package train

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/charleschow/pregame/internal/config"
	"github.com/charleschow/pregame/internal/core/dataset"
	"github.com/charleschow/pregame/internal/core/features"
	"github.com/charleschow/pregame/internal/telemetry"
)

// ErrModelTraining is returned only when every grid combination failed.
// Individual combination failures are logged and skipped.
var ErrModelTraining = errors.New("model training failed")

// Evaluator performs grid search on the validation set, retrains the best
// combination on the training set, and scores it exactly once on test.
type Evaluator struct {
	Factory Factory
	Grid    []Params
	Workers int
}

type comboResult struct {
	valAccuracy float64
	ok          bool
}

// Run executes the full search. ordered, when non-nil, is the complete
// sample stream in chronological order; it feeds the additional
// chronological hold-out metric recommended alongside the shuffled split.
func (e *Evaluator) Run(ctx context.Context, part dataset.Partition, ordered []dataset.Sample, manifest features.Manifest) (*Report, error) {
	if len(e.Grid) == 0 {
		return nil, fmt.Errorf("%w: hyperparameter grid is empty", config.ErrConfiguration)
	}
	if len(part.Train) == 0 || len(part.Val) == 0 || len(part.Test) == 0 {
		return nil, fmt.Errorf("%w: empty partition (train=%d val=%d test=%d)",
			config.ErrConfiguration, len(part.Train), len(part.Val), len(part.Test))
	}

	trainX, trainY := dataset.Matrix(part.Train)
	valX, valY := dataset.Matrix(part.Val)
	testX, testY := dataset.Matrix(part.Test)

	workers := e.Workers
	if workers <= 0 {
		workers = 4
	}

	// Train/Val matrices are read-only across combinations; each worker
	// owns its classifier instance.
	results := make([]comboResult, len(e.Grid))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, params := range e.Grid {
		i, params := i, params
		g.Go(func() error {
			acc, err := e.evalCombo(gctx, params, trainX, trainY, valX, valY)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				telemetry.Metrics.GridCombosFailed.Inc()
				telemetry.Warnf("grid combination %d (%v) failed: %v", i, params, err)
				return nil
			}
			results[i] = comboResult{valAccuracy: acc, ok: true}
			telemetry.Metrics.GridCombosOK.Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	bestIdx, succeeded := -1, 0
	for i, r := range results {
		if !r.ok {
			continue
		}
		succeeded++
		if bestIdx < 0 || r.valAccuracy > results[bestIdx].valAccuracy {
			bestIdx = i
		}
	}
	if succeeded == 0 {
		return nil, fmt.Errorf("%w: all %d grid combinations failed", ErrModelTraining, len(e.Grid))
	}

	telemetry.Infof("grid search: %d/%d combinations evaluated, best val accuracy %.4f",
		succeeded, len(e.Grid), results[bestIdx].valAccuracy)

	// Retrain the winner on Train and touch Test exactly once.
	best := e.Grid[bestIdx]
	final := e.Factory(best)
	if err := fitSafe(ctx, final, trainX, trainY); err != nil {
		return nil, fmt.Errorf("%w: retraining best combination: %v", ErrModelTraining, err)
	}
	predictions, err := predictSafe(final, testX)
	if err != nil {
		return nil, fmt.Errorf("%w: scoring test set: %v", ErrModelTraining, err)
	}

	eval := Evaluate(testY, predictions, dataset.Groups(part.Test))

	report := &Report{
		RunID:              uuid.NewString(),
		GeneratedAt:        time.Now().UTC(),
		FeatureVersion:     manifest.Version,
		ManifestHash:       manifest.Hash(),
		Hyperparameters:    best,
		CombinationsTotal:  len(e.Grid),
		CombinationsOK:     succeeded,
		ValidationAccuracy: results[bestIdx].valAccuracy,
		Accuracy:           eval.Confusion.Accuracy(),
		Precision:          eval.Confusion.Precision(),
		Recall:             eval.Confusion.Recall(),
		F1:                 eval.Confusion.F1(),
		ConfusionMatrix:    eval.Confusion,
		PerGroup:           eval.PerGroup,
		TrainSize:          len(part.Train),
		ValSize:            len(part.Val),
		TestSize:           len(part.Test),
	}

	if len(ordered) > 0 {
		holdoutRatio := float64(len(part.Test)) / float64(part.Size())
		if acc, err := e.chronoHoldout(ctx, best, ordered, holdoutRatio); err != nil {
			telemetry.Warnf("chronological hold-out skipped: %v", err)
		} else {
			report.ChronoHoldoutAccuracy = &acc
		}
	}

	return report, nil
}

func (e *Evaluator) evalCombo(ctx context.Context, params Params, trainX [][]float64, trainY []int, valX [][]float64, valY []int) (float64, error) {
	clf := e.Factory(params)
	if err := fitSafe(ctx, clf, trainX, trainY); err != nil {
		return 0, err
	}
	pred, err := predictSafe(clf, valX)
	if err != nil {
		return 0, err
	}
	return Evaluate(valY, pred, nil).Confusion.Accuracy(), nil
}

// chronoHoldout trains on the chronological head of the stream and scores
// the tail. A shuffled split can place near-adjacent contests on opposite
// sides of the train/test boundary; this metric shows how much that
// flatters the headline number.
func (e *Evaluator) chronoHoldout(ctx context.Context, params Params, ordered []dataset.Sample, ratio float64) (float64, error) {
	cut := len(ordered) - int(math.Round(float64(len(ordered))*ratio))
	if cut <= 0 || cut >= len(ordered) {
		return 0, fmt.Errorf("degenerate hold-out cut %d of %d", cut, len(ordered))
	}

	trainX, trainY := dataset.Matrix(ordered[:cut])
	testX, testY := dataset.Matrix(ordered[cut:])

	clf := e.Factory(params)
	if err := fitSafe(ctx, clf, trainX, trainY); err != nil {
		return 0, err
	}
	pred, err := predictSafe(clf, testX)
	if err != nil {
		return 0, err
	}
	return Evaluate(testY, pred, nil).Confusion.Accuracy(), nil
}

// fitSafe and predictSafe convert classifier panics into errors so one
// misbehaving grid combination cannot take down the whole search.

func fitSafe(ctx context.Context, clf Classifier, X [][]float64, y []int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("classifier panic in Fit: %v", r)
		}
	}()
	return clf.Fit(ctx, X, y)
}

func predictSafe(clf Classifier, X [][]float64) (pred []int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("classifier panic in Predict: %v", r)
		}
	}()
	pred, err = clf.Predict(X)
	if err == nil && len(pred) != len(X) {
		return nil, fmt.Errorf("classifier returned %d predictions for %d rows", len(pred), len(X))
	}
	return pred, err
}
