package train

import (
	"encoding/json"
	"time"
)

// Report is the structured result of one full evaluation run. It always
// carries the partial-success counts: a run with some failed grid
// combinations is still a successful run.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`

	FeatureVersion string `json:"feature_manifest_version"`
	ManifestHash   string `json:"feature_manifest_hash"`

	Hyperparameters   Params `json:"hyperparameters"`
	CombinationsTotal int    `json:"combinations_total"`
	CombinationsOK    int    `json:"combinations_evaluated"`

	ValidationAccuracy float64 `json:"validation_accuracy"`

	Accuracy        float64                 `json:"accuracy"`
	Precision       float64                 `json:"precision"`
	Recall          float64                 `json:"recall"`
	F1              float64                 `json:"f1"`
	ConfusionMatrix Confusion               `json:"confusion_matrix"`
	PerGroup        map[string]GroupMetrics `json:"per_group"`

	// ChronoHoldoutAccuracy is the accuracy on a chronological tail
	// hold-out, reported next to the shuffled-split metrics.
	ChronoHoldoutAccuracy *float64 `json:"chrono_holdout_accuracy,omitempty"`

	TrainSize int `json:"train_size"`
	ValSize   int `json:"val_size"`
	TestSize  int `json:"test_size"`
}

func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
