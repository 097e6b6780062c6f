// Package dataset drives the single chronological pass over the contest
// stream, turning pre-contest entity states into labeled samples and
// partitioning them for training.
package dataset

import (
	"time"

	"github.com/charleschow/pregame/internal/core/features"
)

// Sample is one contest's feature vector plus its label.
// Label is 1 iff the home side won.
type Sample struct {
	Features  features.Vector `json:"features"`
	Label     int             `json:"label"`
	GroupKey  string          `json:"group_key"`
	ContestID string          `json:"contest_id"`
	Timestamp time.Time       `json:"timestamp"`

	HomeHasHistory bool `json:"home_has_history"`
	AwayHasHistory bool `json:"away_has_history"`
}

// Partition holds the disjoint train/validation/test sets. Every built
// sample lands in exactly one of the three.
type Partition struct {
	Train []Sample
	Val   []Sample
	Test  []Sample
}

func (p Partition) Size() int {
	return len(p.Train) + len(p.Val) + len(p.Test)
}

// Matrix flattens samples into the X, y form classifiers consume.
func Matrix(samples []Sample) ([][]float64, []int) {
	X := make([][]float64, len(samples))
	y := make([]int, len(samples))
	for i, s := range samples {
		X[i] = s.Features
		y[i] = s.Label
	}
	return X, y
}

// Groups returns the per-sample group keys, aligned with Matrix rows.
func Groups(samples []Sample) []string {
	g := make([]string, len(samples))
	for i, s := range samples {
		g[i] = s.GroupKey
	}
	return g
}
