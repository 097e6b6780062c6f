// Package rating implements the Elo-style skill update applied after every
// contest: logistic expected score plus a margin-of-victory multiplier.
package rating

import "math"

// Params configures the updater.
// K        = rating sensitivity per contest
// Initial  = rating assigned before an entity's first contest
// AvgMargin = typical winning margin used to normalize the MOV multiplier;
//             zero or negative disables margin scaling entirely.
type Params struct {
	K             float64
	InitialRating float64
	AvgMargin     float64
}

func DefaultParams() Params {
	return Params{K: 24, InitialRating: 1500, AvgMargin: 10}
}

// Expected returns both expected scores. They sum to 1 by construction:
// expectedB is computed as the complement, never independently.
func Expected(ratingA, ratingB float64) (expectedA, expectedB float64) {
	expectedA = 1.0 / (1.0 + math.Pow(10, (ratingB-ratingA)/400.0))
	return expectedA, 1.0 - expectedA
}

// WinProb is the logistic win probability for the entity holding ratingA.
func WinProb(ratingA, ratingB float64) float64 {
	p, _ := Expected(ratingA, ratingB)
	return p
}

// MovMultiplier scales the update by the winning margin. A blowout moves
// ratings more than a squeaker, but never less than a plain Elo step.
// Degrades to 1 when margin data is absent.
func (p Params) MovMultiplier(margin float64) float64 {
	if p.AvgMargin <= 0 || margin <= 0 {
		return 1
	}
	m := math.Log(margin/p.AvgMargin+1) + 1
	if m < 1 {
		return 1
	}
	return m
}

// Update returns both post-contest ratings. aWon is the outcome for the
// entity holding ratingA; margin is the absolute winning margin.
func (p Params) Update(ratingA, ratingB float64, aWon bool, margin float64) (newA, newB float64) {
	expectedA, expectedB := Expected(ratingA, ratingB)

	outcomeA, outcomeB := 0.0, 1.0
	if aWon {
		outcomeA, outcomeB = 1.0, 0.0
	}

	mov := p.MovMultiplier(margin)
	newA = ratingA + p.K*mov*(outcomeA-expectedA)
	newB = ratingB + p.K*mov*(outcomeB-expectedB)
	return newA, newB
}
