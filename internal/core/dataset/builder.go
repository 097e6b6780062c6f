package dataset

import (
	"errors"
	"fmt"

	"github.com/charleschow/pregame/internal/core/features"
	"github.com/charleschow/pregame/internal/core/rating"
	"github.com/charleschow/pregame/internal/core/state"
	"github.com/charleschow/pregame/internal/schedule"
	"github.com/charleschow/pregame/internal/telemetry"
)

// ErrDataOrdering means the input stream violated the (StartTime, ID)
// ordering contract. The builder never re-sorts: an out-of-order stream
// usually means upstream corruption, and silently fixing it would mask it.
var ErrDataOrdering = errors.New("contest stream out of order")

// Builder walks the ordered contest stream. For every contest it reads
// both pre-contest states, extracts features, and only then applies the
// rating update and state mutation. That ordering is the no-leakage
// invariant; nothing downstream can retroactively repair a violation.
type Builder struct {
	store *state.Store
	ex    *features.Extractor
	elo   rating.Params

	includeColdStart bool
}

func NewBuilder(store *state.Store, ex *features.Extractor, elo rating.Params, includeColdStart bool) *Builder {
	return &Builder{
		store:            store,
		ex:               ex,
		elo:              elo,
		includeColdStart: includeColdStart,
	}
}

// Run performs the sequential pass. Identical input and configuration
// produce an identical sample sequence; there is no randomness here.
func (b *Builder) Run(contests []schedule.Contest) ([]Sample, error) {
	if err := checkOrder(contests); err != nil {
		return nil, err
	}

	samples := make([]Sample, 0, len(contests))
	for _, c := range contests {
		if s, ok := b.process(c); ok {
			samples = append(samples, s)
		}
	}
	return samples, nil
}

// process extracts (maybe) and always applies. Early contests below the
// history threshold emit no sample but still advance state, so history
// accumulates through the cold-start period.
func (b *Builder) process(c schedule.Contest) (Sample, bool) {
	home := b.store.Get(c.HomeID)
	away := b.store.Get(c.AwayID)

	homeHist := b.ex.HasHistory(home)
	awayHist := b.ex.HasHistory(away)
	emit := (homeHist && awayHist) || b.includeColdStart

	var sample Sample
	if emit {
		label := 0
		if c.HomeWon() {
			label = 1
		}
		sample = Sample{
			Features:       b.ex.Extract(home, away, c.StartTime),
			Label:          label,
			GroupKey:       groupKey(c),
			ContestID:      c.ID,
			Timestamp:      c.StartTime,
			HomeHasHistory: homeHist,
			AwayHasHistory: awayHist,
		}
		telemetry.Metrics.SamplesEmitted.Inc()
	} else {
		telemetry.Metrics.ColdStartSkips.Inc()
	}

	newHome, newAway := b.elo.Update(home.Rating, away.Rating, c.HomeWon(), float64(c.Margin()))

	b.store.Apply(c.HomeID, state.ContestOutcome{
		Won:           c.HomeWon(),
		Home:          true,
		PointsFor:     c.HomeScore,
		PointsAgainst: c.AwayScore,
		When:          c.StartTime,
		Rating:        newHome,
	})
	b.store.Apply(c.AwayID, state.ContestOutcome{
		Won:           !c.HomeWon(),
		Home:          false,
		PointsFor:     c.AwayScore,
		PointsAgainst: c.HomeScore,
		When:          c.StartTime,
		Rating:        newAway,
	})

	telemetry.Metrics.ContestsProcessed.Inc()
	telemetry.Metrics.RatingUpdates.Add(2)

	return sample, emit
}

func checkOrder(contests []schedule.Contest) error {
	for i := 1; i < len(contests); i++ {
		if !contests[i-1].Before(contests[i]) {
			return fmt.Errorf("%w: contest %s at index %d does not sort after %s",
				ErrDataOrdering, contests[i].ID, i, contests[i-1].ID)
		}
	}
	return nil
}

func groupKey(c schedule.Contest) string {
	if c.League != "" {
		return c.League
	}
	return "all"
}
