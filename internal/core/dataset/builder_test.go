package dataset

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/pregame/internal/core/features"
	"github.com/charleschow/pregame/internal/core/rating"
	"github.com/charleschow/pregame/internal/core/state"
	"github.com/charleschow/pregame/internal/schedule"
)

func newTestBuilder(t *testing.T, minHistory int) (*Builder, *state.Store, *features.Extractor) {
	t.Helper()
	ex, err := features.New(features.Config{
		Version:        "test",
		WindowSize:     10,
		Decay:          0.85,
		MinHistory:     minHistory,
		RestCapDays:    14,
		StreakCap:      10,
		PythagoreanExp: 13.91,
	})
	require.NoError(t, err)

	store := state.NewStore(10, 1500)
	elo := rating.Params{K: 24, InitialRating: 1500, AvgMargin: 10}
	return NewBuilder(store, ex, elo, false), store, ex
}

func contest(id string, day int, home, away string, hs, as int) schedule.Contest {
	return schedule.Contest{
		ID:        id,
		StartTime: time.Date(2025, 1, 1, 19, 0, 0, 0, time.UTC).AddDate(0, 0, day),
		HomeID:    home,
		AwayID:    away,
		HomeScore: hs,
		AwayScore: as,
		League:    "nba",
	}
}

func featureIdx(t *testing.T, ex *features.Extractor, name string) int {
	t.Helper()
	for i, n := range ex.Manifest().Names {
		if n == name {
			return i
		}
	}
	t.Fatalf("feature %q not in manifest", name)
	return -1
}

func TestRunSkipsColdStartButAppliesState(t *testing.T) {
	b, store, _ := newTestBuilder(t, 2)

	contests := []schedule.Contest{
		contest("1", 0, "a", "b", 100, 90),
		contest("2", 1, "a", "b", 95, 99),
		contest("3", 2, "b", "a", 101, 100),
		contest("4", 3, "a", "b", 110, 104),
	}

	samples, err := b.Run(contests)
	require.NoError(t, err)

	// First two contests fall below the history threshold; their samples
	// are skipped but their outcomes still accumulate.
	assert.Len(t, samples, 2)
	assert.Equal(t, "3", samples[0].ContestID)
	assert.Equal(t, "4", samples[1].ContestID)

	assert.Equal(t, 4, store.Get("a").GamesPlayed)
	assert.Equal(t, 4, store.Get("b").GamesPlayed)
}

func TestRunLabelsHomeWin(t *testing.T) {
	b, _, _ := newTestBuilder(t, 0)

	samples, err := b.Run([]schedule.Contest{
		contest("1", 0, "a", "b", 100, 90),
		contest("2", 1, "a", "b", 88, 92),
	})
	require.NoError(t, err)
	require.Len(t, samples, 2)

	assert.Equal(t, 1, samples[0].Label)
	assert.Equal(t, 0, samples[1].Label)
	assert.Equal(t, "nba", samples[0].GroupKey)
}

func TestRunRejectsOutOfOrderStream(t *testing.T) {
	b, _, _ := newTestBuilder(t, 0)

	_, err := b.Run([]schedule.Contest{
		contest("1", 5, "a", "b", 100, 90),
		contest("2", 3, "c", "d", 100, 90),
	})
	require.ErrorIs(t, err, ErrDataOrdering)
}

func TestRunBreaksTimeTiesByID(t *testing.T) {
	b, _, _ := newTestBuilder(t, 0)

	same := []schedule.Contest{
		contest("a1", 0, "a", "b", 100, 90),
		contest("a2", 0, "c", "d", 100, 90),
	}
	_, err := b.Run(same)
	assert.NoError(t, err)

	b2, _, _ := newTestBuilder(t, 0)
	_, err = b2.Run([]schedule.Contest{same[1], same[0]})
	assert.ErrorIs(t, err, ErrDataOrdering)
}

func TestNoFutureLeakage(t *testing.T) {
	// A sample's features must be identical whether or not later
	// contests exist at all.
	stream := []schedule.Contest{
		contest("1", 0, "a", "b", 100, 90),
		contest("2", 1, "b", "c", 95, 99),
		contest("3", 2, "c", "a", 101, 100),
		contest("4", 3, "a", "b", 110, 104),
		contest("5", 4, "b", "c", 90, 80),
		contest("6", 5, "c", "a", 85, 99),
		contest("7", 6, "a", "c", 120, 112),
		contest("8", 7, "b", "a", 97, 103),
	}

	full, _, _ := newTestBuilder(t, 1)
	fullSamples, err := full.Run(stream)
	require.NoError(t, err)

	prefix, _, _ := newTestBuilder(t, 1)
	prefixSamples, err := prefix.Run(stream[:5])
	require.NoError(t, err)

	require.NotEmpty(t, prefixSamples)
	assert.Equal(t, prefixSamples, fullSamples[:len(prefixSamples)])
}

func TestRunDeterministic(t *testing.T) {
	stream := []schedule.Contest{
		contest("1", 0, "a", "b", 100, 90),
		contest("2", 1, "b", "c", 95, 99),
		contest("3", 2, "c", "a", 101, 100),
		contest("4", 3, "a", "c", 110, 104),
	}

	b1, _, _ := newTestBuilder(t, 0)
	s1, err := b1.Run(stream)
	require.NoError(t, err)

	b2, _, _ := newTestBuilder(t, 0)
	s2, err := b2.Run(stream)
	require.NoError(t, err)

	assert.Equal(t, s1, s2)
}

func TestWinStreakShowsInStateAndMomentum(t *testing.T) {
	b, store, ex := newTestBuilder(t, 0)

	_, err := b.Run([]schedule.Contest{
		contest("1", 0, "a", "b", 100, 90),
		contest("2", 1, "b", "a", 88, 92),
		contest("3", 2, "a", "b", 105, 99),
	})
	require.NoError(t, err)

	a := store.Get("a")
	assert.Equal(t, state.StreakWin, a.StreakType)
	assert.Equal(t, 3, a.StreakLength)

	next := contest("4", 3, "a", "b", 0, 0)
	v := ex.Extract(store.Get("a"), store.Get("b"), next.StartTime)
	assert.Greater(t, v[featureIdx(t, ex, "home_momentum")], 0.0)
	assert.Equal(t, 3.0, v[featureIdx(t, ex, "home_streak")])
	assert.Equal(t, -3.0, v[featureIdx(t, ex, "away_streak")])
}

func TestRatingMovesThroughBuilder(t *testing.T) {
	b, store, _ := newTestBuilder(t, 0)

	_, err := b.Run([]schedule.Contest{contest("1", 0, "a", "b", 100, 90)})
	require.NoError(t, err)

	winner := store.Get("a").Rating
	loser := store.Get("b").Rating
	assert.Greater(t, winner, 1500.0)
	assert.Less(t, loser, 1500.0)
	assert.InDelta(t, 3000.0, winner+loser, 1e-9) // MOV scales both sides equally
}

func TestBatchesEntityDisjoint(t *testing.T) {
	stream := []schedule.Contest{
		contest("1", 0, "a", "b", 1, 0),
		contest("2", 0, "c", "d", 1, 0),
		contest("3", 1, "a", "c", 1, 0),
		contest("4", 1, "b", "d", 1, 0),
		contest("5", 2, "a", "d", 1, 0),
	}

	batches := Batches(stream)
	require.Len(t, batches, 3)

	var flattened []schedule.Contest
	for _, batch := range batches {
		seen := make(map[string]bool)
		for _, c := range batch {
			assert.False(t, seen[c.HomeID], "entity %s repeated in batch", c.HomeID)
			assert.False(t, seen[c.AwayID], "entity %s repeated in batch", c.AwayID)
			seen[c.HomeID] = true
			seen[c.AwayID] = true
		}
		flattened = append(flattened, batch...)
	}
	assert.Equal(t, stream, flattened)
}

func TestRunParallelMatchesSequential(t *testing.T) {
	stream := []schedule.Contest{
		contest("1", 0, "a", "b", 100, 90),
		contest("2", 0, "c", "d", 95, 99),
		contest("3", 1, "a", "c", 101, 100),
		contest("4", 1, "b", "d", 90, 92),
		contest("5", 2, "a", "d", 110, 104),
		contest("6", 2, "b", "c", 99, 98),
		contest("7", 3, "d", "c", 87, 90),
		contest("8", 3, "b", "a", 112, 118),
	}

	serial, _, _ := newTestBuilder(t, 1)
	want, err := serial.Run(stream)
	require.NoError(t, err)

	parallel, _, _ := newTestBuilder(t, 1)
	got, err := parallel.RunParallel(context.Background(), stream, 4)
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestRunParallelHonorsCancellation(t *testing.T) {
	stream := []schedule.Contest{
		contest("1", 0, "a", "b", 100, 90),
		contest("2", 1, "a", "b", 95, 99),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b, _, _ := newTestBuilder(t, 0)
	_, err := b.RunParallel(ctx, stream, 4)
	assert.ErrorIs(t, err, context.Canceled)
}
