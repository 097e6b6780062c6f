package state

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2025, 1, 1, 19, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestGetIsSideEffectFree(t *testing.T) {
	s := NewStore(10, 1500)

	st := s.Get("bulls")
	assert.Equal(t, "bulls", st.EntityID)
	assert.Equal(t, 1500.0, st.Rating)
	assert.Zero(t, st.GamesPlayed)

	// Reading an unseen entity must not create it.
	assert.Equal(t, 0, s.Count())

	// Repeated reads return the same default.
	assert.Equal(t, st, s.Get("bulls"))
}

func TestApplyCounters(t *testing.T) {
	s := NewStore(10, 1500)

	s.Apply("bulls", ContestOutcome{Won: true, Home: true, PointsFor: 110, PointsAgainst: 98, When: day(0), Rating: 1512})
	s.Apply("bulls", ContestOutcome{Won: false, Home: false, PointsFor: 95, PointsAgainst: 101, When: day(2), Rating: 1504})

	st := s.Get("bulls")
	assert.Equal(t, 2, st.GamesPlayed)
	assert.Equal(t, 1, st.Wins)
	assert.Equal(t, 1, st.Losses)
	assert.Equal(t, 1, st.HomeGames)
	assert.Equal(t, 1, st.HomeWins)
	assert.Equal(t, 1, st.AwayGames)
	assert.Equal(t, 0, st.AwayWins)
	assert.Equal(t, 205, st.PointsFor)
	assert.Equal(t, 199, st.PointsAgainst)
	assert.Equal(t, 1504.0, st.Rating)
	assert.Equal(t, day(2), st.LastContestTime)
}

func TestWindowEviction(t *testing.T) {
	s := NewStore(3, 1500)

	results := []bool{true, true, false, true, false}
	for i, won := range results {
		s.Apply("spurs", ContestOutcome{Won: won, PointsFor: 100, PointsAgainst: 100, When: day(i)})
	}

	st := s.Get("spurs")
	require.Len(t, st.Window, 3)
	// Oldest first: the surviving three are F, W, L.
	assert.Equal(t, []Result{Loss, Win, Loss}, st.Window)
}

func TestStreakTransitions(t *testing.T) {
	s := NewStore(10, 1500)

	s.Apply("heat", ContestOutcome{Won: true, When: day(0)})
	s.Apply("heat", ContestOutcome{Won: true, When: day(1)})
	s.Apply("heat", ContestOutcome{Won: true, When: day(2)})

	st := s.Get("heat")
	assert.Equal(t, StreakWin, st.StreakType)
	assert.Equal(t, 3, st.StreakLength)
	assert.Equal(t, 3, st.SignedStreak())

	// One loss flips the streak and resets its length.
	s.Apply("heat", ContestOutcome{Won: false, When: day(3)})
	st = s.Get("heat")
	assert.Equal(t, StreakLoss, st.StreakType)
	assert.Equal(t, 1, st.StreakLength)
	assert.Equal(t, -1, st.SignedStreak())
}

func TestGetReturnsIsolatedCopy(t *testing.T) {
	s := NewStore(10, 1500)
	s.Apply("nets", ContestOutcome{Won: true, When: day(0)})

	st := s.Get("nets")
	st.Window[0] = Loss
	st.Wins = 99

	fresh := s.Get("nets")
	assert.Equal(t, []Result{Win}, fresh.Window)
	assert.Equal(t, 1, fresh.Wins)
}

func TestConcurrentApplyDisjointEntities(t *testing.T) {
	s := NewStore(10, 1500)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		id := string(rune('a' + i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Apply(id, ContestOutcome{Won: j%2 == 0, When: day(j)})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 8, s.Count())
	for i := 0; i < 8; i++ {
		st := s.Get(string(rune('a' + i)))
		assert.Equal(t, 50, st.GamesPlayed)
		assert.Equal(t, 25, st.Wins)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := NewStore(5, 1500)
	s.Apply("bulls", ContestOutcome{Won: true, Home: true, PointsFor: 110, PointsAgainst: 98, When: day(0), Rating: 1512})
	s.Apply("heat", ContestOutcome{Won: false, Home: false, PointsFor: 98, PointsAgainst: 110, When: day(0), Rating: 1488})

	blob, err := s.Snapshot()
	require.NoError(t, err)

	restored := NewStore(5, 1500)
	require.NoError(t, restored.Restore(blob))

	assert.Equal(t, s.Count(), restored.Count())
	assert.Equal(t, s.Get("bulls"), restored.Get("bulls"))
	assert.Equal(t, s.Get("heat"), restored.Get("heat"))
}

func TestSnapshotDeterministic(t *testing.T) {
	s := NewStore(5, 1500)
	s.Apply("zeta", ContestOutcome{Won: true, When: day(0)})
	s.Apply("alpha", ContestOutcome{Won: false, When: day(0)})

	a, err := s.Snapshot()
	require.NoError(t, err)
	b, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRestoreRejectsWindowMismatch(t *testing.T) {
	s := NewStore(5, 1500)
	s.Apply("bulls", ContestOutcome{Won: true, When: day(0)})

	blob, err := s.Snapshot()
	require.NoError(t, err)

	other := NewStore(10, 1500)
	assert.Error(t, other.Restore(blob))
}
