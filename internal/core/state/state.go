// Package state owns the per-entity running totals the feature extractor
// reads and the dataset builder advances. All mutation goes through
// Store.Apply, strictly in contest chronological order, exactly once per
// entity per contest.
package state

import "time"

// Result is a single entry in the rolling outcome window.
type Result int8

const (
	Win  Result = 1
	Loss Result = -1
)

type StreakType string

const (
	StreakNone StreakType = ""
	StreakWin  StreakType = "W"
	StreakLoss StreakType = "L"
)

type EntityState struct {
	EntityID string `json:"entity_id"`

	GamesPlayed int `json:"games_played"`
	Wins        int `json:"wins"`
	Losses      int `json:"losses"`

	HomeGames int `json:"home_games"`
	HomeWins  int `json:"home_wins"`
	AwayGames int `json:"away_games"`
	AwayWins  int `json:"away_wins"`

	PointsFor     int `json:"points_for"`
	PointsAgainst int `json:"points_against"`

	Rating float64 `json:"rating"`

	// Window holds the last W results, oldest first.
	Window []Result `json:"window"`

	StreakType   StreakType `json:"streak_type"`
	StreakLength int        `json:"streak_length"`

	LastContestTime time.Time `json:"last_contest_time"`
}

// ContestOutcome is one entity's view of a finished contest, applied to
// its state after the feature extractor has read both pre-contest states.
type ContestOutcome struct {
	Won           bool
	Home          bool
	PointsFor     int
	PointsAgainst int
	When          time.Time

	// Rating is the post-contest rating computed by the rating updater
	// from both entities' pre-contest ratings.
	Rating float64
}

// WinRate is wins over games played; ok is false with no history.
func (s EntityState) WinRate() (rate float64, ok bool) {
	if s.GamesPlayed == 0 {
		return 0, false
	}
	return float64(s.Wins) / float64(s.GamesPlayed), true
}

// SplitWinRate is the win rate restricted to home or away games.
func (s EntityState) SplitWinRate(home bool) (rate float64, ok bool) {
	games, wins := s.AwayGames, s.AwayWins
	if home {
		games, wins = s.HomeGames, s.HomeWins
	}
	if games == 0 {
		return 0, false
	}
	return float64(wins) / float64(games), true
}

// SignedStreak is +length for a win streak, -length for a loss streak.
func (s EntityState) SignedStreak() int {
	switch s.StreakType {
	case StreakWin:
		return s.StreakLength
	case StreakLoss:
		return -s.StreakLength
	default:
		return 0
	}
}

func (s EntityState) clone() EntityState {
	c := s
	c.Window = append([]Result(nil), s.Window...)
	return c
}

func (s *EntityState) apply(out ContestOutcome, window int) {
	s.GamesPlayed++
	s.PointsFor += out.PointsFor
	s.PointsAgainst += out.PointsAgainst

	if out.Home {
		s.HomeGames++
	} else {
		s.AwayGames++
	}

	var result Result
	if out.Won {
		result = Win
		s.Wins++
		if out.Home {
			s.HomeWins++
		} else {
			s.AwayWins++
		}
	} else {
		result = Loss
		s.Losses++
	}

	s.Window = append(s.Window, result)
	if len(s.Window) > window {
		s.Window = s.Window[len(s.Window)-window:]
	}

	streak := StreakLoss
	if out.Won {
		streak = StreakWin
	}
	if s.StreakType == streak {
		s.StreakLength++
	} else {
		s.StreakType = streak
		s.StreakLength = 1
	}

	s.Rating = out.Rating
	s.LastContestTime = out.When
}
