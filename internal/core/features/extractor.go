// Package features turns two pre-contest entity states into a fixed-schema
// numeric vector. The extractor never touches post-contest information:
// everything it reads was known strictly before the contest started.
package features

import (
	"fmt"
	"math"
	"time"

	"github.com/charleschow/pregame/internal/core/rating"
	"github.com/charleschow/pregame/internal/core/state"
)

// Neutral fallbacks for entities below the history threshold. Rates sit at
// a coin flip, signed quantities at zero. Deliberate constants, not the
// accidental zero value of a missing computation.
const (
	neutralRate   = 0.5
	neutralSigned = 0.0
)

type Vector []float64

type Config struct {
	Version        string
	WindowSize     int
	Decay          float64
	MinHistory     int
	RestCapDays    float64
	StreakCap      int
	PythagoreanExp float64
}

type Extractor struct {
	cfg      Config
	manifest Manifest
}

func New(cfg Config) (*Extractor, error) {
	if cfg.Version == "" {
		return nil, fmt.Errorf("feature version must be set")
	}
	if cfg.WindowSize <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", cfg.WindowSize)
	}
	if cfg.Decay <= 0 || cfg.Decay > 1 {
		return nil, fmt.Errorf("decay must be in (0, 1], got %g", cfg.Decay)
	}
	if cfg.StreakCap <= 0 {
		return nil, fmt.Errorf("streak cap must be positive, got %d", cfg.StreakCap)
	}
	if cfg.PythagoreanExp <= 0 {
		return nil, fmt.Errorf("pythagorean exponent must be positive, got %g", cfg.PythagoreanExp)
	}
	return &Extractor{
		cfg:      cfg,
		manifest: Manifest{Version: cfg.Version, Names: featureNames},
	}, nil
}

func (e *Extractor) Manifest() Manifest { return e.manifest }

// HasHistory reports whether an entity has played enough contests for its
// rate features to carry signal.
func (e *Extractor) HasHistory(s state.EntityState) bool {
	return s.GamesPlayed >= e.cfg.MinHistory
}

// Extract builds the feature vector for one contest from both entities'
// pre-contest states. startTime is the contest's scheduled start, used for
// rest-day and calendar features.
func (e *Extractor) Extract(home, away state.EntityState, startTime time.Time) Vector {
	homeHist := e.HasHistory(home)
	awayHist := e.HasHistory(away)

	h := e.sideValues(home, true, homeHist, startTime)
	a := e.sideValues(away, false, awayHist, startTime)

	winRateDiff := neutralSigned
	if homeHist && awayHist {
		winRateDiff = h.winRate - a.winRate
	}

	v := make(Vector, 0, len(featureNames))
	v = append(v,
		h.winRate,
		a.winRate,
		h.venueWinRate,
		a.venueWinRate,
		h.pointsForPG,
		a.pointsForPG,
		h.pointsAgainstPG,
		a.pointsAgainstPG,
		h.pointDiffPG,
		a.pointDiffPG,
		h.pythagorean,
		a.pythagorean,
		h.momentum,
		a.momentum,
		h.streak,
		a.streak,
		h.restDays,
		a.restDays,
		winRateDiff,
		home.Rating-away.Rating,
		rating.WinProb(home.Rating, away.Rating),
		1.0, // home advantage indicator
		float64(startTime.Weekday())/7.0,
		float64(startTime.Month())/12.0,
		boolFeature(homeHist),
		boolFeature(awayHist),
	)

	if len(v) != len(featureNames) {
		panic(fmt.Sprintf("feature vector length %d does not match manifest length %d", len(v), len(featureNames)))
	}
	return v
}

type sideFeatures struct {
	winRate         float64
	venueWinRate    float64
	pointsForPG     float64
	pointsAgainstPG float64
	pointDiffPG     float64
	pythagorean     float64
	momentum        float64
	streak          float64
	restDays        float64
}

func (e *Extractor) sideValues(s state.EntityState, home, hasHistory bool, startTime time.Time) sideFeatures {
	if !hasHistory {
		return sideFeatures{
			winRate:      neutralRate,
			venueWinRate: neutralRate,
			pythagorean:  neutralRate,
			momentum:     neutralSigned,
			streak:       neutralSigned,
			restDays:     e.restDays(s, startTime),
		}
	}

	games := float64(s.GamesPlayed)
	winRate, _ := s.WinRate()

	venueRate := winRate // fall back to overall record with no venue history
	if r, ok := s.SplitWinRate(home); ok {
		venueRate = r
	}

	return sideFeatures{
		winRate:         winRate,
		venueWinRate:    venueRate,
		pointsForPG:     float64(s.PointsFor) / games,
		pointsAgainstPG: float64(s.PointsAgainst) / games,
		pointDiffPG:     float64(s.PointsFor-s.PointsAgainst) / games,
		pythagorean:     e.pythagorean(s),
		momentum:        e.momentum(s.Window),
		streak:          e.cappedStreak(s),
		restDays:        e.restDays(s, startTime),
	}
}

// pythagorean is PF^e / (PF^e + PA^e), the classic expected win share.
func (e *Extractor) pythagorean(s state.EntityState) float64 {
	pf := math.Pow(float64(s.PointsFor), e.cfg.PythagoreanExp)
	pa := math.Pow(float64(s.PointsAgainst), e.cfg.PythagoreanExp)
	if pf+pa == 0 {
		return neutralRate
	}
	return pf / (pf + pa)
}

// momentum is a decay-weighted average over the rolling window squashed
// through tanh: recent results dominate, output bounded to [-1, 1].
func (e *Extractor) momentum(window []state.Result) float64 {
	n := len(window)
	if n == 0 {
		return neutralSigned
	}

	var weighted, norm float64
	for i, r := range window {
		w := math.Pow(e.cfg.Decay, float64(n-1-i))
		weighted += w * float64(r)
		norm += w
	}
	return math.Tanh(weighted / norm)
}

func (e *Extractor) cappedStreak(s state.EntityState) float64 {
	streak := s.SignedStreak()
	if streak > e.cfg.StreakCap {
		streak = e.cfg.StreakCap
	}
	if streak < -e.cfg.StreakCap {
		streak = -e.cfg.StreakCap
	}
	return float64(streak)
}

// restDays since the last contest, capped. A never-seen entity counts as
// fully rested.
func (e *Extractor) restDays(s state.EntityState, startTime time.Time) float64 {
	if s.LastContestTime.IsZero() {
		return e.cfg.RestCapDays
	}
	days := startTime.Sub(s.LastContestTime).Hours() / 24
	if days < 0 {
		days = 0
	}
	if days > e.cfg.RestCapDays {
		days = e.cfg.RestCapDays
	}
	return days
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
