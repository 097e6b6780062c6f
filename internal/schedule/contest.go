// Package schedule defines the completed-contest record the pipeline
// consumes. Contests are immutable; their ordering key is (StartTime, ID)
// with the ID breaking start-time ties deterministically.
package schedule

import "time"

type Contest struct {
	ID        string
	StartTime time.Time
	HomeID    string
	AwayID    string
	HomeScore int
	AwayScore int
	Venue     string
	League    string
}

func (c Contest) HomeWon() bool {
	return c.HomeScore > c.AwayScore
}

// Margin is the absolute winning margin.
func (c Contest) Margin() int {
	m := c.HomeScore - c.AwayScore
	if m < 0 {
		m = -m
	}
	return m
}

// Before reports whether c sorts strictly before o under (StartTime, ID).
func (c Contest) Before(o Contest) bool {
	if !c.StartTime.Equal(o.StartTime) {
		return c.StartTime.Before(o.StartTime)
	}
	return c.ID < o.ID
}
