package telemetry

import (
	"sync/atomic"
)

type Counter struct {
	val atomic.Int64
}

func (c *Counter) Inc()         { c.val.Add(1) }
func (c *Counter) Add(n int64)  { c.val.Add(n) }
func (c *Counter) Value() int64 { return c.val.Load() }
func (c *Counter) Reset()       { c.val.Store(0) }

type Gauge struct {
	val atomic.Int64
}

func (g *Gauge) Set(v int64)  { g.val.Store(v) }
func (g *Gauge) Inc()         { g.val.Add(1) }
func (g *Gauge) Dec()         { g.val.Add(-1) }
func (g *Gauge) Value() int64 { return g.val.Load() }

// Metrics is the global pipeline metrics registry.
var Metrics = struct {
	ContestsProcessed Counter
	SamplesEmitted    Counter
	ColdStartSkips    Counter
	RatingUpdates     Counter
	BatchesCommitted  Counter
	GridCombosOK      Counter
	GridCombosFailed  Counter
	TrackedEntities   Gauge
}{}
