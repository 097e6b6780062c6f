package dataset

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/charleschow/pregame/internal/schedule"
	"github.com/charleschow/pregame/internal/telemetry"
)

// Batches partitions the ordered stream into maximal consecutive runs in
// which no entity appears twice. Contests within a batch touch disjoint
// entities, so their extract+apply steps can run in parallel; batches
// themselves must commit strictly in order.
func Batches(contests []schedule.Contest) [][]schedule.Contest {
	var batches [][]schedule.Contest

	seen := make(map[string]struct{})
	start := 0
	for i, c := range contests {
		_, homeDup := seen[c.HomeID]
		_, awayDup := seen[c.AwayID]
		if homeDup || awayDup {
			batches = append(batches, contests[start:i])
			seen = make(map[string]struct{})
			start = i
		}
		seen[c.HomeID] = struct{}{}
		seen[c.AwayID] = struct{}{}
	}
	if start < len(contests) {
		batches = append(batches, contests[start:])
	}
	return batches
}

// RunParallel is Run with entity-disjoint batch parallelism. Sample order
// is fixed by contest order, not goroutine scheduling, so the output is
// identical to the sequential pass.
func (b *Builder) RunParallel(ctx context.Context, contests []schedule.Contest, workers int) ([]Sample, error) {
	if err := checkOrder(contests); err != nil {
		return nil, err
	}
	if workers <= 1 {
		return b.Run(contests)
	}

	results := make([]Sample, len(contests))
	emitted := make([]bool, len(contests))

	offset := 0
	for _, batch := range Batches(contests) {
		g, _ := errgroup.WithContext(ctx)
		g.SetLimit(workers)

		for i := range batch {
			idx := offset + i
			c := batch[i]
			g.Go(func() error {
				results[idx], emitted[idx] = b.process(c)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		offset += len(batch)
		telemetry.Metrics.BatchesCommitted.Inc()
	}

	samples := make([]Sample, 0, len(contests))
	for i, ok := range emitted {
		if ok {
			samples = append(samples, results[i])
		}
	}
	return samples, nil
}
