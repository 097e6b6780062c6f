package dataset

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/charleschow/pregame/internal/config"
)

// Split stratifies samples by (group key, label) and carves each stratum
// into train/val/test by the configured ratios. The shuffle runs on a
// single seeded PRNG over strata visited in sorted order, so the same
// seed always yields the same partition, byte for byte.
func Split(samples []Sample, cfg config.SplitParams) (Partition, error) {
	if cfg.Train <= 0 || cfg.Val < 0 || cfg.Test < 0 {
		return Partition{}, fmt.Errorf("%w: split ratios must be non-negative with train > 0", config.ErrConfiguration)
	}
	if sum := cfg.Train + cfg.Val + cfg.Test; math.Abs(sum-1) > 1e-9 {
		return Partition{}, fmt.Errorf("%w: split ratios must sum to 1, got %g", config.ErrConfiguration, sum)
	}

	strata := make(map[string][]int)
	for i, s := range samples {
		key := fmt.Sprintf("%s|%d", s.GroupKey, s.Label)
		strata[key] = append(strata[key], i)
	}

	keys := make([]string, 0, len(strata))
	for k := range strata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rng := rand.New(rand.NewSource(cfg.Seed))

	var p Partition
	for _, k := range keys {
		idx := strata[k]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		n := float64(len(idx))
		cut1 := int(math.Round(n * cfg.Train))
		cut2 := int(math.Round(n * (cfg.Train + cfg.Val)))
		if cut2 < cut1 {
			cut2 = cut1
		}
		if cut2 > len(idx) {
			cut2 = len(idx)
		}

		for _, i := range idx[:cut1] {
			p.Train = append(p.Train, samples[i])
		}
		for _, i := range idx[cut1:cut2] {
			p.Val = append(p.Val, samples[i])
		}
		for _, i := range idx[cut2:] {
			p.Test = append(p.Test, samples[i])
		}
	}

	return p, nil
}
