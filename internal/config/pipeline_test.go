package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPipelineIsValid(t *testing.T) {
	assert.NoError(t, DefaultPipeline().Validate())
}

func TestValidateRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Pipeline)
	}{
		{"empty feature version", func(p *Pipeline) { p.FeatureVersion = "" }},
		{"non-positive window", func(p *Pipeline) { p.WindowSize = 0 }},
		{"decay out of range", func(p *Pipeline) { p.Decay = 1.2 }},
		{"negative min history", func(p *Pipeline) { p.MinHistory = -1 }},
		{"zero streak cap", func(p *Pipeline) { p.StreakCap = 0 }},
		{"zero k factor", func(p *Pipeline) { p.Elo.KFactor = 0 }},
		{"ratios do not sum to one", func(p *Pipeline) { p.Split.Train = 0.5 }},
		{"zero train ratio", func(p *Pipeline) { p.Split = SplitParams{Train: 0, Val: 0.5, Test: 0.5} }},
		{"empty grid", func(p *Pipeline) { p.Grid = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPipeline()
			tt.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestLoadPipeline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
feature_version: "v9"
window_size: 6
split:
  train: 0.8
  val: 0.1
  test: 0.1
  seed: 7
grid:
  - { learning_rate: 0.2, iterations: 100 }
`), 0o644))

	p, err := LoadPipeline(path)
	require.NoError(t, err)

	assert.Equal(t, "v9", p.FeatureVersion)
	assert.Equal(t, 6, p.WindowSize)
	assert.Equal(t, int64(7), p.Split.Seed)
	assert.Len(t, p.Grid, 1)
	// Unset fields keep their defaults.
	assert.Equal(t, 0.85, p.Decay)
	assert.Equal(t, 24.0, p.Elo.KFactor)
}

func TestLoadPipelineRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window_size: -3\n"), 0o644))

	_, err := LoadPipeline(path)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestLoadPipelineMissingFile(t *testing.T) {
	_, err := LoadPipeline(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
