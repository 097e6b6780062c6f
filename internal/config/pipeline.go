package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrConfiguration marks fatal configuration problems. The pipeline refuses
// to start when any part of the config fails validation.
var ErrConfiguration = errors.New("invalid configuration")

type EloParams struct {
	KFactor       float64 `yaml:"k_factor"`
	InitialRating float64 `yaml:"initial_rating"`
	AvgMargin     float64 `yaml:"avg_margin"`
}

type SplitParams struct {
	Train float64 `yaml:"train"`
	Val   float64 `yaml:"val"`
	Test  float64 `yaml:"test"`
	Seed  int64   `yaml:"seed"`
}

// Pipeline holds every knob of the dataset construction and training run.
// The seed and feature version are part of the config on purpose: identical
// config + identical contest stream must reproduce identical partitions.
type Pipeline struct {
	FeatureVersion   string  `yaml:"feature_version"`
	WindowSize       int     `yaml:"window_size"`
	Decay            float64 `yaml:"decay"`
	MinHistory       int     `yaml:"min_history"`
	RestCapDays      float64 `yaml:"rest_cap_days"`
	StreakCap        int     `yaml:"streak_cap"`
	PythagoreanExp   float64 `yaml:"pythagorean_exp"`
	IncludeColdStart bool    `yaml:"include_cold_start"`
	ScaleFeatures    bool    `yaml:"scale_features"`

	Elo   EloParams   `yaml:"elo"`
	Split SplitParams `yaml:"split"`

	Grid []map[string]float64 `yaml:"grid"`
}

func DefaultPipeline() Pipeline {
	return Pipeline{
		FeatureVersion: "v2",
		WindowSize:     10,
		Decay:          0.85,
		MinHistory:     5,
		RestCapDays:    14,
		StreakCap:      10,
		PythagoreanExp: 13.91,
		ScaleFeatures:  true,
		Elo: EloParams{
			KFactor:       24,
			InitialRating: 1500,
			AvgMargin:     10,
		},
		Split: SplitParams{Train: 0.70, Val: 0.15, Test: 0.15, Seed: 42},
		Grid: []map[string]float64{
			{"learning_rate": 0.1, "iterations": 300, "l2": 0},
			{"learning_rate": 0.1, "iterations": 300, "l2": 0.01},
			{"learning_rate": 0.05, "iterations": 600, "l2": 0},
			{"learning_rate": 0.05, "iterations": 600, "l2": 0.01},
		},
	}
}

func LoadPipeline(path string) (Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("read pipeline config: %w", err)
	}

	p := DefaultPipeline()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Pipeline{}, fmt.Errorf("parse pipeline config: %w", err)
	}

	if err := p.Validate(); err != nil {
		return Pipeline{}, err
	}
	return p, nil
}

func (p Pipeline) Validate() error {
	if p.FeatureVersion == "" {
		return fmt.Errorf("%w: feature_version must be set", ErrConfiguration)
	}
	if p.WindowSize <= 0 {
		return fmt.Errorf("%w: window_size must be positive, got %d", ErrConfiguration, p.WindowSize)
	}
	if p.Decay <= 0 || p.Decay > 1 {
		return fmt.Errorf("%w: decay must be in (0, 1], got %g", ErrConfiguration, p.Decay)
	}
	if p.MinHistory < 0 {
		return fmt.Errorf("%w: min_history must be non-negative, got %d", ErrConfiguration, p.MinHistory)
	}
	if p.StreakCap <= 0 {
		return fmt.Errorf("%w: streak_cap must be positive, got %d", ErrConfiguration, p.StreakCap)
	}
	if p.PythagoreanExp <= 0 {
		return fmt.Errorf("%w: pythagorean_exp must be positive, got %g", ErrConfiguration, p.PythagoreanExp)
	}
	if p.Elo.KFactor <= 0 {
		return fmt.Errorf("%w: elo.k_factor must be positive, got %g", ErrConfiguration, p.Elo.KFactor)
	}
	if p.Elo.InitialRating <= 0 {
		return fmt.Errorf("%w: elo.initial_rating must be positive, got %g", ErrConfiguration, p.Elo.InitialRating)
	}

	s := p.Split
	if s.Train <= 0 || s.Val < 0 || s.Test < 0 {
		return fmt.Errorf("%w: split ratios must be non-negative with train > 0", ErrConfiguration)
	}
	if sum := s.Train + s.Val + s.Test; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("%w: split ratios must sum to 1, got %g", ErrConfiguration, sum)
	}

	if len(p.Grid) == 0 {
		return fmt.Errorf("%w: hyperparameter grid is empty", ErrConfiguration)
	}
	return nil
}
