package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charleschow/pregame/internal/config"
	"github.com/charleschow/pregame/internal/core/artifacts"
	"github.com/charleschow/pregame/internal/core/dataset"
	"github.com/charleschow/pregame/internal/core/features"
	"github.com/charleschow/pregame/internal/core/rating"
	"github.com/charleschow/pregame/internal/core/state"
	"github.com/charleschow/pregame/internal/core/train"
	"github.com/charleschow/pregame/internal/schedule"
	"github.com/charleschow/pregame/internal/telemetry"
)

func main() {
	cfg := config.Load()

	contestsPath := flag.String("contests", cfg.ContestsPath, "CSV of completed contests in chronological order")
	pipelinePath := flag.String("config", cfg.PipelinePath, "pipeline YAML config")
	dbPath := flag.String("db", cfg.ArtifactDBPath, "artifact database path")
	workers := flag.Int("workers", cfg.Workers, "parallel workers for batches and grid search")
	resume := flag.Bool("resume", false, "restore entity state from the latest snapshot before building")
	flag.Parse()

	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *contestsPath, *pipelinePath, *dbPath, *workers, *resume); err != nil {
		telemetry.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, contestsPath, pipelinePath, dbPath string, workers int, resume bool) error {
	pipe, err := config.LoadPipeline(pipelinePath)
	if err != nil {
		return err
	}

	contests, err := schedule.LoadCSV(contestsPath, nil)
	if err != nil {
		return err
	}
	telemetry.Infof("loaded %d completed contests from %s", len(contests), contestsPath)

	store, err := artifacts.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	states := state.NewStore(pipe.WindowSize, pipe.Elo.InitialRating)
	if resume {
		blob, ok, err := store.LatestSnapshot()
		if err != nil {
			return err
		}
		if ok {
			if err := states.Restore(blob); err != nil {
				return err
			}
			telemetry.Infof("resumed entity state: %d entities", states.Count())
		}
	}

	extractor, err := features.New(features.Config{
		Version:        pipe.FeatureVersion,
		WindowSize:     pipe.WindowSize,
		Decay:          pipe.Decay,
		MinHistory:     pipe.MinHistory,
		RestCapDays:    pipe.RestCapDays,
		StreakCap:      pipe.StreakCap,
		PythagoreanExp: pipe.PythagoreanExp,
	})
	if err != nil {
		return err
	}

	elo := rating.Params{
		K:             pipe.Elo.KFactor,
		InitialRating: pipe.Elo.InitialRating,
		AvgMargin:     pipe.Elo.AvgMargin,
	}

	builder := dataset.NewBuilder(states, extractor, elo, pipe.IncludeColdStart)
	samples, err := builder.RunParallel(ctx, contests, workers)
	if err != nil {
		return err
	}
	telemetry.Infof("built %d samples (%d contests skipped for cold start)",
		len(samples), telemetry.Metrics.ColdStartSkips.Value())

	part, err := dataset.Split(samples, pipe.Split)
	if err != nil {
		return err
	}
	telemetry.Infof("split: train=%d val=%d test=%d", len(part.Train), len(part.Val), len(part.Test))

	if pipe.ScaleFeatures {
		// Samples share feature storage with the partition, so the
		// chronological hold-out sees the same train-fitted transform.
		dataset.ScalePartition(&part)
	}

	grid := make([]train.Params, len(pipe.Grid))
	for i, g := range pipe.Grid {
		grid[i] = train.Params(g)
	}

	evaluator := train.Evaluator{
		Factory: train.LogisticFactory,
		Grid:    grid,
		Workers: workers,
	}
	report, err := evaluator.Run(ctx, part, samples, extractor.Manifest())
	if err != nil {
		return err
	}

	blob, err := report.JSON()
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	fmt.Println(string(blob))

	if err := store.SavePartition(report.RunID, part); err != nil {
		return err
	}
	snapshot, err := states.Snapshot()
	if err != nil {
		return err
	}
	if err := store.SaveSnapshot(report.RunID, snapshot); err != nil {
		return err
	}
	if err := store.SaveReport(report.RunID, blob); err != nil {
		return err
	}

	telemetry.Infof("run %s: test accuracy %.4f (%d/%d combinations evaluated), artifacts in %s",
		report.RunID, report.Accuracy, report.CombinationsOK, report.CombinationsTotal, dbPath)
	return nil
}
