package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Pipeline
	PipelinePath string
	ContestsPath string

	// Artifacts
	ArtifactDBPath string

	// Parallelism
	Workers int

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		PipelinePath: envStr("PIPELINE_CONFIG_PATH", "internal/config/pipeline.yaml"),
		ContestsPath: envStr("CONTESTS_PATH", "data/contests.csv"),

		ArtifactDBPath: envStr("ARTIFACT_DB_PATH", "data/artifacts.db"),

		Workers: envInt("PIPELINE_WORKERS", 4),

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
