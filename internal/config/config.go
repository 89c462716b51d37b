package config

import (
	"os"
	"strconv"
)

type Config struct {
	APIAddr           string
	TemporalAddress   string
	TemporalTaskQueue string
	PostgresURL       string
	DataDir           string
	OutDir            string
	CheckpointDir     string
	Task              string
	DatasetSize       string
	OnlySupporting    bool
	MaxStoryLength    int
	RepeatCycles      int
	ValidationSplit   float64
	MaxIterations     int
	ParallelTrials    int
	InitPoints        int
	CandidatePool     int
	Seed              int64
}

func Load() Config {
	return Config{
		APIAddr:           getenv("BABITUNE_API_ADDR", ":8080"),
		TemporalAddress:   getenv("BABITUNE_TEMPORAL_ADDRESS", "localhost:7233"),
		TemporalTaskQueue: getenv("BABITUNE_TEMPORAL_TASK_QUEUE", "babitune"),
		PostgresURL:       getenv("BABITUNE_POSTGRES_URL", ""),
		DataDir:           getenv("BABITUNE_DATA_DIR", "./data/tasks_1-20_v1-2"),
		OutDir:            getenv("BABITUNE_OUT_DIR", "./data/out"),
		CheckpointDir:     getenv("BABITUNE_CHECKPOINT_DIR", "./data/checkpoints"),
		Task:              getenv("BABITUNE_TASK", "qa1_single-supporting-fact"),
		DatasetSize:       getenv("BABITUNE_DATASET_SIZE", "en"),
		OnlySupporting:    getenvBool("BABITUNE_ONLY_SUPPORTING", false),
		MaxStoryLength:    getenvInt("BABITUNE_MAX_STORY_LENGTH", 0),
		RepeatCycles:      getenvInt("BABITUNE_REPEAT_CYCLES", 5),
		ValidationSplit:   getenvFloat("BABITUNE_VALIDATION_SPLIT", 0.05),
		MaxIterations:     getenvInt("BABITUNE_MAX_ITERATIONS", 20),
		ParallelTrials:    getenvInt("BABITUNE_PARALLEL_TRIALS", 1),
		InitPoints:        getenvInt("BABITUNE_INIT_POINTS", 5),
		CandidatePool:     getenvInt("BABITUNE_CANDIDATE_POOL", 2000),
		Seed:              int64(getenvInt("BABITUNE_SEED", 0)),
	}
}

func getenv(k, fallback string) string {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	return v
}

func getenvInt(k string, fallback int) int {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvFloat(k string, fallback float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvBool(k string, fallback bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
