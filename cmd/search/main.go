package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"time"

	"babitune/internal/config"
	"babitune/internal/corpus"
	"babitune/internal/model"
	"babitune/internal/optimize"
	"babitune/internal/trial"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Runs one search locally without Temporal or Postgres: load the task, run
// the Bayesian-optimization loop in process and write the artifacts.
func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	data, err := corpus.BuildTaskContext(cfg.DataDir, cfg.DatasetSize, cfg.Task, corpus.LoadOptions{
		OnlySupporting: cfg.OnlySupporting,
		MaxLength:      cfg.MaxStoryLength,
	})
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("loaded task %s (%s): vocab=%d story_maxlen=%d query_maxlen=%d train=%d test=%d",
		data.Task, data.DatasetSize, data.Vocab.Size(), data.StoryMaxLen, data.QueryMaxLen,
		data.Train.Len(), data.Test.Len())

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	runID := uuid.NewString()
	ev := trial.New(cfg, model.RNNBuilder{}, data)

	var mu sync.Mutex
	var results []trial.Result
	res, err := optimize.Search(ctx, ev.Objective(func(r trial.Result) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	}), optimize.Options{
		Domain:         optimize.DefaultDomain(),
		MaxIterations:  cfg.MaxIterations,
		ParallelTrials: cfg.ParallelTrials,
		InitPoints:     cfg.InitPoints,
		Seed:           seed,
		CandidatePool:  cfg.CandidatePool,
	})
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("search %s finished: best %s score=%.4f over %d trials",
		runID, res.Best.Point, res.Best.Score, len(res.Trials))

	if err := trial.WriteBestArtifacts(cfg.OutDir, trial.BestArtifact{
		Task:        data.Task,
		DatasetSize: data.DatasetSize,
		Point:       res.Best.Point,
		Score:       res.Best.Score,
		Trials:      len(res.Trials),
		Fingerprint: data.Fingerprint,
		FinishedAt:  time.Now().UTC(),
	}); err != nil {
		log.Fatal(err)
	}
	if err := trial.WriteTrialLog(cfg.OutDir, data.Task, runID, results); err != nil {
		log.Fatal(err)
	}
}
