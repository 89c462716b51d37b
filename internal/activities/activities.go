package activities

import (
	"context"
	"log"
	"time"

	"babitune/internal/config"
	"babitune/internal/corpus"
	"babitune/internal/model"
	"babitune/internal/optimize"
	"babitune/internal/storage"
	"babitune/internal/trial"
)

// Activities carries the worker-side collaborators: the immutable task
// context (corpus tensors loaded once per worker), the trial evaluator and
// the optional Postgres repos. All fields are read-only after New.
type Activities struct {
	cfg       config.Config
	data      *corpus.TaskContext
	evaluator *trial.Evaluator
	domain    optimize.Domain
	runRepo   *storage.RunRepo
	trialRepo *storage.TrialRepo
}

// New loads the configured task's corpus and wires the evaluator. db may be
// nil; trial recording then becomes a no-op.
func New(cfg config.Config, db *storage.DB) (*Activities, error) {
	data, err := corpus.BuildTaskContext(cfg.DataDir, cfg.DatasetSize, cfg.Task, corpus.LoadOptions{
		OnlySupporting: cfg.OnlySupporting,
		MaxLength:      cfg.MaxStoryLength,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("loaded task %s (%s): vocab=%d story_maxlen=%d query_maxlen=%d train=%d test=%d",
		data.Task, data.DatasetSize, data.Vocab.Size(), data.StoryMaxLen, data.QueryMaxLen,
		data.Train.Len(), data.Test.Len())

	a := &Activities{
		cfg:       cfg,
		data:      data,
		evaluator: trial.New(cfg, model.RNNBuilder{}, data),
		domain:    optimize.DefaultDomain(),
	}
	if db != nil {
		a.runRepo = storage.NewRunRepo(db)
		a.trialRepo = storage.NewTrialRepo(db)
	}
	return a, nil
}

// SuggestPointsActivity fits a fresh surrogate on the trials observed so far
// and proposes the next batch. Keeping the surrogate inside an activity keeps
// the workflow deterministic.
func (a *Activities) SuggestPointsActivity(ctx context.Context, in SuggestPointsInput) (SuggestPointsOutput, error) {
	_ = ctx
	sug := optimize.NewGPSuggester(a.domain, in.Seed+int64(in.Round), a.cfg.CandidatePool)
	sug.Fit(optimize.Observations(in.Trials))
	return SuggestPointsOutput{Points: sug.Suggest(in.Count)}, nil
}

// EvaluateTrialActivity runs one full objective evaluation. Failures are
// encoded in the result rather than returned, so Temporal does not retry a
// configuration that legitimately cannot train.
func (a *Activities) EvaluateTrialActivity(ctx context.Context, in EvaluateTrialInput) (EvaluateTrialOutput, error) {
	res := a.evaluator.EvaluatePoint(ctx, in.Point)
	if res.Failed {
		log.Printf("run %s round %d: trial %s failed: %s", in.RunID, in.Round, res.TrialID, res.FailReason)
	} else {
		log.Printf("run %s round %d: trial %s %s score=%.4f", in.RunID, in.Round, res.TrialID, in.Point, res.Score)
	}
	return EvaluateTrialOutput{Result: res}, nil
}

func (a *Activities) RecordTrialActivity(ctx context.Context, in RecordTrialInput) error {
	if a.trialRepo == nil {
		return nil
	}
	return a.trialRepo.InsertTrial(ctx, storage.Trial{
		TrialID:            in.Result.TrialID,
		RunID:              in.RunID,
		Round:              in.Round,
		Epochs:             in.Result.Point.Epochs,
		BatchSize:          in.Result.Point.BatchSize,
		EmbeddingSize:      in.Result.Point.EmbeddingSize,
		QueryHiddenSize:    in.Result.Point.QueryHiddenSize,
		SentenceHiddenSize: in.Result.Point.SentenceHiddenSize,
		Score:              in.Result.Score,
		Failed:             in.Result.Failed,
		FailReason:         in.Result.FailReason,
		StartedAt:          in.Result.StartedAt,
		FinishedAt:         in.Result.FinishedAt,
	})
}

func (a *Activities) UpdateRunStatusActivity(ctx context.Context, in UpdateRunStatusInput) error {
	if a.runRepo == nil {
		return nil
	}
	if err := a.runRepo.UpdateRunStatus(ctx, in.RunID, in.Status, in.FailReason); err != nil {
		return err
	}
	if in.BestScore != nil {
		return a.runRepo.SetRunBest(ctx, in.RunID, *in.BestScore)
	}
	return nil
}

// WriteSearchResultActivity writes the legacy and structured best-point
// artifacts plus the per-run trial log.
func (a *Activities) WriteSearchResultActivity(ctx context.Context, in WriteSearchResultInput) error {
	_ = ctx
	if err := trial.WriteBestArtifacts(a.cfg.OutDir, trial.BestArtifact{
		Task:        a.data.Task,
		DatasetSize: a.data.DatasetSize,
		Point:       in.Best,
		Score:       in.Score,
		Trials:      len(in.Results),
		Fingerprint: a.data.Fingerprint,
		FinishedAt:  time.Now().UTC(),
	}); err != nil {
		return err
	}
	return trial.WriteTrialLog(a.cfg.OutDir, a.data.Task, in.RunID, in.Results)
}
