package trial

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"babitune/internal/config"
	"babitune/internal/corpus"
	"babitune/internal/model"
	"babitune/internal/optimize"
	"babitune/internal/util"

	"github.com/google/uuid"
)

// Result is the outcome of evaluating one hyperparameter point.
type Result struct {
	TrialID    string         `json:"trial_id"`
	Point      optimize.Point `json:"point"`
	Score      float64        `json:"score"`
	Cycles     int            `json:"cycles"`
	Failed     bool           `json:"failed"`
	FailReason string         `json:"fail_reason,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// Evaluator scores hyperparameter points against one task's tensors. The
// task context is immutable and shared; every trial builds and trains its own
// model under a trial-unique checkpoint path, so evaluations may run
// concurrently.
type Evaluator struct {
	builder         model.Builder
	data            *corpus.TaskContext
	checkpointDir   string
	repeatCycles    int
	validationSplit float64
}

func New(cfg config.Config, builder model.Builder, data *corpus.TaskContext) *Evaluator {
	cycles := cfg.RepeatCycles
	if cycles < 1 {
		cycles = 1
	}
	return &Evaluator{
		builder:         builder,
		data:            data,
		checkpointDir:   cfg.CheckpointDir,
		repeatCycles:    cycles,
		validationSplit: cfg.ValidationSplit,
	}
}

// EvaluatePoint builds a model from the point's size parameters, checkpoints
// it, then runs the repeated reload/fit/evaluate cycles and reduces them to a
// mean test accuracy. Failures come back as a failed result, not an error:
// one bad configuration must not abort a long-running search.
func (e *Evaluator) EvaluatePoint(ctx context.Context, p optimize.Point) Result {
	res := Result{
		TrialID:   uuid.NewString(),
		Point:     p,
		StartedAt: time.Now().UTC(),
	}
	score, cycles, err := e.run(ctx, p, res.TrialID)
	res.FinishedAt = time.Now().UTC()
	res.Cycles = cycles
	if err != nil {
		res.Failed = true
		res.FailReason = err.Error()
		return res
	}
	res.Score = score
	return res
}

func (e *Evaluator) run(ctx context.Context, p optimize.Point, trialID string) (float64, int, error) {
	if p.Epochs < 1 || p.BatchSize < 1 {
		return 0, 0, fmt.Errorf("epochs and batch size must be positive, got %s", p)
	}
	spec := model.Spec{
		EmbeddingSize:      p.EmbeddingSize,
		QueryHiddenSize:    p.QueryHiddenSize,
		SentenceHiddenSize: p.SentenceHiddenSize,
		VocabSize:          e.data.Vocab.Size(),
		StoryLen:           e.data.StoryMaxLen,
		QueryLen:           e.data.QueryMaxLen,
		Seed:               time.Now().UnixNano(),
	}
	m, err := e.builder.Build(spec)
	if err != nil {
		return 0, 0, fmt.Errorf("build model: %w", err)
	}

	if err := util.EnsureDir(e.checkpointDir); err != nil {
		return 0, 0, err
	}
	checkpoint := filepath.Join(e.checkpointDir, "trial-"+trialID+".gob")
	if err := m.Save(checkpoint); err != nil {
		return 0, 0, err
	}
	defer os.Remove(checkpoint)

	// Each cycle restarts training from the same initial weights; the
	// score is the mean over the cycles actually executed.
	sum := 0.0
	cycles := 0
	for cycle := 0; cycle < e.repeatCycles; cycle++ {
		if err := ctx.Err(); err != nil {
			return 0, cycles, fmt.Errorf("trial interrupted after %d cycles: %w", cycles, err)
		}
		fresh, err := e.builder.Load(checkpoint)
		if err != nil {
			return 0, cycles, fmt.Errorf("cycle %d: reload checkpoint: %w", cycle, err)
		}
		if _, err := fresh.Fit(e.data.Train, model.FitOptions{
			Epochs:          p.Epochs,
			BatchSize:       p.BatchSize,
			ValidationSplit: e.validationSplit,
		}); err != nil {
			return 0, cycles, fmt.Errorf("cycle %d: fit: %w", cycle, err)
		}
		_, acc, err := fresh.Evaluate(e.data.Test, p.BatchSize)
		if err != nil {
			return 0, cycles, fmt.Errorf("cycle %d: evaluate: %w", cycle, err)
		}
		sum += acc
		cycles++
	}
	return sum / float64(cycles), cycles, nil
}

// Objective adapts the evaluator to the optimizer's objective contract.
// record, when non-nil, sees every completed result (used for persistence).
func (e *Evaluator) Objective(record func(Result)) optimize.Objective {
	return func(ctx context.Context, p optimize.Point) (float64, error) {
		res := e.EvaluatePoint(ctx, p)
		if record != nil {
			record(res)
		}
		if res.Failed {
			return 0, errors.New(res.FailReason)
		}
		return res.Score, nil
	}
}
