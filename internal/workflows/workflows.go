package workflows

import (
	"fmt"
	"time"

	"babitune/internal/activities"
	"babitune/internal/optimize"
	"babitune/internal/trial"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const QueryGetSearchProgress = "GetSearchProgress"

// SearchWorkflow drives one hyperparameter search run: per round it asks the
// suggest activity for the next points, fans the expensive trial evaluations
// out with ParallelTrials in flight, records completed trials and finally
// writes the best-point artifacts. Surrogate fitting and all randomness live
// in activities, keeping the workflow deterministic.
func SearchWorkflow(ctx workflow.Context, input SearchInput) (SearchOutput, error) {
	if input.MaxIterations < 1 {
		input.MaxIterations = 1
	}
	if input.ParallelTrials < 1 {
		input.ParallelTrials = 1
	}
	if input.InitPoints < 1 {
		input.InitPoints = 5
	}
	seed := input.Seed
	if seed == 0 {
		seed = workflow.Now(ctx).UnixNano()
	}

	progress := SearchProgress{
		RunID:       input.RunID,
		TotalRounds: input.MaxIterations,
		Status:      "running",
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetSearchProgress, func() (SearchProgress, error) {
		return progress, nil
	}); err != nil {
		return SearchOutput{}, err
	}

	fastCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    3,
		},
	})
	// Trial evaluations train a model R times; give them room.
	evalCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 4 * time.Hour,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    5 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    2,
		},
	})

	_ = workflow.ExecuteActivity(fastCtx, "UpdateRunStatusActivity", activities.UpdateRunStatusInput{
		RunID: input.RunID, Status: "running",
	}).Get(ctx, nil)

	var trials []optimize.Trial
	var results []trial.Result
	var best optimize.Trial
	haveBest := false

	for round := 0; round <= input.MaxIterations; round++ {
		progress.Round = round
		count := input.ParallelTrials
		if round == 0 {
			count = input.InitPoints
		}

		var sugOut activities.SuggestPointsOutput
		if err := workflow.ExecuteActivity(fastCtx, "SuggestPointsActivity", activities.SuggestPointsInput{
			Trials: trials, Count: count, Round: round, Seed: seed,
		}).Get(ctx, &sugOut); err != nil {
			_ = workflow.ExecuteActivity(fastCtx, "UpdateRunStatusActivity", activities.UpdateRunStatusInput{
				RunID: input.RunID, Status: "failed", FailReason: err.Error(),
			}).Get(ctx, nil)
			return SearchOutput{}, err
		}

		futures := make([]workflow.Future, 0, len(sugOut.Points))
		for _, p := range sugOut.Points {
			futures = append(futures, workflow.ExecuteActivity(evalCtx, "EvaluateTrialActivity", activities.EvaluateTrialInput{
				RunID: input.RunID, Round: round, Point: p,
			}))
		}
		for i, f := range futures {
			var evalOut activities.EvaluateTrialOutput
			if err := f.Get(ctx, &evalOut); err != nil {
				trials = append(trials, optimize.Trial{
					Point: sugOut.Points[i], Failed: true, FailReason: err.Error(), Round: round,
				})
				progress.Trials++
				progress.Failed++
				continue
			}
			res := evalOut.Result
			results = append(results, res)
			tr := optimize.Trial{
				Point: res.Point, Score: res.Score, Failed: res.Failed,
				FailReason: res.FailReason, Round: round,
			}
			trials = append(trials, tr)
			progress.Trials++
			if tr.Failed {
				progress.Failed++
			} else if !haveBest || tr.Score > best.Score {
				best = tr
				haveBest = true
				progress.HaveBest = true
				progress.BestScore = best.Score
				progress.BestPoint = best.Point
			}
			_ = workflow.ExecuteActivity(fastCtx, "RecordTrialActivity", activities.RecordTrialInput{
				RunID: input.RunID, Round: round, Result: res,
			}).Get(ctx, nil)
		}
	}

	if !haveBest {
		progress.Status = "failed"
		_ = workflow.ExecuteActivity(fastCtx, "UpdateRunStatusActivity", activities.UpdateRunStatusInput{
			RunID: input.RunID, Status: "failed", FailReason: "all trials failed",
		}).Get(ctx, nil)
		return SearchOutput{Trials: len(trials)}, fmt.Errorf("all %d trials failed", len(trials))
	}

	if err := workflow.ExecuteActivity(fastCtx, "WriteSearchResultActivity", activities.WriteSearchResultInput{
		RunID: input.RunID, Best: best.Point, Score: best.Score, Results: results,
	}).Get(ctx, nil); err != nil {
		return SearchOutput{}, err
	}
	_ = workflow.ExecuteActivity(fastCtx, "UpdateRunStatusActivity", activities.UpdateRunStatusInput{
		RunID: input.RunID, Status: "completed", BestScore: &best.Score,
	}).Get(ctx, nil)

	progress.Status = "completed"
	return SearchOutput{Best: best, Trials: len(trials)}, nil
}
