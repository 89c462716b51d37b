package storage

import (
	"context"
	"fmt"
)

type RunRepo struct {
	db *DB
}

func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

func (r *RunRepo) CreateRun(ctx context.Context, run Run) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO search_runs (run_id, task, dataset_size, status, max_iterations, parallel_trials)
VALUES ($1::uuid, $2, $3, $4, $5, $6)`,
		run.RunID, run.Task, run.DatasetSize, run.Status, run.MaxIterations, run.ParallelTrials)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (r *RunRepo) UpdateRunStatus(ctx context.Context, runID, status, failReason string) error {
	_, err := r.db.Pool.Exec(ctx, `
UPDATE search_runs SET status=$2, fail_reason=NULLIF($3,''), updated_at=now()
WHERE run_id=$1::uuid`, runID, status, failReason)
	if err != nil {
		return fmt.Errorf("update run status: %w", err)
	}
	return nil
}

func (r *RunRepo) SetRunBest(ctx context.Context, runID string, bestScore float64) error {
	_, err := r.db.Pool.Exec(ctx, `
UPDATE search_runs SET best_score=$2, updated_at=now()
WHERE run_id=$1::uuid`, runID, bestScore)
	if err != nil {
		return fmt.Errorf("update run best score: %w", err)
	}
	return nil
}

func (r *RunRepo) GetRun(ctx context.Context, runID string) (Run, error) {
	var run Run
	err := r.db.Pool.QueryRow(ctx, `
SELECT run_id::text, task, dataset_size, status, max_iterations, parallel_trials,
       best_score, COALESCE(fail_reason, ''), created_at, updated_at
FROM search_runs WHERE run_id=$1::uuid`, runID).Scan(
		&run.RunID, &run.Task, &run.DatasetSize, &run.Status, &run.MaxIterations,
		&run.ParallelTrials, &run.BestScore, &run.FailReason, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

func (r *RunRepo) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT run_id::text, task, dataset_size, status, max_iterations, parallel_trials,
       best_score, COALESCE(fail_reason, ''), created_at, updated_at
FROM search_runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	out := make([]Run, 0)
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.RunID, &run.Task, &run.DatasetSize, &run.Status,
			&run.MaxIterations, &run.ParallelTrials, &run.BestScore, &run.FailReason,
			&run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}
