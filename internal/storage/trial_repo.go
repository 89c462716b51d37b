package storage

import (
	"context"
	"fmt"
)

type TrialRepo struct {
	db *DB
}

func NewTrialRepo(db *DB) *TrialRepo {
	return &TrialRepo{db: db}
}

func (r *TrialRepo) InsertTrial(ctx context.Context, t Trial) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO search_trials (trial_id, run_id, round, epochs, batch_size,
	embedding_size, query_hidden_size, sentence_hidden_size,
	score, failed, fail_reason, started_at, finished_at)
VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11,''), $12, $13)`,
		t.TrialID, t.RunID, t.Round, t.Epochs, t.BatchSize,
		t.EmbeddingSize, t.QueryHiddenSize, t.SentenceHiddenSize,
		t.Score, t.Failed, t.FailReason, t.StartedAt, t.FinishedAt)
	if err != nil {
		return fmt.Errorf("insert trial: %w", err)
	}
	return nil
}

func (r *TrialRepo) ListTrialsByRun(ctx context.Context, runID string) ([]Trial, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT trial_id::text, run_id::text, round, epochs, batch_size,
       embedding_size, query_hidden_size, sentence_hidden_size,
       score, failed, COALESCE(fail_reason, ''), started_at, finished_at
FROM search_trials WHERE run_id=$1::uuid ORDER BY started_at`, runID)
	if err != nil {
		return nil, fmt.Errorf("list trials: %w", err)
	}
	defer rows.Close()

	out := make([]Trial, 0)
	for rows.Next() {
		var t Trial
		if err := rows.Scan(&t.TrialID, &t.RunID, &t.Round, &t.Epochs, &t.BatchSize,
			&t.EmbeddingSize, &t.QueryHiddenSize, &t.SentenceHiddenSize,
			&t.Score, &t.Failed, &t.FailReason, &t.StartedAt, &t.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan trial: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trials: %w", err)
	}
	return out, nil
}

// BestTrial returns the highest-scoring non-failed trial of a run.
func (r *TrialRepo) BestTrial(ctx context.Context, runID string) (Trial, error) {
	var t Trial
	err := r.db.Pool.QueryRow(ctx, `
SELECT trial_id::text, run_id::text, round, epochs, batch_size,
       embedding_size, query_hidden_size, sentence_hidden_size,
       score, failed, COALESCE(fail_reason, ''), started_at, finished_at
FROM search_trials WHERE run_id=$1::uuid AND NOT failed
ORDER BY score DESC LIMIT 1`, runID).Scan(
		&t.TrialID, &t.RunID, &t.Round, &t.Epochs, &t.BatchSize,
		&t.EmbeddingSize, &t.QueryHiddenSize, &t.SentenceHiddenSize,
		&t.Score, &t.Failed, &t.FailReason, &t.StartedAt, &t.FinishedAt)
	if err != nil {
		return Trial{}, fmt.Errorf("best trial: %w", err)
	}
	return t, nil
}
