package storage

import "time"

type Run struct {
	RunID          string    `json:"run_id"`
	Task           string    `json:"task"`
	DatasetSize    string    `json:"dataset_size"`
	Status         string    `json:"status"`
	MaxIterations  int       `json:"max_iterations"`
	ParallelTrials int       `json:"parallel_trials"`
	BestScore      *float64  `json:"best_score,omitempty"`
	FailReason     string    `json:"fail_reason,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Trial struct {
	TrialID            string    `json:"trial_id"`
	RunID              string    `json:"run_id"`
	Round              int       `json:"round"`
	Epochs             int       `json:"epochs"`
	BatchSize          int       `json:"batch_size"`
	EmbeddingSize      int       `json:"embedding_size"`
	QueryHiddenSize    int       `json:"query_hidden_size"`
	SentenceHiddenSize int       `json:"sentence_hidden_size"`
	Score              float64   `json:"score"`
	Failed             bool      `json:"failed"`
	FailReason         string    `json:"fail_reason,omitempty"`
	StartedAt          time.Time `json:"started_at"`
	FinishedAt         time.Time `json:"finished_at"`
}
