package activities

import (
	"babitune/internal/optimize"
	"babitune/internal/trial"
)

type SuggestPointsInput struct {
	Trials []optimize.Trial `json:"trials"`
	Count  int              `json:"count"`
	Round  int              `json:"round"`
	Seed   int64            `json:"seed"`
}

type SuggestPointsOutput struct {
	Points []optimize.Point `json:"points"`
}

type EvaluateTrialInput struct {
	RunID string         `json:"run_id"`
	Round int            `json:"round"`
	Point optimize.Point `json:"point"`
}

type EvaluateTrialOutput struct {
	Result trial.Result `json:"result"`
}

type RecordTrialInput struct {
	RunID  string       `json:"run_id"`
	Round  int          `json:"round"`
	Result trial.Result `json:"result"`
}

type UpdateRunStatusInput struct {
	RunID      string   `json:"run_id"`
	Status     string   `json:"status"`
	FailReason string   `json:"fail_reason,omitempty"`
	BestScore  *float64 `json:"best_score,omitempty"`
}

type WriteSearchResultInput struct {
	RunID   string         `json:"run_id"`
	Best    optimize.Point `json:"best"`
	Score   float64        `json:"score"`
	Results []trial.Result `json:"results"`
}
