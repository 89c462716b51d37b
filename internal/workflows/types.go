package workflows

import "babitune/internal/optimize"

type SearchInput struct {
	RunID          string `json:"run_id"`
	MaxIterations  int    `json:"max_iterations"`
	ParallelTrials int    `json:"parallel_trials"`
	InitPoints     int    `json:"init_points"`
	Seed           int64  `json:"seed"`
}

type SearchOutput struct {
	Best   optimize.Trial `json:"best"`
	Trials int            `json:"trials"`
}

type SearchProgress struct {
	RunID       string         `json:"run_id"`
	Round       int            `json:"round"`
	TotalRounds int            `json:"total_rounds"`
	Trials      int            `json:"trials"`
	Failed      int            `json:"failed"`
	HaveBest    bool           `json:"have_best"`
	BestScore   float64        `json:"best_score"`
	BestPoint   optimize.Point `json:"best_point"`
	Status      string         `json:"status"`
}
