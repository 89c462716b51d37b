package trial

import (
	"fmt"
	"path/filepath"
	"time"

	"babitune/internal/optimize"
	"babitune/internal/util"
)

// BestArtifact is the structured search result written next to the legacy
// file.
type BestArtifact struct {
	Task        string         `json:"task"`
	DatasetSize string         `json:"dataset_size"`
	Point       optimize.Point `json:"point"`
	Score       float64        `json:"score"`
	Trials      int            `json:"trials"`
	Fingerprint string         `json:"corpus_fingerprint"`
	FinishedAt  time.Time      `json:"finished_at"`
}

// LegacyBest renders the historical artifact body: the five best values
// written consecutively with no delimiter.
func LegacyBest(p optimize.Point) string {
	vals := p.Values()
	return fmt.Sprintf("%d%d%d%d%d", vals[0], vals[1], vals[2], vals[3], vals[4])
}

// WriteBestArtifacts writes both result forms under outDir/<task>/: the
// legacy concatenated-integer file kept for compatibility and the structured
// JSON record that replaces it.
func WriteBestArtifacts(outDir string, art BestArtifact) error {
	dir := util.SafeJoin(outDir, art.Task)
	if err := util.WriteTextAtomic(filepath.Join(dir, "best_"+art.Task+".txt"), LegacyBest(art.Point)); err != nil {
		return fmt.Errorf("write legacy artifact: %w", err)
	}
	if err := util.WriteJSONAtomic(filepath.Join(dir, "best_"+art.Task+".json"), art); err != nil {
		return fmt.Errorf("write structured artifact: %w", err)
	}
	return nil
}

// WriteTrialLog dumps every trial of a run as JSONL for later inspection.
func WriteTrialLog(outDir, task, runID string, results []Result) error {
	rows := make([]any, 0, len(results))
	for _, r := range results {
		rows = append(rows, r)
	}
	path := filepath.Join(util.SafeJoin(outDir, task), "runs", runID, "trials.jsonl")
	if err := util.WriteJSONLinesAtomic(path, rows); err != nil {
		return fmt.Errorf("write trial log: %w", err)
	}
	return nil
}
