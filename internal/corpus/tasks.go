package corpus

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Tasks lists the twenty bAbI task file stems in task order.
var Tasks = []string{
	"qa1_single-supporting-fact",
	"qa2_two-supporting-facts",
	"qa3_three-supporting-facts",
	"qa4_two-arg-relations",
	"qa5_three-arg-relations",
	"qa6_yes-no-questions",
	"qa7_counting",
	"qa8_lists-sets",
	"qa9_simple-negation",
	"qa10_indefinite-knowledge",
	"qa11_basic-coreference",
	"qa12_conjunction",
	"qa13_compound-coreference",
	"qa14_time-reasoning",
	"qa15_basic-deduction",
	"qa16_basic-induction",
	"qa17_positional-reasoning",
	"qa18_size-reasoning",
	"qa19_path-finding",
	"qa20_agents-motivations",
}

func ValidTask(task string) bool {
	for _, t := range Tasks {
		if t == task {
			return true
		}
	}
	return false
}

// SplitPaths resolves the train/test file pair for a task. size selects the
// dataset variant directory ("en" for 1k stories, "en-10k" for 10k).
func SplitPaths(dataDir, size, task string) (train, test string, err error) {
	if !ValidTask(task) {
		return "", "", fmt.Errorf("task %q (valid: %s): %w", task, strings.Join(Tasks, ", "), ErrUnknownTask)
	}
	dir := filepath.Join(dataDir, size)
	return filepath.Join(dir, task+"_train.txt"), filepath.Join(dir, task+"_test.txt"), nil
}
