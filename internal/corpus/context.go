package corpus

import (
	"fmt"

	"babitune/internal/util"
)

// TaskContext bundles everything one task's trials need: the shared
// vocabulary, the corpus-wide maximum lengths and the vectorized train/test
// batches. It is built once and treated as immutable; concurrent trials read
// it without synchronization.
type TaskContext struct {
	Task        string
	DatasetSize string
	Vocab       *Vocab
	StoryMaxLen int
	QueryMaxLen int
	Train       Batch
	Test        Batch
	Fingerprint string
}

// BuildTaskContext loads both splits of a task and vectorizes them against a
// vocabulary and maximum lengths computed over train and test combined.
func BuildTaskContext(dataDir, size, task string, opts LoadOptions) (*TaskContext, error) {
	trainPath, testPath, err := SplitPaths(dataDir, size, task)
	if err != nil {
		return nil, err
	}
	train, err := LoadFile(trainPath, opts)
	if err != nil {
		return nil, fmt.Errorf("load train split: %w", err)
	}
	test, err := LoadFile(testPath, opts)
	if err != nil {
		return nil, fmt.Errorf("load test split: %w", err)
	}

	vocab := BuildVocab(train, test)
	storyMaxLen, queryMaxLen := MaxLens(train, test)

	trainBatch, err := Vectorize(train, vocab, storyMaxLen, queryMaxLen)
	if err != nil {
		return nil, fmt.Errorf("vectorize train split: %w", err)
	}
	testBatch, err := Vectorize(test, vocab, storyMaxLen, queryMaxLen)
	if err != nil {
		return nil, fmt.Errorf("vectorize test split: %w", err)
	}

	fingerprint, err := util.SHA256HexOfFiles(trainPath, testPath)
	if err != nil {
		return nil, fmt.Errorf("fingerprint corpus: %w", err)
	}

	return &TaskContext{
		Task:        task,
		DatasetSize: size,
		Vocab:       vocab,
		StoryMaxLen: storyMaxLen,
		QueryMaxLen: queryMaxLen,
		Train:       trainBatch,
		Test:        testBatch,
		Fingerprint: fingerprint,
	}, nil
}
