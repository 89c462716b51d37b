// Package model holds the trainable question-answering model consumed by the
// search. The searcher only depends on the Builder/Model contracts; the
// network internals stay behind them.
package model

import "babitune/internal/corpus"

// Spec fixes the shape of one model instance. The three size fields are the
// searched hyperparameters; the rest is derived from the task context.
type Spec struct {
	EmbeddingSize      int
	QueryHiddenSize    int
	SentenceHiddenSize int
	VocabSize          int
	StoryLen           int
	QueryLen           int
	Seed               int64
}

type FitOptions struct {
	Epochs          int
	BatchSize       int
	ValidationSplit float64
	// LearningRate defaults to 0.05 when zero.
	LearningRate float64
}

// History records per-epoch training metrics.
type History struct {
	TrainLoss []float64
	TrainAcc  []float64
	ValLoss   []float64
	ValAcc    []float64
}

type Model interface {
	Fit(b corpus.Batch, opts FitOptions) (History, error)
	Evaluate(b corpus.Batch, batchSize int) (loss, acc float64, err error)
	Save(path string) error
}

type Builder interface {
	Build(spec Spec) (Model, error)
	Load(path string) (Model, error)
}
