package model

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"

	"babitune/internal/corpus"
)

// MockBuilder produces scripted models with deterministic scores, so the
// evaluator and the search loop can be exercised without real training.
type MockBuilder struct {
	// FailBuildAt makes Build fail for points with that embedding size.
	FailBuildAt int
	// FailFit makes every Fit call fail.
	FailFit bool
}

func (mb MockBuilder) Build(spec Spec) (Model, error) {
	if mb.FailBuildAt != 0 && spec.EmbeddingSize == mb.FailBuildAt {
		return nil, fmt.Errorf("mock build failure at embedding size %d", spec.EmbeddingSize)
	}
	return &MockModel{Spec: spec, FailFit: mb.FailFit}, nil
}

func (mb MockBuilder) Load(path string) (Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mock checkpoint: %w", err)
	}
	defer f.Close()
	m := new(MockModel)
	if err := gob.NewDecoder(f).Decode(m); err != nil {
		return nil, fmt.Errorf("decode mock checkpoint: %w", err)
	}
	return m, nil
}

type MockModel struct {
	Spec    Spec
	FailFit bool
	Fits    int
}

func (m *MockModel) Fit(b corpus.Batch, opts FitOptions) (History, error) {
	_ = b
	if m.FailFit {
		return History{}, fmt.Errorf("mock fit failure")
	}
	m.Fits++
	hist := History{}
	for i := 0; i < opts.Epochs; i++ {
		hist.TrainLoss = append(hist.TrainLoss, 1/float64(i+1))
		hist.TrainAcc = append(hist.TrainAcc, deterministicScore(m.Spec))
	}
	return hist, nil
}

func (m *MockModel) Evaluate(b corpus.Batch, batchSize int) (loss, acc float64, err error) {
	_, _ = b, batchSize
	acc = deterministicScore(m.Spec)
	return 1 - acc, acc, nil
}

func (m *MockModel) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create mock checkpoint: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(m); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode mock checkpoint: %w", err)
	}
	return f.Close()
}

// deterministicScore maps the searched sizes to a stable value in [0,1].
func deterministicScore(spec Spec) float64 {
	var b [12]byte
	binary.BigEndian.PutUint32(b[0:], uint32(spec.EmbeddingSize))
	binary.BigEndian.PutUint32(b[4:], uint32(spec.QueryHiddenSize))
	binary.BigEndian.PutUint32(b[8:], uint32(spec.SentenceHiddenSize))
	h := sha256.Sum256(b[:])
	return float64(binary.BigEndian.Uint32(h[:4])%1000) / 999.0
}
