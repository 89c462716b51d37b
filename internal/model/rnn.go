package model

import (
	"encoding/gob"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"babitune/internal/corpus"
)

// RNNBuilder builds the real network: story and question token embeddings
// feeding two vanilla tanh recurrent encoders whose final states are combined
// through a softmax layer over the vocabulary.
type RNNBuilder struct{}

func (RNNBuilder) Build(spec Spec) (Model, error) {
	return NewRNN(spec)
}

func (RNNBuilder) Load(path string) (Model, error) {
	return LoadRNN(path)
}

type mat struct {
	Rows int
	Cols int
	Data []float64
}

func newMat(rows, cols int) *mat {
	return &mat{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

func randMat(rows, cols int, rng *rand.Rand) *mat {
	m := newMat(rows, cols)
	scale := math.Sqrt(2.0 / float64(rows+cols))
	for i := range m.Data {
		m.Data[i] = rng.NormFloat64() * scale
	}
	return m
}

func (m *mat) row(i int) []float64 { return m.Data[i*m.Cols : (i+1)*m.Cols] }

type RNN struct {
	Spec Spec

	StoryEmbed *mat // VocabSize x EmbeddingSize
	QueryEmbed *mat
	StoryWx    *mat // EmbeddingSize x SentenceHiddenSize
	StoryWh    *mat // SentenceHiddenSize x SentenceHiddenSize
	StoryB     []float64
	QueryWx    *mat
	QueryWh    *mat
	QueryB     []float64
	OutW       *mat // (SentenceHiddenSize+QueryHiddenSize) x VocabSize
	OutB       []float64

	rng *rand.Rand
}

func NewRNN(spec Spec) (*RNN, error) {
	if spec.EmbeddingSize < 1 || spec.QueryHiddenSize < 1 || spec.SentenceHiddenSize < 1 {
		return nil, fmt.Errorf("model sizes must be positive, got %+v", spec)
	}
	if spec.VocabSize < 2 {
		return nil, fmt.Errorf("vocab size %d too small", spec.VocabSize)
	}
	seed := spec.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	m := &RNN{
		Spec:       spec,
		StoryEmbed: randMat(spec.VocabSize, spec.EmbeddingSize, rng),
		QueryEmbed: randMat(spec.VocabSize, spec.EmbeddingSize, rng),
		StoryWx:    randMat(spec.EmbeddingSize, spec.SentenceHiddenSize, rng),
		StoryWh:    randMat(spec.SentenceHiddenSize, spec.SentenceHiddenSize, rng),
		StoryB:     make([]float64, spec.SentenceHiddenSize),
		QueryWx:    randMat(spec.EmbeddingSize, spec.QueryHiddenSize, rng),
		QueryWh:    randMat(spec.QueryHiddenSize, spec.QueryHiddenSize, rng),
		QueryB:     make([]float64, spec.QueryHiddenSize),
		OutW:       randMat(spec.SentenceHiddenSize+spec.QueryHiddenSize, spec.VocabSize, rng),
		OutB:       make([]float64, spec.VocabSize),
		rng:        rng,
	}
	return m, nil
}

// seqCache keeps the per-step hidden states of one encoder pass for BPTT.
type seqCache struct {
	idx []int
	hs  [][]float64
}

func (m *RNN) encode(embed, wx, wh *mat, bias []float64, idxs []int) seqCache {
	hidden := len(bias)
	cache := seqCache{idx: idxs, hs: make([][]float64, 0, len(idxs))}
	h := make([]float64, hidden)
	for _, idx := range idxs {
		x := embed.row(idx)
		next := make([]float64, hidden)
		for j := 0; j < hidden; j++ {
			sum := bias[j]
			for e := 0; e < len(x); e++ {
				sum += x[e] * wx.row(e)[j]
			}
			for k := 0; k < hidden; k++ {
				sum += h[k] * wh.row(k)[j]
			}
			next[j] = math.Tanh(sum)
		}
		cache.hs = append(cache.hs, next)
		h = next
	}
	return cache
}

func (c seqCache) last(hidden int) []float64 {
	if len(c.hs) == 0 {
		return make([]float64, hidden)
	}
	return c.hs[len(c.hs)-1]
}

// forward returns the softmax distribution over the vocabulary plus the
// caches needed for the backward pass.
func (m *RNN) forward(story, query []int) (probs []float64, sc, qc seqCache, z []float64) {
	sc = m.encode(m.StoryEmbed, m.StoryWx, m.StoryWh, m.StoryB, story)
	qc = m.encode(m.QueryEmbed, m.QueryWx, m.QueryWh, m.QueryB, query)
	sh := m.Spec.SentenceHiddenSize
	qh := m.Spec.QueryHiddenSize
	z = make([]float64, sh+qh)
	copy(z, sc.last(sh))
	copy(z[sh:], qc.last(qh))

	vocab := m.Spec.VocabSize
	logits := make([]float64, vocab)
	for v := 0; v < vocab; v++ {
		logits[v] = m.OutB[v]
	}
	for j := 0; j < len(z); j++ {
		zj := z[j]
		if zj == 0 {
			continue
		}
		row := m.OutW.row(j)
		for v := 0; v < vocab; v++ {
			logits[v] += zj * row[v]
		}
	}
	probs = softmax(logits)
	return probs, sc, qc, z
}

func softmax(logits []float64) []float64 {
	max := logits[0]
	for _, l := range logits[1:] {
		if l > max {
			max = l
		}
	}
	sum := 0.0
	out := make([]float64, len(logits))
	for i, l := range logits {
		out[i] = math.Exp(l - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

type grads struct {
	storyEmbed, queryEmbed *mat
	storyWx, storyWh       *mat
	queryWx, queryWh       *mat
	outW                   *mat
	storyB, queryB, outB   []float64
}

func (m *RNN) newGrads() *grads {
	s := m.Spec
	return &grads{
		storyEmbed: newMat(s.VocabSize, s.EmbeddingSize),
		queryEmbed: newMat(s.VocabSize, s.EmbeddingSize),
		storyWx:    newMat(s.EmbeddingSize, s.SentenceHiddenSize),
		storyWh:    newMat(s.SentenceHiddenSize, s.SentenceHiddenSize),
		queryWx:    newMat(s.EmbeddingSize, s.QueryHiddenSize),
		queryWh:    newMat(s.QueryHiddenSize, s.QueryHiddenSize),
		outW:       newMat(s.SentenceHiddenSize+s.QueryHiddenSize, s.VocabSize),
		storyB:     make([]float64, s.SentenceHiddenSize),
		queryB:     make([]float64, s.QueryHiddenSize),
		outB:       make([]float64, s.VocabSize),
	}
}

// backward accumulates gradients for one example into g.
func (m *RNN) backward(g *grads, probs []float64, sc, qc seqCache, z []float64, target int) {
	vocab := m.Spec.VocabSize
	sh := m.Spec.SentenceHiddenSize
	qh := m.Spec.QueryHiddenSize

	dlogits := make([]float64, vocab)
	copy(dlogits, probs)
	dlogits[target]--

	dz := make([]float64, sh+qh)
	for v := 0; v < vocab; v++ {
		g.outB[v] += dlogits[v]
	}
	for j := 0; j < len(z); j++ {
		wrow := m.OutW.row(j)
		grow := g.outW.row(j)
		zj := z[j]
		sum := 0.0
		for v := 0; v < vocab; v++ {
			grow[v] += zj * dlogits[v]
			sum += wrow[v] * dlogits[v]
		}
		dz[j] = sum
	}

	m.bptt(m.StoryEmbed, m.StoryWx, m.StoryWh, sc, dz[:sh], g.storyEmbed, g.storyWx, g.storyWh, g.storyB)
	m.bptt(m.QueryEmbed, m.QueryWx, m.QueryWh, qc, dz[sh:], g.queryEmbed, g.queryWx, g.queryWh, g.queryB)
}

func (m *RNN) bptt(embed, wx, wh *mat, cache seqCache, dhLast []float64, gEmbed, gWx, gWh *mat, gB []float64) {
	hidden := len(dhLast)
	embedSize := embed.Cols
	dh := make([]float64, hidden)
	copy(dh, dhLast)
	zero := make([]float64, hidden)

	for t := len(cache.idx) - 1; t >= 0; t-- {
		h := cache.hs[t]
		hprev := zero
		if t > 0 {
			hprev = cache.hs[t-1]
		}
		dpre := make([]float64, hidden)
		for j := 0; j < hidden; j++ {
			dpre[j] = dh[j] * (1 - h[j]*h[j])
			gB[j] += dpre[j]
		}

		x := embed.row(cache.idx[t])
		ge := gEmbed.row(cache.idx[t])
		for e := 0; e < embedSize; e++ {
			wrow := wx.row(e)
			grow := gWx.row(e)
			xe := x[e]
			sum := 0.0
			for j := 0; j < hidden; j++ {
				grow[j] += xe * dpre[j]
				sum += wrow[j] * dpre[j]
			}
			ge[e] += sum
		}

		next := make([]float64, hidden)
		for k := 0; k < hidden; k++ {
			wrow := wh.row(k)
			grow := gWh.row(k)
			hk := hprev[k]
			sum := 0.0
			for j := 0; j < hidden; j++ {
				grow[j] += hk * dpre[j]
				sum += wrow[j] * dpre[j]
			}
			next[k] = sum
		}
		dh = next
	}
}

func (m *RNN) applyGrads(g *grads, lr float64, batch int) {
	step := lr / float64(batch)
	for _, pair := range []struct {
		p *mat
		g *mat
	}{
		{m.StoryEmbed, g.storyEmbed},
		{m.QueryEmbed, g.queryEmbed},
		{m.StoryWx, g.storyWx},
		{m.StoryWh, g.storyWh},
		{m.QueryWx, g.queryWx},
		{m.QueryWh, g.queryWh},
		{m.OutW, g.outW},
	} {
		for i, gv := range pair.g.Data {
			pair.p.Data[i] -= step * clip(gv)
		}
	}
	for _, pair := range []struct {
		p []float64
		g []float64
	}{
		{m.StoryB, g.storyB},
		{m.QueryB, g.queryB},
		{m.OutB, g.outB},
	} {
		for i, gv := range pair.g {
			pair.p[i] -= step * clip(gv)
		}
	}
}

func clip(v float64) float64 {
	const limit = 5.0
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}

func argmax(xs []float64) int {
	best := 0
	for i, x := range xs {
		if x > xs[best] {
			best = i
		}
	}
	return best
}

func (m *RNN) Fit(b corpus.Batch, opts FitOptions) (History, error) {
	if b.Len() == 0 {
		return History{}, fmt.Errorf("empty training batch")
	}
	if opts.Epochs < 1 {
		return History{}, fmt.Errorf("epochs must be positive, got %d", opts.Epochs)
	}
	batchSize := opts.BatchSize
	if batchSize < 1 {
		batchSize = 32
	}
	lr := opts.LearningRate
	if lr == 0 {
		lr = 0.05
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	// The validation partition is the tail of the batch, taken before any
	// shuffling, so it is stable across epochs.
	n := b.Len()
	nVal := int(opts.ValidationSplit * float64(n))
	if nVal >= n {
		nVal = n - 1
	}
	nTrain := n - nVal

	order := make([]int, nTrain)
	for i := range order {
		order[i] = i
	}

	var hist History
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		m.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		epochLoss := 0.0
		correct := 0
		for start := 0; start < nTrain; start += batchSize {
			end := start + batchSize
			if end > nTrain {
				end = nTrain
			}
			g := m.newGrads()
			for _, i := range order[start:end] {
				probs, sc, qc, z := m.forward(b.X[i], b.XQ[i])
				target := argmax(b.Y[i])
				epochLoss += -math.Log(probs[target] + 1e-12)
				if argmax(probs) == target {
					correct++
				}
				m.backward(g, probs, sc, qc, z, target)
			}
			m.applyGrads(g, lr, end-start)
		}
		hist.TrainLoss = append(hist.TrainLoss, epochLoss/float64(nTrain))
		hist.TrainAcc = append(hist.TrainAcc, float64(correct)/float64(nTrain))

		if nVal > 0 {
			valLoss, valAcc := m.metrics(b, nTrain, n)
			hist.ValLoss = append(hist.ValLoss, valLoss)
			hist.ValAcc = append(hist.ValAcc, valAcc)
		}
	}
	return hist, nil
}

func (m *RNN) metrics(b corpus.Batch, from, to int) (loss, acc float64) {
	correct := 0
	for i := from; i < to; i++ {
		probs, _, _, _ := m.forward(b.X[i], b.XQ[i])
		target := argmax(b.Y[i])
		loss += -math.Log(probs[target] + 1e-12)
		if argmax(probs) == target {
			correct++
		}
	}
	n := float64(to - from)
	return loss / n, float64(correct) / n
}

func (m *RNN) Evaluate(b corpus.Batch, batchSize int) (loss, acc float64, err error) {
	_ = batchSize // evaluation is not batched in this implementation
	if b.Len() == 0 {
		return 0, 0, fmt.Errorf("empty evaluation batch")
	}
	loss, acc = m.metrics(b, 0, b.Len())
	return loss, acc, nil
}

func (m *RNN) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create checkpoint: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(m); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close checkpoint: %w", err)
	}
	return nil
}

// LoadRNN restores a checkpoint. The restored model gets a fresh rng so
// repeated fit cycles from the same checkpoint explore different shuffles.
func LoadRNN(path string) (*RNN, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint: %w", err)
	}
	defer f.Close()
	m := new(RNN)
	if err := gob.NewDecoder(f).Decode(m); err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	m.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	return m, nil
}
