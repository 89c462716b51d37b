package optimize

import (
	"fmt"
	"math/rand"
)

// Point is one assignment of the five searched hyperparameters.
type Point struct {
	Epochs             int `json:"epochs"`
	BatchSize          int `json:"batch_size"`
	EmbeddingSize      int `json:"embedding_size"`
	QueryHiddenSize    int `json:"query_hidden_size"`
	SentenceHiddenSize int `json:"sentence_hidden_size"`
}

func (p Point) Values() [5]int {
	return [5]int{p.Epochs, p.BatchSize, p.EmbeddingSize, p.QueryHiddenSize, p.SentenceHiddenSize}
}

func (p Point) String() string {
	return fmt.Sprintf("epochs=%d batch=%d embed=%d qhidden=%d shidden=%d",
		p.Epochs, p.BatchSize, p.EmbeddingSize, p.QueryHiddenSize, p.SentenceHiddenSize)
}

// Dimension is one discrete axis of the search grid.
type Dimension struct {
	Name   string
	Values []int
}

// Domain is the full five-dimensional discrete grid.
type Domain struct {
	Dims [5]Dimension
}

func steps(lo, hi, step int) []int {
	var out []int
	for v := lo; v <= hi; v += step {
		out = append(out, v)
	}
	return out
}

// DefaultDomain is the standard search space: epochs 5..100 by 5, batch size
// 16..256 by 16, the three size parameters 1..100.
func DefaultDomain() Domain {
	return Domain{Dims: [5]Dimension{
		{Name: "epochs", Values: steps(5, 100, 5)},
		{Name: "batch_size", Values: steps(16, 256, 16)},
		{Name: "embedding_size", Values: steps(1, 100, 1)},
		{Name: "query_hidden_size", Values: steps(1, 100, 1)},
		{Name: "sentence_hidden_size", Values: steps(1, 100, 1)},
	}}
}

func (d Domain) point(vals [5]int) Point {
	return Point{
		Epochs:             vals[0],
		BatchSize:          vals[1],
		EmbeddingSize:      vals[2],
		QueryHiddenSize:    vals[3],
		SentenceHiddenSize: vals[4],
	}
}

// Sample draws a uniform point from the grid.
func (d Domain) Sample(rng *rand.Rand) Point {
	var vals [5]int
	for i, dim := range d.Dims {
		vals[i] = dim.Values[rng.Intn(len(dim.Values))]
	}
	return d.point(vals)
}

// Contains reports whether the point lies on the grid.
func (d Domain) Contains(p Point) bool {
	vals := p.Values()
	for i, dim := range d.Dims {
		found := false
		for _, v := range dim.Values {
			if v == vals[i] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Vector maps a point into the unit cube, one coordinate per dimension, so
// kernel distances weight every dimension equally.
func (d Domain) Vector(p Point) []float64 {
	vals := p.Values()
	out := make([]float64, len(d.Dims))
	for i, dim := range d.Dims {
		lo := dim.Values[0]
		hi := dim.Values[len(dim.Values)-1]
		if hi == lo {
			out[i] = 0
			continue
		}
		out[i] = float64(vals[i]-lo) / float64(hi-lo)
	}
	return out
}
