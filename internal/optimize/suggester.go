package optimize

import "math/rand"

// Observation is a completed trial as seen by the surrogate.
type Observation struct {
	Point Point
	Score float64
}

// Suggester proposes the next points to evaluate. Implementations carry the
// surrogate model and acquisition strategy, so either can be swapped without
// touching the evaluator or the domain.
type Suggester interface {
	Fit(obs []Observation)
	Suggest(n int) []Point
}

// RandomSuggester ignores observations and samples the grid uniformly. Used
// for the initial design and as a baseline.
type RandomSuggester struct {
	domain Domain
	rng    *rand.Rand
}

func NewRandomSuggester(d Domain, seed int64) *RandomSuggester {
	return &RandomSuggester{domain: d, rng: rand.New(rand.NewSource(seed))}
}

func (s *RandomSuggester) Fit(obs []Observation) {}

func (s *RandomSuggester) Suggest(n int) []Point {
	pts := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		pts = append(pts, s.domain.Sample(s.rng))
	}
	return pts
}
