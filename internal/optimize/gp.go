package optimize

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// GPSuggester is a Gaussian-process surrogate over the unit-cube embedding of
// the grid: RBF kernel with a median-distance length scale, observation noise
// on the diagonal (the objective is a noisy training run), posterior via
// Cholesky. Acquisition is expected improvement, maximized over a random
// candidate pool; batches use a constant-liar pseudo-observation so parallel
// trials get distinct points.
type GPSuggester struct {
	domain Domain
	rng    *rand.Rand
	pool   int
	noise  float64
	xi     float64

	obs         []Observation
	x           [][]float64
	y           []float64 // standardized scores
	meanY       float64
	stdY        float64
	lengthScale float64
	chol        mat.Cholesky
	alpha       *mat.VecDense
	fitted      bool
}

func NewGPSuggester(d Domain, seed int64, pool int) *GPSuggester {
	if pool <= 0 {
		pool = 2000
	}
	return &GPSuggester{
		domain: d,
		rng:    rand.New(rand.NewSource(seed)),
		pool:   pool,
		noise:  1e-2,
		xi:     0.01,
	}
}

func (s *GPSuggester) Fit(obs []Observation) {
	s.obs = append(s.obs[:0], obs...)
	s.refit(s.obs)
}

func (s *GPSuggester) refit(obs []Observation) {
	s.fitted = false
	if len(obs) == 0 {
		return
	}
	n := len(obs)
	s.x = make([][]float64, n)
	raw := make([]float64, n)
	for i, o := range obs {
		s.x[i] = s.domain.Vector(o.Point)
		raw[i] = o.Score
	}

	s.meanY, s.stdY = meanStd(raw)
	s.y = make([]float64, n)
	for i, v := range raw {
		s.y[i] = (v - s.meanY) / s.stdY
	}

	s.lengthScale = medianDistance(s.x)

	noise := s.noise
	for attempt := 0; attempt < 5; attempt++ {
		k := mat.NewSymDense(n, nil)
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				v := s.kernel(s.x[i], s.x[j])
				if i == j {
					v += noise
				}
				k.SetSym(i, j, v)
			}
		}
		if s.chol.Factorize(k) {
			s.alpha = mat.NewVecDense(n, nil)
			if err := s.chol.SolveVecTo(s.alpha, mat.NewVecDense(n, s.y)); err == nil {
				s.fitted = true
				return
			}
		}
		noise *= 10
	}
}

func (s *GPSuggester) kernel(a, b []float64) float64 {
	d2 := 0.0
	for i := range a {
		diff := a[i] - b[i]
		d2 += diff * diff
	}
	l2 := s.lengthScale * s.lengthScale
	return math.Exp(-d2 / (2 * l2))
}

// posterior returns the predictive mean and standard deviation (in
// standardized score units) at a unit-cube location.
func (s *GPSuggester) posterior(x []float64) (mu, sigma float64) {
	n := len(s.x)
	kv := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		kv.SetVec(i, s.kernel(x, s.x[i]))
	}
	mu = mat.Dot(kv, s.alpha)

	v := mat.NewVecDense(n, nil)
	if err := s.chol.SolveVecTo(v, kv); err != nil {
		return mu, 0
	}
	variance := 1 + s.noise - mat.Dot(kv, v)
	if variance < 1e-12 {
		variance = 1e-12
	}
	return mu, math.Sqrt(variance)
}

func (s *GPSuggester) Suggest(n int) []Point {
	if !s.fitted {
		pts := make([]Point, 0, n)
		for i := 0; i < n; i++ {
			pts = append(pts, s.domain.Sample(s.rng))
		}
		return pts
	}

	work := append([]Observation(nil), s.obs...)
	lie := s.meanY
	out := make([]Point, 0, n)
	for picked := 0; picked < n; picked++ {
		bestObserved := math.Inf(-1)
		for _, v := range s.y {
			if v > bestObserved {
				bestObserved = v
			}
		}

		var bestPt Point
		bestEI := math.Inf(-1)
		for c := 0; c < s.pool; c++ {
			p := s.domain.Sample(s.rng)
			mu, sigma := s.posterior(s.domain.Vector(p))
			ei := expectedImprovement(mu, sigma, bestObserved, s.xi)
			if ei > bestEI {
				bestEI = ei
				bestPt = p
			}
		}
		out = append(out, bestPt)

		if picked+1 < n {
			work = append(work, Observation{Point: bestPt, Score: lie})
			s.refit(work)
		}
	}
	// Restore the surrogate to the real observations.
	s.refit(s.obs)
	return out
}

func meanStd(xs []float64) (mean, std float64) {
	for _, v := range xs {
		mean += v
	}
	mean /= float64(len(xs))
	for _, v := range xs {
		std += (v - mean) * (v - mean)
	}
	std = math.Sqrt(std / float64(len(xs)))
	if std < 1e-9 {
		std = 1
	}
	return mean, std
}

// medianDistance is the usual median-heuristic length scale over the fitted
// inputs, with a floor so duplicated points cannot collapse the kernel.
func medianDistance(xs [][]float64) float64 {
	var dists []float64
	for i := 0; i < len(xs); i++ {
		for j := i + 1; j < len(xs); j++ {
			d2 := 0.0
			for k := range xs[i] {
				diff := xs[i][k] - xs[j][k]
				d2 += diff * diff
			}
			dists = append(dists, math.Sqrt(d2))
		}
	}
	if len(dists) == 0 {
		return 0.5
	}
	sort.Float64s(dists)
	m := dists[len(dists)/2]
	if m < 0.1 {
		m = 0.1
	}
	return m
}
