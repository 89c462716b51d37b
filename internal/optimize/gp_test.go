package optimize

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func someObservations(n int, seed int64) []Observation {
	d := DefaultDomain()
	rng := rand.New(rand.NewSource(seed))
	obs := make([]Observation, 0, n)
	for i := 0; i < n; i++ {
		p := d.Sample(rng)
		// A smooth synthetic objective over the unit cube.
		v := d.Vector(p)
		score := 1 - (v[2]-0.5)*(v[2]-0.5) - 0.5*(v[4]-0.3)*(v[4]-0.3)
		obs = append(obs, Observation{Point: p, Score: score})
	}
	return obs
}

func TestGPPosteriorTracksObservations(t *testing.T) {
	d := DefaultDomain()
	s := NewGPSuggester(d, 1, 200)
	s.noise = 1e-6
	obs := someObservations(12, 3)
	s.Fit(obs)
	require.True(t, s.fitted)

	for _, o := range obs {
		mu, sigma := s.posterior(d.Vector(o.Point))
		want := (o.Score - s.meanY) / s.stdY
		require.InDelta(t, want, mu, 0.05)
		require.GreaterOrEqual(t, sigma, 0.0)
	}
}

func TestExpectedImprovementNonNegative(t *testing.T) {
	for _, tc := range []struct{ mu, sigma, best float64 }{
		{0, 1, 2}, {2, 1, 0}, {-3, 0.1, 5}, {0, 0, 1},
	} {
		require.GreaterOrEqual(t, expectedImprovement(tc.mu, tc.sigma, tc.best, 0.01), 0.0)
	}
}

func TestGPSuggestReturnsGridPoints(t *testing.T) {
	d := DefaultDomain()
	s := NewGPSuggester(d, 5, 200)
	s.Fit(someObservations(10, 7))

	pts := s.Suggest(3)
	require.Len(t, pts, 3)
	for _, p := range pts {
		require.True(t, d.Contains(p))
	}
	// Constant-liar batching should keep the batch from collapsing onto a
	// single point.
	require.False(t, pts[0] == pts[1] && pts[1] == pts[2])
}

func TestGPSuggestUnfittedFallsBackToRandom(t *testing.T) {
	d := DefaultDomain()
	s := NewGPSuggester(d, 9, 100)
	pts := s.Suggest(4)
	require.Len(t, pts, 4)
	for _, p := range pts {
		require.True(t, d.Contains(p))
	}
}

func TestRandomSuggester(t *testing.T) {
	d := DefaultDomain()
	s := NewRandomSuggester(d, 11)
	s.Fit(nil)
	pts := s.Suggest(6)
	require.Len(t, pts, 6)
	for _, p := range pts {
		require.True(t, d.Contains(p))
	}
}
