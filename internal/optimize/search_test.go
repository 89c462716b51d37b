package optimize

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// quadratic is a deterministic stand-in objective peaking mid-grid.
func quadratic(d Domain) Objective {
	return func(_ context.Context, p Point) (float64, error) {
		v := d.Vector(p)
		score := 1.0
		for _, x := range v {
			score -= (x - 0.5) * (x - 0.5) / 5
		}
		return score, nil
	}
}

func TestSearchBestSoFar(t *testing.T) {
	d := DefaultDomain()

	var mu sync.Mutex
	evaluated := map[Point]float64{}
	obj := func(ctx context.Context, p Point) (float64, error) {
		score, err := quadratic(d)(ctx, p)
		mu.Lock()
		evaluated[p] = score
		mu.Unlock()
		return score, err
	}

	res, err := Search(context.Background(), obj, Options{
		Domain:        d,
		MaxIterations: 4,
		InitPoints:    4,
		Seed:          1,
		CandidatePool: 200,
	})
	require.NoError(t, err)
	require.Len(t, res.Trials, 4+4)

	// The returned best must be an actually evaluated point whose recorded
	// score dominates every other trial.
	_, seen := evaluated[res.Best.Point]
	require.True(t, seen)
	for _, tr := range res.Trials {
		require.GreaterOrEqual(t, res.Best.Score, tr.Score)
	}
}

func TestSearchParallelTrials(t *testing.T) {
	d := DefaultDomain()
	var inFlight, maxInFlight atomic.Int32
	obj := func(ctx context.Context, p Point) (float64, error) {
		cur := inFlight.Add(1)
		for {
			prev := maxInFlight.Load()
			if cur <= prev || maxInFlight.CompareAndSwap(prev, cur) {
				break
			}
		}
		defer inFlight.Add(-1)
		return quadratic(d)(ctx, p)
	}

	res, err := Search(context.Background(), obj, Options{
		Domain:         d,
		MaxIterations:  3,
		ParallelTrials: 3,
		InitPoints:     3,
		Seed:           2,
		CandidatePool:  100,
	})
	require.NoError(t, err)
	require.Len(t, res.Trials, 3+3*3)
	require.LessOrEqual(t, maxInFlight.Load(), int32(3))
}

func TestSearchSurvivesFailedTrials(t *testing.T) {
	d := DefaultDomain()
	var calls atomic.Int32
	obj := func(ctx context.Context, p Point) (float64, error) {
		if calls.Add(1)%2 == 0 {
			return 0, fmt.Errorf("synthetic trial failure")
		}
		return quadratic(d)(ctx, p)
	}

	res, err := Search(context.Background(), obj, Options{
		Domain:        d,
		MaxIterations: 3,
		InitPoints:    4,
		Seed:          3,
		CandidatePool: 100,
	})
	require.NoError(t, err)
	require.False(t, res.Best.Failed)

	failed := 0
	for _, tr := range res.Trials {
		if tr.Failed {
			failed++
			require.NotEmpty(t, tr.FailReason)
		}
	}
	require.Positive(t, failed)
}

func TestSearchAllTrialsFailed(t *testing.T) {
	obj := func(ctx context.Context, p Point) (float64, error) {
		return 0, fmt.Errorf("always broken")
	}
	res, err := Search(context.Background(), obj, Options{
		MaxIterations: 1,
		InitPoints:    2,
		Seed:          4,
		CandidatePool: 50,
	})
	require.Error(t, err)
	require.True(t, res.Best.Failed)
	require.Len(t, res.Trials, 3)
}

func TestSearchStopsBetweenRoundsOnCancel(t *testing.T) {
	d := DefaultDomain()
	ctx, cancel := context.WithCancel(context.Background())
	obj := func(_ context.Context, p Point) (float64, error) {
		cancel()
		return quadratic(d)(ctx, p)
	}
	res, err := Search(ctx, obj, Options{
		Domain:        d,
		MaxIterations: 10,
		InitPoints:    2,
		Seed:          5,
		CandidatePool: 50,
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, res.Trials, 2)
}
