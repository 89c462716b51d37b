package optimize

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
)

// Objective evaluates one point. Implementations are expensive (a full
// build/train/evaluate cycle) and may fail for bad configurations; a failure
// is recorded as a failed trial, never a crashed search.
type Objective func(ctx context.Context, p Point) (float64, error)

type Trial struct {
	Point      Point   `json:"point"`
	Score      float64 `json:"score"`
	Failed     bool    `json:"failed"`
	FailReason string  `json:"fail_reason,omitempty"`
	Round      int     `json:"round"`
}

type Options struct {
	Domain         Domain
	MaxIterations  int
	ParallelTrials int
	InitPoints     int
	Seed           int64
	CandidatePool  int
	// Suggester defaults to a GPSuggester over Domain.
	Suggester Suggester
}

type Result struct {
	Best   Trial
	Trials []Trial
}

// Search runs the Bayesian-optimization loop: an initial random design, then
// MaxIterations rounds of suggest + evaluate with up to ParallelTrials
// objective calls in flight. In-flight trials are never preempted; the
// context is only checked between rounds.
func Search(ctx context.Context, objective Objective, opts Options) (Result, error) {
	if len(opts.Domain.Dims[0].Values) == 0 {
		opts.Domain = DefaultDomain()
	}
	if opts.MaxIterations < 1 {
		opts.MaxIterations = 1
	}
	if opts.ParallelTrials < 1 {
		opts.ParallelTrials = 1
	}
	if opts.InitPoints < 1 {
		opts.InitPoints = 5
	}
	sug := opts.Suggester
	if sug == nil {
		sug = NewGPSuggester(opts.Domain, opts.Seed, opts.CandidatePool)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	initPts := make([]Point, 0, opts.InitPoints)
	for i := 0; i < opts.InitPoints; i++ {
		initPts = append(initPts, opts.Domain.Sample(rng))
	}
	trials := evalBatch(ctx, objective, initPts, 0, opts.ParallelTrials)

	for round := 1; round <= opts.MaxIterations; round++ {
		if err := ctx.Err(); err != nil {
			return finish(trials), err
		}
		sug.Fit(Observations(trials))
		pts := sug.Suggest(opts.ParallelTrials)
		trials = append(trials, evalBatch(ctx, objective, pts, round, opts.ParallelTrials)...)
	}

	res := finish(trials)
	if res.Best.Failed {
		return res, fmt.Errorf("all %d trials failed, last reason: %s", len(trials), res.Best.FailReason)
	}
	return res, nil
}

// evalBatch runs the points with at most parallel objective calls in flight
// and returns one trial per point, in point order.
func evalBatch(ctx context.Context, objective Objective, pts []Point, round, parallel int) []Trial {
	results := make([]Trial, len(pts))
	sem := make(chan struct{}, parallel)
	var wg sync.WaitGroup
	for i, p := range pts {
		wg.Add(1)
		go func(i int, p Point) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			tr := Trial{Point: p, Round: round}
			score, err := objective(ctx, p)
			if err != nil {
				tr.Failed = true
				tr.FailReason = err.Error()
				log.Printf("search round %d: trial failed (%s): %v", round, p, err)
			} else {
				tr.Score = score
				log.Printf("search round %d: %s score=%.4f", round, p, score)
			}
			results[i] = tr
		}(i, p)
	}
	wg.Wait()
	return results
}

// Observations projects trials into surrogate observations.
func Observations(trials []Trial) []Observation {
	obs := make([]Observation, 0, len(trials))
	for _, tr := range trials {
		// Failed trials stay visible to the surrogate as score zero, so
		// the search is steered away from broken configurations.
		obs = append(obs, Observation{Point: tr.Point, Score: tr.Score})
	}
	return obs
}

// finish picks the best completed trial, skipping failed trials unless every
// trial failed.
func finish(trials []Trial) Result {
	res := Result{Trials: trials}
	bestIdx := -1
	for i, tr := range trials {
		if tr.Failed {
			continue
		}
		if bestIdx < 0 || tr.Score > trials[bestIdx].Score {
			bestIdx = i
		}
	}
	if bestIdx < 0 && len(trials) > 0 {
		bestIdx = 0
	}
	if bestIdx >= 0 {
		res.Best = trials[bestIdx]
	}
	return res
}
