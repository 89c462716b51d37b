package optimize

import "gonum.org/v1/gonum/stat/distuv"

// expectedImprovement scores a candidate for maximization: how much the
// posterior at the candidate is expected to improve on the best observed
// value, with xi trading exploration against exploitation.
func expectedImprovement(mu, sigma, best, xi float64) float64 {
	if sigma <= 0 {
		return 0
	}
	improve := mu - best - xi
	z := improve / sigma
	ei := improve*distuv.UnitNormal.CDF(z) + sigma*distuv.UnitNormal.Prob(z)
	if ei < 0 {
		return 0
	}
	return ei
}
