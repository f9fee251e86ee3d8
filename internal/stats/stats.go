// internal/stats/stats.go

// Package stats provides the exact distributional routines behind smoothing
// decisions: a two-sided exact binomial test, the Clopper-Pearson lower
// confidence bound for a binomial proportion, and the standard normal
// quantile function. All of them are pure functions of their numeric inputs.
package stats

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
)

// BinomialTest returns the p-value of the two-sided exact binomial test of
// k successes in n trials against success probability p. The p-value is the
// total probability of every outcome that is no more likely than the
// observed one.
func BinomialTest(k, n int, p float64) (float64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("binomial test: trials must be positive, got %d", n)
	}
	if k < 0 || k > n {
		return 0, fmt.Errorf("binomial test: successes %d out of range [0, %d]", k, n)
	}
	if p < 0 || p > 1 {
		return 0, fmt.Errorf("binomial test: probability %v outside [0, 1]", p)
	}

	dist := distuv.Binomial{N: float64(n), P: p}

	// Small relative slack so outcomes exactly as likely as the observed
	// one are counted despite float rounding.
	threshold := dist.Prob(float64(k)) * (1 + 1e-7)

	pval := 0.0
	for i := 0; i <= n; i++ {
		if pi := dist.Prob(float64(i)); pi <= threshold {
			pval += pi
		}
	}
	if pval > 1 {
		pval = 1
	}
	return pval, nil
}

// ClopperPearsonLower returns the lower endpoint of the two-sided
// (1-significance) Clopper-Pearson confidence interval for a binomial
// proportion with k successes in n trials, computed through the exact Beta
// quantile relation. Called with significance = 2*alpha it yields a
// one-sided (1-alpha) lower bound on the true proportion.
func ClopperPearsonLower(k, n int, significance float64) (float64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("clopper-pearson: trials must be positive, got %d", n)
	}
	if k < 0 || k > n {
		return 0, fmt.Errorf("clopper-pearson: successes %d out of range [0, %d]", k, n)
	}
	if significance <= 0 || significance >= 1 {
		return 0, fmt.Errorf("clopper-pearson: significance %v outside (0, 1)", significance)
	}
	if k == 0 {
		return 0, nil
	}

	dist := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
	return dist.Quantile(significance / 2), nil
}

// NormalQuantile returns the standard normal inverse CDF at p.
func NormalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}
