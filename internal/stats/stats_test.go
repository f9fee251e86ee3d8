// internal/stats/stats_test.go
package stats

import (
	"math"
	"testing"
)

func TestBinomialTest_EqualCounts(t *testing.T) {
	// With a perfectly split vote the test has nothing to reject.
	pval, err := BinomialTest(50, 100, 0.5)
	if err != nil {
		t.Fatalf("BinomialTest failed: %v", err)
	}
	if math.Abs(pval-1.0) > 1e-9 {
		t.Errorf("Expected p-value 1.0 for equal counts, got %g", pval)
	}
}

func TestBinomialTest_Unanimous(t *testing.T) {
	pval, err := BinomialTest(100, 100, 0.5)
	if err != nil {
		t.Fatalf("BinomialTest failed: %v", err)
	}
	if pval > 1e-20 {
		t.Errorf("Expected near-zero p-value for unanimous counts, got %g", pval)
	}
}

func TestBinomialTest_Skewed(t *testing.T) {
	strong, err := BinomialTest(75, 100, 0.5)
	if err != nil {
		t.Fatalf("BinomialTest failed: %v", err)
	}
	if strong > 1e-4 {
		t.Errorf("Expected tiny p-value for 75/100, got %g", strong)
	}

	weak, err := BinomialTest(55, 100, 0.5)
	if err != nil {
		t.Fatalf("BinomialTest failed: %v", err)
	}
	if weak < 0.2 || weak > 1 {
		t.Errorf("Expected large p-value for 55/100, got %g", weak)
	}

	if weak <= strong {
		t.Errorf("Expected p-value to shrink with skew: weak=%g strong=%g", weak, strong)
	}
}

func TestBinomialTest_Symmetry(t *testing.T) {
	// At p=0.5 the test is symmetric in successes and failures.
	low, err := BinomialTest(30, 100, 0.5)
	if err != nil {
		t.Fatalf("BinomialTest failed: %v", err)
	}
	high, err := BinomialTest(70, 100, 0.5)
	if err != nil {
		t.Fatalf("BinomialTest failed: %v", err)
	}
	if math.Abs(low-high) > 1e-9 {
		t.Errorf("Expected symmetric p-values, got %g and %g", low, high)
	}
}

func TestBinomialTest_InvalidArguments(t *testing.T) {
	cases := []struct {
		name string
		k, n int
		p    float64
	}{
		{"zero trials", 0, 0, 0.5},
		{"negative trials", 1, -1, 0.5},
		{"negative successes", -1, 10, 0.5},
		{"successes exceed trials", 11, 10, 0.5},
		{"probability above one", 5, 10, 1.5},
		{"negative probability", 5, 10, -0.1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := BinomialTest(tc.k, tc.n, tc.p); err == nil {
				t.Errorf("Expected error for k=%d n=%d p=%g", tc.k, tc.n, tc.p)
			}
		})
	}
}

func TestClopperPearsonLower_Boundaries(t *testing.T) {
	lb, err := ClopperPearsonLower(0, 100, 0.002)
	if err != nil {
		t.Fatalf("ClopperPearsonLower failed: %v", err)
	}
	if lb != 0 {
		t.Errorf("Expected zero lower bound for zero successes, got %g", lb)
	}

	lb, err = ClopperPearsonLower(100, 100, 0.002)
	if err != nil {
		t.Fatalf("ClopperPearsonLower failed: %v", err)
	}
	if lb <= 0.9 || lb >= 1.0 {
		t.Errorf("Expected unanimous lower bound in (0.9, 1.0), got %g", lb)
	}
}

func TestClopperPearsonLower_MonotonicInSuccesses(t *testing.T) {
	const n = 200
	prev := -1.0
	for k := 0; k <= n; k++ {
		lb, err := ClopperPearsonLower(k, n, 0.002)
		if err != nil {
			t.Fatalf("ClopperPearsonLower(%d, %d) failed: %v", k, n, err)
		}
		if lb < prev {
			t.Fatalf("Lower bound decreased at k=%d: %g < %g", k, lb, prev)
		}
		prev = lb
	}
}

func TestClopperPearsonLower_BelowProportion(t *testing.T) {
	// A lower confidence bound must sit below the observed proportion.
	for _, k := range []int{1, 25, 50, 75, 99} {
		lb, err := ClopperPearsonLower(k, 100, 0.002)
		if err != nil {
			t.Fatalf("ClopperPearsonLower failed: %v", err)
		}
		if lb >= float64(k)/100 {
			t.Errorf("Lower bound %g not below proportion %g for k=%d", lb, float64(k)/100, k)
		}
	}
}

func TestClopperPearsonLower_Idempotent(t *testing.T) {
	a, err := ClopperPearsonLower(87, 100, 0.002)
	if err != nil {
		t.Fatalf("ClopperPearsonLower failed: %v", err)
	}
	b, err := ClopperPearsonLower(87, 100, 0.002)
	if err != nil {
		t.Fatalf("ClopperPearsonLower failed: %v", err)
	}
	if a != b {
		t.Errorf("Expected identical bounds across calls, got %g and %g", a, b)
	}
}

func TestClopperPearsonLower_InvalidArguments(t *testing.T) {
	cases := []struct {
		name         string
		k, n         int
		significance float64
	}{
		{"zero trials", 0, 0, 0.002},
		{"negative successes", -1, 10, 0.002},
		{"successes exceed trials", 11, 10, 0.002},
		{"zero significance", 5, 10, 0},
		{"significance of one", 5, 10, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ClopperPearsonLower(tc.k, tc.n, tc.significance); err == nil {
				t.Errorf("Expected error for k=%d n=%d significance=%g", tc.k, tc.n, tc.significance)
			}
		})
	}
}

func TestNormalQuantile(t *testing.T) {
	if q := NormalQuantile(0.5); math.Abs(q) > 1e-12 {
		t.Errorf("Expected quantile 0 at p=0.5, got %g", q)
	}

	// Classic two-sided 95% critical value
	if q := NormalQuantile(0.975); math.Abs(q-1.959964) > 1e-4 {
		t.Errorf("Expected quantile ~1.96 at p=0.975, got %g", q)
	}

	// Symmetry around the median
	for _, p := range []float64{0.6, 0.9, 0.99, 0.999} {
		if d := math.Abs(NormalQuantile(p) + NormalQuantile(1-p)); d > 1e-9 {
			t.Errorf("Expected symmetric quantiles at p=%g, difference %g", p, d)
		}
	}
}
