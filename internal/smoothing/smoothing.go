// internal/smoothing/smoothing.go

// Package smoothing implements randomized smoothing applied to classifier
// predictions, as introduced in Cohen et al. (2019).
//
// A Smoother wraps a base classifier and predicts the majority vote of the
// classifier over Gaussian-perturbed copies of each input. Predictions can
// abstain when the top two vote counts are not statistically
// distinguishable, and Certify computes a provable l2 radius around an
// input within which the smoothed prediction cannot change.
//
// Paper link: https://arxiv.org/abs/1902.02918
package smoothing

import (
	"fmt"
	"log"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/robustlab/smoothing-service/internal/classifier"
	"github.com/robustlab/smoothing-service/internal/stats"
)

// AbstainClass is the certification result when the confidence bound fails
// to establish majority support for any class.
const AbstainClass = -1

// defaultBatchSize is the inference batch-size hint used when the caller
// does not supply one.
const defaultBatchSize = 128

// Config holds the smoothing parameters. It is immutable after the
// Smoother is constructed.
type Config struct {
	// SampleSize is the number of noise draws per smoothed prediction.
	SampleSize int
	// Scale is the standard deviation of the Gaussian noise added.
	Scale float64
	// Alpha is the failure probability of smoothing.
	Alpha float64
}

// Validate checks the parameter invariants. It is called by New so invalid
// configuration fails at construction rather than on first use.
func (c Config) Validate() error {
	if c.SampleSize <= 0 {
		return fmt.Errorf("smoothing: sample size must be positive, got %d", c.SampleSize)
	}
	if c.Scale <= 0 {
		return fmt.Errorf("smoothing: noise scale must be positive, got %v", c.Scale)
	}
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return fmt.Errorf("smoothing: alpha must be in (0, 1), got %v", c.Alpha)
	}
	return nil
}

// Smoother adds randomized-smoothing prediction and certification to a
// base classifier. It holds no mutable state across calls, so concurrent
// use is safe as long as the classifier's Predict is reentrant.
type Smoother struct {
	clf   classifier.Classifier
	cfg   Config
	noise distuv.Normal
}

// Option configures a Smoother.
type Option func(*Smoother)

// WithSource sets the random source used for noise generation. When it is
// not supplied the global source is used; no seeding policy is imposed
// here, reproducibility is the caller's concern.
func WithSource(src rand.Source) Option {
	return func(s *Smoother) { s.noise.Src = src }
}

// New creates a Smoother around clf with the given parameters.
func New(clf classifier.Classifier, cfg Config, opts ...Option) (*Smoother, error) {
	if clf == nil {
		return nil, fmt.Errorf("smoothing: classifier must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Smoother{
		clf:   clf,
		cfg:   cfg,
		noise: distuv.Normal{Mu: 0, Sigma: cfg.Scale},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the smoothing parameters.
func (s *Smoother) Config() Config {
	return s.cfg
}

// Predict performs a smoothed prediction for each input. It returns one
// vector per input: one-hot at the majority-vote class, or all zeros when
// isAbstain is set and the top two vote counts are not statistically
// distinguishable at level Alpha. The second return value is the number of
// abstained inputs. batchSize <= 0 selects the default hint.
func (s *Smoother) Predict(x [][]float32, batchSize int, isAbstain bool) ([][]float64, int, error) {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	preds := make([][]float64, len(x))
	abstained := 0
	for i, xi := range x {
		counts, err := s.predictionCounts(xi, 0, batchSize)
		if err != nil {
			return nil, 0, err
		}

		count1, count2 := topTwo(counts)

		decide := !isAbstain
		if !decide {
			pval, err := stats.BinomialTest(count1, count1+count2, 0.5)
			if err != nil {
				return nil, 0, err
			}
			decide = pval <= s.cfg.Alpha
		}

		pred := make([]float64, len(counts))
		if decide {
			pred[argmaxInt(counts)] = 1
		} else {
			abstained++
		}
		preds[i] = pred
	}

	if abstained > 0 {
		log.Printf("%d prediction(s) abstained.", abstained)
	}
	return preds, abstained, nil
}

// Certify computes the certified class and l2 radius for each input. The
// candidate class is selected on a fresh SampleSize draw, then its vote
// proportion is estimated on an independent n-sample draw so the selection
// does not inflate the Type-I error of the bound. Inputs whose
// (1 - 2*Alpha) lower bound does not exceed 1/2 get AbstainClass and a
// zero radius.
func (s *Smoother) Certify(x [][]float32, n int) ([]int, []float64, error) {
	if n <= 0 {
		return nil, nil, fmt.Errorf("smoothing: certification sample count must be positive, got %d", n)
	}

	classes := make([]int, len(x))
	radii := make([]float64, len(x))
	for i, xi := range x {
		// Selection pass
		counts, err := s.predictionCounts(xi, 0, defaultBatchSize)
		if err != nil {
			return nil, nil, err
		}
		classSelect := argmaxInt(counts)

		// Estimation pass on a fresh draw
		est, err := s.predictionCounts(xi, n, defaultBatchSize)
		if err != nil {
			return nil, nil, err
		}
		countClass := est[classSelect]

		probClass, err := stats.ClopperPearsonLower(countClass, n, 2*s.cfg.Alpha)
		if err != nil {
			return nil, nil, err
		}

		if probClass < 0.5 {
			classes[i] = AbstainClass
			radii[i] = 0.0
			continue
		}
		classes[i] = classSelect
		radii[i] = s.cfg.Scale * stats.NormalQuantile(probClass)
	}
	return classes, radii, nil
}

// noisySamples returns n independent copies of x, each element perturbed by
// Gaussian noise with standard deviation Scale. n == 0 means SampleSize.
func (s *Smoother) noisySamples(x []float32, n int) [][]float32 {
	if n == 0 {
		n = s.cfg.SampleSize
	}
	samples := make([][]float32, n)
	for i := range samples {
		row := make([]float32, len(x))
		for j, v := range x {
			row[j] = v + float32(s.noise.Rand())
		}
		samples[i] = row
	}
	return samples
}

// predictionCounts classifies n noisy replicas of x and tallies one
// arg-max vote per replica into a per-class count vector.
func (s *Smoother) predictionCounts(x []float32, n, batchSize int) ([]int, error) {
	samples := s.noisySamples(x, n)

	scores, err := s.clf.Predict(samples, batchSize)
	if err != nil {
		return nil, err
	}
	if len(scores) != len(samples) {
		return nil, fmt.Errorf("smoothing: classifier returned %d score rows for %d samples", len(scores), len(samples))
	}

	counts := make([]int, s.clf.NumClasses())
	for i, row := range scores {
		if len(row) != len(counts) {
			return nil, fmt.Errorf("smoothing: score row %d has %d classes, want %d", i, len(row), len(counts))
		}
		counts[argmaxFloat32(row)]++
	}
	return counts, nil
}

// topTwo returns the largest and second-largest vote counts. Ties follow a
// stable descending sort, so equal counts rank in class-index order.
func topTwo(counts []int) (int, int) {
	order := make([]int, len(counts))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return counts[order[a]] > counts[order[b]]
	})
	if len(order) < 2 {
		return counts[order[0]], 0
	}
	return counts[order[0]], counts[order[1]]
}

func argmaxInt(v []int) int {
	best := 0
	for i, x := range v {
		if x > v[best] {
			best = i
		}
	}
	return best
}

func argmaxFloat32(v []float32) int {
	best := 0
	for i, x := range v {
		if x > v[best] {
			best = i
		}
	}
	return best
}
