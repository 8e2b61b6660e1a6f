// Package bayes implements a generic naive Bayes classifier that learns from a
// bounded window of observations.
package bayes

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
)

const (
	defaultWeight             = 1.0
	defaultAssumedProbability = 0.5
)

var (
	// ErrUntrained is returned when classifying before any category was learned.
	ErrUntrained = errors.New("classifier has no trained categories")
	// ErrInvalidConfiguration is returned for settings the classifier cannot run with.
	ErrInvalidConfiguration = errors.New("invalid classifier configuration")
)

// FeatureProbabilityFunc calculates P(feature|category).
type FeatureProbabilityFunc[F comparable, C cmp.Ordered] func(feature F, cat C) float64

type options struct {
	capacity int
}

// Option configures a Classifier.
type Option func(*options)

// WithCapacity sets how many learned observations the classifier remembers.
func WithCapacity(capacity int) Option {
	return func(o *options) {
		o.capacity = capacity
	}
}

// Classifier is a naive Bayes classifier over features F and categories C:
//
//	classify(f1..fn) = argmax P(cat) * PROD P(fi|cat)
//
// Classifier is not safe for concurrent use while learning. Concurrent
// classification is safe once learning has stopped.
type Classifier[F comparable, C cmp.Ordered] struct {
	Memory[F, C]
}

// NewClassifier returns a pointer to a instance of type Classifier
func NewClassifier[F comparable, C cmp.Ordered](opts ...Option) (*Classifier[F, C], error) {
	o := options{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(&o)
	}
	if o.capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfiguration, o.capacity)
	}

	return &Classifier[F, C]{
		Memory: newMemory[F, C](o.capacity),
	}, nil
}

// FeatureProbability returns featureCount(feature, cat) / categoryCount(cat),
// or 0 for a category that was never learned. Repeated features count once
// per occurrence, so the ratio exceeds 1 when a feature appears more often
// than its category was learned.
func (c *Classifier[F, C]) FeatureProbability(feature F, cat C) float64 {
	catCount := c.CategoryCount(cat)
	if catCount == 0 {
		return 0
	}
	return float64(c.FeatureCount(feature, cat)) / float64(catCount)
}

// FeatureWeighedAverage returns the smoothed P(feature|cat) with a weight of
// 1.0 and an assumed probability of 0.5.
func (c *Classifier[F, C]) FeatureWeighedAverage(feature F, cat C) float64 {
	return c.FeatureWeighedAverageWith(feature, cat, nil, defaultWeight, defaultAssumedProbability)
}

// FeatureWeighedAverageWith blends the probability produced by calc (or
// FeatureProbability when calc is nil) with assumedProbability, weighted by
// how often the feature was seen overall.
func (c *Classifier[F, C]) FeatureWeighedAverageWith(feature F, cat C, calc FeatureProbabilityFunc[F, C], weight, assumedProbability float64) float64 {
	var basic float64
	if calc == nil {
		basic = c.FeatureProbability(feature, cat)
	} else {
		basic = calc(feature, cat)
	}

	totals := float64(c.TotalFeatureCount(feature))
	return (weight*assumedProbability + totals*basic) / (weight + totals)
}

// CategoryProbability returns P(cat) * PROD P(feature|cat) as a plain product.
// It is an unnormalized score, not a probability: repeated features can push
// it above 1, and long feature sets underflow toward zero. Ranking uses the
// log-domain equivalent.
func (c *Classifier[F, C]) CategoryProbability(features []F, cat C) float64 {
	total := c.CategoriesTotal()
	if total == 0 {
		return 0
	}

	p := float64(c.CategoryCount(cat)) / float64(total)
	for _, feature := range features {
		p *= c.FeatureWeighedAverage(feature, cat)
	}
	return p
}

// logCategoryProbability is log(CategoryProbability). Every weighed average is
// strictly positive, so the logarithm is always finite for known categories.
func (c *Classifier[F, C]) logCategoryProbability(features []F, cat C, total float64) float64 {
	score := math.Log(float64(c.CategoryCount(cat)) / total)
	for _, feature := range features {
		score += math.Log(c.FeatureWeighedAverage(feature, cat))
	}
	return score
}

// ClassifyDetailed scores features against every known category and returns
// the classifications in ascending order (see Compare). Probabilities are
// normalized to sum to one.
func (c *Classifier[F, C]) ClassifyDetailed(features []F) ([]Classification[F, C], error) {
	cats := c.Categories()
	if len(cats) == 0 {
		return nil, ErrUntrained
	}

	total := float64(c.CategoriesTotal())
	results := make([]Classification[F, C], len(cats))
	maxScore := math.Inf(-1)
	for i, cat := range cats {
		score := c.logCategoryProbability(features, cat, total)
		results[i] = Classification[F, C]{
			Features: features,
			Category: cat,
			LogScore: score,
		}
		maxScore = max(maxScore, score)
	}

	var sum float64
	for i := range results {
		results[i].Probability = math.Exp(results[i].LogScore - maxScore)
		sum += results[i].Probability
	}
	for i := range results {
		results[i].Probability /= sum
	}

	slices.SortFunc(results, Compare[F, C])
	return results, nil
}

// Classify returns the most probable category for features. Ties resolve to
// the lexically smallest category.
func (c *Classifier[F, C]) Classify(features []F) (Classification[F, C], error) {
	results, err := c.ClassifyDetailed(features)
	if err != nil {
		return Classification[F, C]{}, err
	}
	return results[len(results)-1], nil
}

// Reset forgets everything learned while keeping the configured capacity.
func (c *Classifier[F, C]) Reset() {
	c.Memory.reset()
}
