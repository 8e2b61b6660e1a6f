// Package langclass guesses the programming language of a source snippet.
//
// A Classifier is trained once from a corpus of grouped example sources and
// can then be queried concurrently. Until training completes, and whenever a
// snippet gives no evidence either way, it answers with its default
// language.
package langclass

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hickeroar/codebayes/bayes"
	"github.com/hickeroar/codebayes/corpus"
	"github.com/hickeroar/codebayes/matchtree"
	"github.com/hickeroar/codebayes/tokenize"
)

// DefaultLanguage is reported when no better answer is available.
const DefaultLanguage = "js"

// Strategy selects the scoring model.
type Strategy string

const (
	// StrategyBayes scores bags of features with naive Bayes.
	StrategyBayes Strategy = "bayes"
	// StrategyMatchTree scores sequences of token kinds with match trees.
	StrategyMatchTree Strategy = "matchtree"
)

var (
	// ErrAlreadyTrained is returned when training is requested twice.
	ErrAlreadyTrained = errors.New("classifier already trained")
	// ErrUnknownStrategy is returned for an unsupported strategy name.
	ErrUnknownStrategy = errors.New("unknown classification strategy")
)

// ParseStrategy converts a strategy name into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch s := Strategy(name); s {
	case StrategyBayes, StrategyMatchTree:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// Score is the diagnostic result for one language.
type Score struct {
	Language    string
	Probability float64
	LogScore    float64
}

// Classifier is a trained-once language classifier. It is safe for
// concurrent use.
type Classifier struct {
	mu      sync.RWMutex
	trained atomic.Bool
	started atomic.Bool
	done    chan struct{}
	err     error

	bayes *bayes.Classifier[string, string]
	trees *matchtree.Model

	tokenizer       tokenize.Tokenizer
	loader          *corpus.Loader
	logger          *slog.Logger
	strategy        Strategy
	defaultLanguage string
	capacity        int
	depth           int
	parallelism     int
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithTokenizer sets the feature extractor used by the bayes strategy.
func WithTokenizer(tok tokenize.Tokenizer) Option {
	return func(c *Classifier) {
		if tok != nil {
			c.tokenizer = tok
		}
	}
}

// WithCapacity sets how many training observations are remembered.
func WithCapacity(capacity int) Option {
	return func(c *Classifier) {
		c.capacity = capacity
	}
}

// WithDefaultLanguage sets the answer given when no better one exists.
func WithDefaultLanguage(lang string) Option {
	return func(c *Classifier) {
		c.defaultLanguage = lang
	}
}

// WithLogger sets the logger used for training progress.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithStrategy selects the scoring model.
func WithStrategy(s Strategy) Option {
	return func(c *Classifier) {
		c.strategy = s
	}
}

// WithTreeDepth sets the longest token run the matchtree strategy stores.
func WithTreeDepth(depth int) Option {
	return func(c *Classifier) {
		c.depth = depth
	}
}

// WithParallelism bounds how many corpus files are read at once.
func WithParallelism(n int) Option {
	return func(c *Classifier) {
		c.parallelism = n
	}
}

// New returns an untrained classifier.
func New(opts ...Option) (*Classifier, error) {
	c := &Classifier{
		done:            make(chan struct{}),
		tokenizer:       tokenize.NewWhitespace(),
		logger:          slog.New(slog.DiscardHandler),
		strategy:        StrategyBayes,
		defaultLanguage: DefaultLanguage,
		capacity:        bayes.DefaultCapacity,
		depth:           matchtree.DefaultDepth,
	}
	for _, opt := range opts {
		opt(c)
	}

	if _, err := ParseStrategy(string(c.strategy)); err != nil {
		return nil, err
	}
	if c.defaultLanguage == "" {
		return nil, fmt.Errorf("%w: default language must not be empty", bayes.ErrInvalidConfiguration)
	}

	classifier, err := bayes.NewClassifier[string, string](bayes.WithCapacity(c.capacity))
	if err != nil {
		return nil, err
	}
	c.bayes = classifier
	c.trees = matchtree.NewModel(c.depth)
	c.loader = corpus.NewLoader(corpus.WithParallelism(c.parallelism), corpus.WithLogger(c.logger))

	return c, nil
}

// Train learns every language group in fsys. It may run only once; later
// calls return ErrAlreadyTrained. If training fails the classifier keeps
// answering with its default language.
func (c *Classifier) Train(ctx context.Context, fsys fs.FS) error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyTrained
	}

	c.err = c.train(ctx, fsys)
	close(c.done)
	return c.err
}

// TrainAsync starts Train in the background. Use Wait to observe the result.
func (c *Classifier) TrainAsync(ctx context.Context, fsys fs.FS) {
	go func() {
		err := c.Train(ctx, fsys)
		if err != nil && !errors.Is(err, ErrAlreadyTrained) {
			c.logger.Error("training failed", "error", err)
		}
	}()
}

// Wait blocks until training finishes or ctx is done, and returns the
// training error.
func (c *Classifier) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsTrained reports whether training completed successfully.
func (c *Classifier) IsTrained() bool {
	return c.trained.Load()
}

// Strategy reports the scoring model in use.
func (c *Classifier) Strategy() Strategy {
	return c.strategy
}

// DefaultLanguage reports the fallback answer.
func (c *Classifier) DefaultLanguage() string {
	return c.defaultLanguage
}

func (c *Classifier) train(ctx context.Context, fsys fs.FS) error {
	start := time.Now()
	groups, err := c.loader.Load(ctx, fsys)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, group := range groups {
		switch c.strategy {
		case StrategyMatchTree:
			c.trees.Learn(group.Language, tokenize.Scan(group.Text))
		default:
			c.bayes.Learn(group.Language, c.tokenizer.Features(group.Text))
		}
	}
	c.trained.Store(true)

	c.logger.Info("classifier trained",
		"strategy", string(c.strategy),
		"languages", len(groups),
		"duration", time.Since(start),
	)
	return nil
}

// Languages returns the trained languages in lexical order.
func (c *Classifier) Languages() []string {
	if !c.trained.Load() {
		return []string{}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.strategy == StrategyMatchTree {
		return c.trees.Languages()
	}
	return c.bayes.Categories()
}

// Classify returns the most likely language of snippet, or the default
// language when the classifier is untrained or the snippet is
// inconclusive. Classify never blocks on training.
func (c *Classifier) Classify(snippet string) string {
	if !c.trained.Load() {
		return c.defaultLanguage
	}

	if c.strategy == StrategyMatchTree {
		tokens := tokenize.Scan(snippet)
		c.mu.RLock()
		lang, ok := c.trees.Classify(tokens)
		c.mu.RUnlock()
		if !ok {
			return c.defaultLanguage
		}
		return lang
	}

	features := c.tokenizer.Features(snippet)
	if len(features) == 0 {
		return c.defaultLanguage
	}

	c.mu.RLock()
	result, err := c.bayes.Classify(features)
	c.mu.RUnlock()
	if err != nil {
		return c.defaultLanguage
	}
	return result.Category
}

// ClassifyDetailed returns a score for every trained language, best first.
// It returns an empty slice while the classifier is untrained.
//
// Under the matchtree strategy Probability is the language's share of the
// summed match scores and LogScore is log(1+score).
func (c *Classifier) ClassifyDetailed(snippet string) []Score {
	if !c.trained.Load() {
		return []Score{}
	}

	if c.strategy == StrategyMatchTree {
		tokens := tokenize.Scan(snippet)
		c.mu.RLock()
		matches := c.trees.Scores(tokens)
		c.mu.RUnlock()
		return treeScores(matches)
	}

	features := c.tokenizer.Features(snippet)
	c.mu.RLock()
	results, err := c.bayes.ClassifyDetailed(features)
	c.mu.RUnlock()
	if err != nil {
		return []Score{}
	}

	scores := make([]Score, 0, len(results))
	for _, result := range slices.Backward(results) {
		scores = append(scores, Score{
			Language:    result.Category,
			Probability: result.Probability,
			LogScore:    result.LogScore,
		})
	}
	return scores
}

func treeScores(matches []matchtree.Score) []Score {
	var sum float64
	for _, m := range matches {
		sum += m.Value
	}

	scores := make([]Score, len(matches))
	for i, m := range matches {
		scores[i] = Score{Language: m.Language, LogScore: math.Log1p(m.Value)}
		if sum > 0 {
			scores[i].Probability = m.Value / sum
		}
	}
	return scores
}
