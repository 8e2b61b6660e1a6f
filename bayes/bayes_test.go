package bayes

import (
	"errors"
	"math"
	"slices"
	"testing"
)

func newTestClassifier(t testing.TB, opts ...Option) *Classifier[string, string] {
	t.Helper()
	classifier, err := NewClassifier[string, string](opts...)
	if err != nil {
		t.Fatalf("unexpected error creating classifier: %v", err)
	}
	return classifier
}

// checkInvariants verifies the count bookkeeping the classifier relies on.
func checkInvariants(t testing.TB, c *Classifier[string, string]) {
	t.Helper()

	if c.MemorySize() > c.Capacity() {
		t.Fatalf("memory size %d exceeds capacity %d", c.MemorySize(), c.Capacity())
	}

	for _, feature := range c.Features() {
		total := c.TotalFeatureCount(feature)
		if total <= 0 {
			t.Fatalf("feature %q has non-positive total %d", feature, total)
		}
		sum := 0
		for _, name := range c.perCategory.Names() {
			sum += c.FeatureCount(feature, name)
		}
		if sum != total {
			t.Fatalf("feature %q total %d does not match per-category sum %d", feature, total, sum)
		}
	}

	for _, name := range c.perCategory.Names() {
		cat, _ := c.perCategory.LookupCategory(name)
		if cat.Empty() {
			t.Fatalf("category %q kept an empty feature map", name)
		}
		if c.CategoryCount(name) <= 0 {
			t.Fatalf("category %q has features but count %d", name, c.CategoryCount(name))
		}
	}

	observed := 0
	for _, cl := range c.Observations() {
		observed += len(cl.Features)
	}
	if observed != c.totalFeatures.Tally() {
		t.Fatalf("remembered features %d do not match total tally %d", observed, c.totalFeatures.Tally())
	}
}

func TestNewClassifierRejectsInvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		_, err := NewClassifier[string, string](WithCapacity(capacity))
		if !errors.Is(err, ErrInvalidConfiguration) {
			t.Fatalf("expected ErrInvalidConfiguration for capacity %d, got %v", capacity, err)
		}
	}

	classifier := newTestClassifier(t)
	if classifier.Capacity() != DefaultCapacity {
		t.Fatalf("unexpected default capacity: got %d, want %d", classifier.Capacity(), DefaultCapacity)
	}
}

func TestLearnUpdatesCounts(t *testing.T) {
	classifier := newTestClassifier(t)

	classifier.Learn("c", []string{"int", "int", "void"})
	classifier.Learn("python", []string{"def", "int"})

	if got := classifier.FeatureCount("int", "c"); got != 2 {
		t.Fatalf("unexpected int count in c: got %d, want 2", got)
	}
	if got := classifier.TotalFeatureCount("int"); got != 3 {
		t.Fatalf("unexpected int total: got %d, want 3", got)
	}
	if got := classifier.CategoryCount("c"); got != 1 {
		t.Fatalf("unexpected c count: got %d, want 1", got)
	}
	if got := classifier.CategoriesTotal(); got != 2 {
		t.Fatalf("unexpected categories total: got %d, want 2", got)
	}
	if got := classifier.Categories(); !slices.Equal(got, []string{"c", "python"}) {
		t.Fatalf("unexpected categories: got %v", got)
	}
	if distinct, occurrences := classifier.CategoryFeatureStats("c"); distinct != 2 || occurrences != 3 {
		t.Fatalf("unexpected c feature stats: got %d distinct, %d occurrences", distinct, occurrences)
	}
	if distinct, occurrences := classifier.CategoryFeatureStats("go"); distinct != 0 || occurrences != 0 {
		t.Fatalf("unexpected stats for unknown category: got %d, %d", distinct, occurrences)
	}
	checkInvariants(t, classifier)
}

func TestRepeatedFeaturesCountPerOccurrence(t *testing.T) {
	classifier := newTestClassifier(t)
	classifier.Learn("c", []string{"x", "x", "x"})

	if got := classifier.FeatureProbability("x", "c"); got != 3 {
		t.Fatalf("unexpected feature probability: got %f, want 3", got)
	}
	if got := classifier.CategoryProbability([]string{"x"}, "c"); math.Abs(got-2.375) > 1e-12 {
		t.Fatalf("unexpected unnormalized score: got %f, want 2.375", got)
	}
	checkInvariants(t, classifier)
}

func TestLearnCopiesFeatures(t *testing.T) {
	classifier := newTestClassifier(t)
	features := []string{"fn", "let"}

	classifier.Learn("rust", features)
	features[0] = "mutated"

	if got := classifier.Observations()[0].Features[0]; got != "fn" {
		t.Fatalf("expected remembered features to be isolated from caller, got %q", got)
	}
}

func TestEvictionRevertsOldestObservation(t *testing.T) {
	classifier := newTestClassifier(t, WithCapacity(2))

	classifier.Learn("first", []string{"x", "shared"})
	classifier.Learn("second", []string{"shared", "y"})
	classifier.Learn("third", []string{"z"})

	if got := classifier.MemorySize(); got != 2 {
		t.Fatalf("unexpected memory size: got %d, want 2", got)
	}
	if got := classifier.FeatureCount("x", "first"); got != 0 {
		t.Fatalf("expected evicted feature count to be 0, got %d", got)
	}
	if got := classifier.TotalFeatureCount("x"); got != 0 {
		t.Fatalf("expected evicted feature total to be 0, got %d", got)
	}
	if got := classifier.CategoryCount("first"); got != 0 {
		t.Fatalf("expected evicted category count to be 0, got %d", got)
	}
	if _, ok := classifier.perCategory.LookupCategory("first"); ok {
		t.Fatal("expected evicted category feature map to be removed")
	}
	if got := classifier.TotalFeatureCount("shared"); got != 1 {
		t.Fatalf("expected shared feature to keep the later observation, got %d", got)
	}
	if got := classifier.FeatureCount("y", "second"); got != 1 {
		t.Fatalf("unexpected y count: got %d, want 1", got)
	}
	if got := classifier.CategoryCount("third"); got != 1 {
		t.Fatalf("unexpected third count: got %d, want 1", got)
	}
	if got := classifier.Categories(); !slices.Equal(got, []string{"second", "third"}) {
		t.Fatalf("unexpected categories after eviction: got %v", got)
	}
	checkInvariants(t, classifier)
}

func TestEmptyFeatureSetKeepsCategoryCountOnly(t *testing.T) {
	classifier := newTestClassifier(t, WithCapacity(1))

	classifier.Learn("empty", nil)
	if got := classifier.CategoryCount("empty"); got != 1 {
		t.Fatalf("unexpected count for empty observation: got %d, want 1", got)
	}
	if _, ok := classifier.perCategory.LookupCategory("empty"); ok {
		t.Fatal("expected no feature map for an observation without features")
	}

	classifier.Learn("other", []string{"a"})
	if got := classifier.CategoryCount("empty"); got != 0 {
		t.Fatalf("expected empty category to be evicted, got %d", got)
	}
	checkInvariants(t, classifier)
}

func TestSetCapacity(t *testing.T) {
	classifier := newTestClassifier(t)
	for _, cat := range []string{"a", "b", "c", "d"} {
		classifier.Learn(cat, []string{cat + "-feature", "common"})
	}

	if err := classifier.SetCapacity(0); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
	if err := classifier.SetCapacity(-5); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
	if classifier.MemorySize() != 4 {
		t.Fatalf("expected rejected capacity to leave memory untouched, got %d", classifier.MemorySize())
	}

	if err := classifier.SetCapacity(2); err != nil {
		t.Fatalf("unexpected error shrinking capacity: %v", err)
	}
	if got := classifier.Categories(); !slices.Equal(got, []string{"c", "d"}) {
		t.Fatalf("expected oldest observations to be forgotten, got %v", got)
	}
	if got := classifier.TotalFeatureCount("common"); got != 2 {
		t.Fatalf("unexpected common total after shrink: got %d, want 2", got)
	}
	checkInvariants(t, classifier)

	if err := classifier.SetCapacity(10); err != nil {
		t.Fatalf("unexpected error growing capacity: %v", err)
	}
	if classifier.MemorySize() != 2 {
		t.Fatalf("growing capacity should not change memory, got %d", classifier.MemorySize())
	}
}

func TestFeatureProbabilityGuardsUnknownCategory(t *testing.T) {
	classifier := newTestClassifier(t)
	if got := classifier.FeatureProbability("int", "c"); got != 0 {
		t.Fatalf("expected zero probability for unknown category, got %f", got)
	}

	classifier.Learn("c", []string{"int"})
	classifier.Learn("c", []string{"void"})
	if got := classifier.FeatureProbability("int", "c"); got != 0.5 {
		t.Fatalf("unexpected feature probability: got %f, want 0.5", got)
	}
}

func TestFeatureWeighedAverage(t *testing.T) {
	classifier := newTestClassifier(t)

	if got := classifier.FeatureWeighedAverage("unseen", "c"); got != 0.5 {
		t.Fatalf("expected assumed probability for unseen feature, got %f", got)
	}

	classifier.Learn("c", []string{"int"})
	// (1*0.5 + 1*1) / (1 + 1)
	if got := classifier.FeatureWeighedAverage("int", "c"); got != 0.75 {
		t.Fatalf("unexpected weighed average: got %f, want 0.75", got)
	}

	constant := func(string, string) float64 { return 0 }
	// (2*0.2 + 1*0) / (2 + 1)
	got := classifier.FeatureWeighedAverageWith("int", "c", constant, 2, 0.2)
	if math.Abs(got-0.4/3) > 1e-12 {
		t.Fatalf("unexpected weighed average with calculator: got %f", got)
	}
}

func TestClassifyUntrained(t *testing.T) {
	classifier := newTestClassifier(t)

	if _, err := classifier.Classify([]string{"anything"}); !errors.Is(err, ErrUntrained) {
		t.Fatalf("expected ErrUntrained, got %v", err)
	}
	if _, err := classifier.ClassifyDetailed(nil); !errors.Is(err, ErrUntrained) {
		t.Fatalf("expected ErrUntrained for detailed classification, got %v", err)
	}
}

func TestClassifyEndToEnd(t *testing.T) {
	classifier := newTestClassifier(t)
	classifier.Learn("pythonish", []string{"def", "self", "import"})
	classifier.Learn("cish", []string{"int", "struct", "void"})

	result, err := classifier.Classify([]string{"def", "self"})
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}
	if result.Category != "pythonish" {
		t.Fatalf("unexpected category: got %q, want %q", result.Category, "pythonish")
	}
	if result.Probability <= 0.5 || result.Probability > 1 {
		t.Fatalf("unexpected probability for winner: %f", result.Probability)
	}

	result, err = classifier.Classify([]string{"void", "int"})
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}
	if result.Category != "cish" {
		t.Fatalf("unexpected category: got %q, want %q", result.Category, "cish")
	}

	first, err := classifier.Classify([]string{"banana"})
	if err != nil {
		t.Fatalf("classify of unseen feature failed: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, _ := classifier.Classify([]string{"banana"})
		if again.Category != first.Category {
			t.Fatalf("non-deterministic classification: %q then %q", first.Category, again.Category)
		}
	}
	if first.Category != "cish" {
		t.Fatalf("expected lexical tie break to cish, got %q", first.Category)
	}
}

func TestClassifyTieBreaksDeterministically(t *testing.T) {
	classifier := newTestClassifier(t)
	classifier.Learn("zeta", []string{"shared", "token"})
	classifier.Learn("alpha", []string{"shared", "token"})

	features := []string{"shared"}
	if a, z := classifier.CategoryProbability(features, "alpha"), classifier.CategoryProbability(features, "zeta"); a != z {
		t.Fatalf("expected equal category probabilities, got alpha=%f zeta=%f", a, z)
	}

	result, err := classifier.Classify(features)
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}
	if result.Category != "alpha" {
		t.Fatalf("expected deterministic lexical tie break to alpha, got %q", result.Category)
	}
}

func TestClassifyDetailedOrdering(t *testing.T) {
	classifier := newTestClassifier(t)
	classifier.Learn("go", []string{"func", "package", "defer"})
	classifier.Learn("go", []string{"func", "chan"})
	classifier.Learn("java", []string{"public", "class", "void"})
	classifier.Learn("kotlin", []string{"fun", "val", "class"})

	results, err := classifier.ClassifyDetailed([]string{"func", "defer"})
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected a classification per category, got %d", len(results))
	}
	if !slices.IsSortedFunc(results, Compare[string, string]) {
		t.Fatalf("expected ascending order, got %+v", results)
	}
	if results[len(results)-1].Category != "go" {
		t.Fatalf("expected go to rank last (highest), got %q", results[len(results)-1].Category)
	}

	sum := 0.0
	for _, r := range results {
		sum += r.Probability
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("expected normalized probabilities to sum to 1, got %f", sum)
	}
}

func TestLogScoreMatchesProductRanking(t *testing.T) {
	classifier := newTestClassifier(t)
	classifier.Learn("a", []string{"x", "y"})
	classifier.Learn("b", []string{"y", "z"})
	classifier.Learn("b", []string{"z"})

	features := []string{"y", "z"}
	results, err := classifier.ClassifyDetailed(features)
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}
	for _, r := range results {
		want := math.Log(classifier.CategoryProbability(features, r.Category))
		if math.Abs(r.LogScore-want) > 1e-9 {
			t.Fatalf("log score for %q: got %f, want %f", r.Category, r.LogScore, want)
		}
	}
}

func TestLongFeatureSetsDoNotUnderflowRanking(t *testing.T) {
	classifier := newTestClassifier(t)
	classifier.Learn("a", []string{"x"})
	classifier.Learn("b", []string{"y"})

	features := make([]string, 5000)
	for i := range features {
		features[i] = "x"
	}

	// Both plain products collapse into the subnormal range, where they no
	// longer carry a usable ratio.
	for _, cat := range []string{"a", "b"} {
		if got := classifier.CategoryProbability(features, cat); got >= 1e-300 {
			t.Fatalf("expected the plain product for %q to collapse, got %g", cat, got)
		}
	}
	result, err := classifier.Classify(features)
	if err != nil {
		t.Fatalf("classify failed: %v", err)
	}
	if result.Category != "a" {
		t.Fatalf("expected log-domain ranking to pick a, got %q", result.Category)
	}
}

func TestCategoryProbabilityGrowsUntilCapacity(t *testing.T) {
	const capacity = 3
	classifier := newTestClassifier(t, WithCapacity(capacity))
	features := []string{"def", "self"}

	var previous float64
	for i := 1; i <= capacity; i++ {
		classifier.Learn("pythonish", features)
		p := classifier.CategoryProbability(features, "pythonish")
		if p <= previous {
			t.Fatalf("expected probability to grow at learn %d: got %f after %f", i, p, previous)
		}
		previous = p
	}

	classifier.Learn("pythonish", features)
	atOverflow := classifier.CategoryProbability(features, "pythonish")
	if atOverflow != previous {
		t.Fatalf("expected probability to plateau once eviction starts: got %f, want %f", atOverflow, previous)
	}
	if classifier.MemorySize() != capacity {
		t.Fatalf("unexpected memory size: got %d, want %d", classifier.MemorySize(), capacity)
	}
	checkInvariants(t, classifier)
}

func TestReset(t *testing.T) {
	classifier := newTestClassifier(t, WithCapacity(5))
	classifier.Learn("go", []string{"func"})

	classifier.Reset()

	if len(classifier.Categories()) != 0 || classifier.MemorySize() != 0 {
		t.Fatal("expected reset to forget everything")
	}
	if classifier.Capacity() != 5 {
		t.Fatalf("expected reset to keep capacity, got %d", classifier.Capacity())
	}
}

func TestCompareIsTotalOrder(t *testing.T) {
	a := Classification[string, string]{Category: "a", Probability: 0.5}
	b := Classification[string, string]{Category: "b", Probability: 0.5}
	c := Classification[string, string]{Category: "c", Probability: 0.7}

	if Compare(a, b) != -Compare(b, a) {
		t.Fatal("expected antisymmetric comparison for tied probabilities")
	}
	if Compare(a, a) != 0 {
		t.Fatal("expected equal classifications to compare equal")
	}
	if Compare(a, c) >= 0 || Compare(b, c) >= 0 {
		t.Fatal("expected higher probability to sort last")
	}
	if Compare(b, a) >= 0 {
		t.Fatal("expected lexically smaller category to be greater on ties")
	}
}

func FuzzLearnInvariants(f *testing.F) {
	f.Add([]byte("abcabcabd"), uint8(2))
	f.Add([]byte(""), uint8(1))
	f.Add([]byte{0xff, 0x00, 0x10, 0x7f}, uint8(5))

	f.Fuzz(func(t *testing.T, ops []byte, capacity uint8) {
		classifier := newTestClassifier(t, WithCapacity(int(capacity%8)+1))

		for i := 0; i+1 < len(ops); i += 2 {
			cat := string(rune('a' + ops[i]%4))
			n := int(ops[i+1] % 5)
			features := make([]string, n)
			for j := range features {
				features[j] = string(rune('p' + (int(ops[i+1])+j)%6))
			}
			classifier.Learn(cat, features)
			checkInvariants(t, classifier)
		}

		if classifier.CategoriesTotal() == 0 {
			return
		}
		results, err := classifier.ClassifyDetailed([]string{"p", "q"})
		if err != nil {
			t.Fatalf("classify failed: %v", err)
		}
		for _, r := range results {
			if r.Probability < 0 || r.Probability > 1 || math.IsNaN(r.Probability) {
				t.Fatalf("invalid probability %f for %q", r.Probability, r.Category)
			}
		}
	})
}
