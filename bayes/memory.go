package bayes

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/hickeroar/codebayes/bayes/category"
)

// DefaultCapacity is how many learned observations are remembered by default.
const DefaultCapacity = 1000

// Memory keeps the statistics a classifier learns from and the FIFO of the
// observations that produced them. Once the FIFO grows past its capacity the
// oldest observation is forgotten and its counts are reverted.
//
// Memory is not safe for concurrent use.
type Memory[F comparable, C cmp.Ordered] struct {
	perCategory     *category.Categories[C, F]
	totalFeatures   *category.Counter[F]
	totalCategories *category.Counter[C]

	queue    []Classification[F, C]
	head     int
	capacity int
}

func newMemory[F comparable, C cmp.Ordered](capacity int) Memory[F, C] {
	return Memory[F, C]{
		perCategory:     category.NewCategories[C, F](),
		totalFeatures:   category.NewCounter[F](),
		totalCategories: category.NewCounter[C](),
		capacity:        capacity,
	}
}

// Learn tells the memory that features were observed in category.
func (m *Memory[F, C]) Learn(cat C, features []F) {
	m.LearnClassification(Classification[F, C]{
		Features:    slices.Clone(features),
		Category:    cat,
		Probability: 1,
	})
}

// LearnClassification records a classification as a training observation.
func (m *Memory[F, C]) LearnClassification(cl Classification[F, C]) {
	for _, feature := range cl.Features {
		m.incrementFeature(feature, cl.Category)
	}
	m.incrementCategory(cl.Category)

	m.queue = append(m.queue, cl)

	if m.MemorySize() > m.capacity {
		m.forgetOldest()
	}
}

// SetCapacity changes how many observations are remembered. Shrinking below
// the current size forgets the oldest observations first.
func (m *Memory[F, C]) SetCapacity(capacity int) error {
	if capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfiguration, capacity)
	}

	for m.MemorySize() > capacity {
		m.forgetOldest()
	}
	m.capacity = capacity

	return nil
}

// Capacity returns the maximum number of remembered observations.
func (m *Memory[F, C]) Capacity() int {
	return m.capacity
}

// MemorySize returns the number of currently remembered observations.
func (m *Memory[F, C]) MemorySize() int {
	return len(m.queue) - m.head
}

// Observations returns a copy of the remembered observations, oldest first.
func (m *Memory[F, C]) Observations() []Classification[F, C] {
	return slices.Clone(m.queue[m.head:])
}

// Features returns every feature with a positive total count.
func (m *Memory[F, C]) Features() []F {
	return m.totalFeatures.Keys()
}

// Categories returns the known categories in ascending order.
func (m *Memory[F, C]) Categories() []C {
	cats := m.totalCategories.Keys()
	slices.Sort(cats)
	return cats
}

// FeatureCount returns how often feature occurred in category.
func (m *Memory[F, C]) FeatureCount(feature F, cat C) int {
	features, ok := m.perCategory.LookupCategory(cat)
	if !ok {
		return 0
	}
	return features.GetFeatureCount(feature)
}

// CategoryCount returns how many observations were learned for category.
func (m *Memory[F, C]) CategoryCount(cat C) int {
	return m.totalCategories.Get(cat)
}

// TotalFeatureCount returns how often feature occurred across all categories.
func (m *Memory[F, C]) TotalFeatureCount(feature F) int {
	return m.totalFeatures.Get(feature)
}

// CategoryFeatureStats returns how many distinct features category holds and
// how many feature occurrences they add up to.
func (m *Memory[F, C]) CategoryFeatureStats(cat C) (distinct, occurrences int) {
	features, ok := m.perCategory.LookupCategory(cat)
	if !ok {
		return 0, 0
	}
	return features.Len(), features.GetTally()
}

// CategoriesTotal returns the sum of all category counts.
func (m *Memory[F, C]) CategoriesTotal() int {
	return m.totalCategories.Tally()
}

func (m *Memory[F, C]) incrementFeature(feature F, cat C) {
	_ = m.perCategory.GetCategory(cat).TrainFeature(feature, 1)
	_ = m.totalFeatures.Add(feature, 1)
}

func (m *Memory[F, C]) incrementCategory(cat C) {
	_ = m.totalCategories.Add(cat, 1)
}

func (m *Memory[F, C]) decrementFeature(feature F, cat C) {
	features, ok := m.perCategory.LookupCategory(cat)
	if !ok || features.GetFeatureCount(feature) == 0 {
		return
	}

	_ = features.UntrainFeature(feature, 1)
	if features.Empty() {
		m.perCategory.DeleteCategory(cat)
	}

	_ = m.totalFeatures.Remove(feature, 1)
}

func (m *Memory[F, C]) decrementCategory(cat C) {
	_ = m.totalCategories.Remove(cat, 1)
}

func (m *Memory[F, C]) forgetOldest() {
	forgotten := m.queue[m.head]
	m.queue[m.head] = Classification[F, C]{}
	m.head++

	// Compact once the dead prefix outweighs the live entries.
	if m.head > len(m.queue)/2 {
		m.queue = slices.Clone(m.queue[m.head:])
		m.head = 0
	}

	for _, feature := range forgotten.Features {
		m.decrementFeature(feature, forgotten.Category)
	}
	m.decrementCategory(forgotten.Category)
}

func (m *Memory[F, C]) reset() {
	*m = newMemory[F, C](m.capacity)
}
