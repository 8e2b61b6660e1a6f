package category

// Category holds the feature tallies learned for a single category.
type Category[C comparable, F comparable] struct {
	name     C
	features *Counter[F]
}

// NewCategory returns a pointer to a instance of type Category
func NewCategory[C comparable, F comparable](name C) *Category[C, F] {
	return &Category[C, F]{
		name:     name,
		features: NewCounter[F](),
	}
}

// Name returns the category label.
func (cat *Category[C, F]) Name() C {
	return cat.name
}

// TrainFeature records count more occurrences of feature in this category.
func (cat *Category[C, F]) TrainFeature(feature F, count int) error {
	return cat.features.Add(feature, count)
}

// UntrainFeature forgets count occurrences of feature. Unknown features are a no-op.
func (cat *Category[C, F]) UntrainFeature(feature F, count int) error {
	return cat.features.Remove(feature, count)
}

// GetFeatureCount returns how often feature occurred in this category.
func (cat *Category[C, F]) GetFeatureCount(feature F) int {
	return cat.features.Get(feature)
}

// GetTally returns the total of all feature occurrences for this category.
func (cat *Category[C, F]) GetTally() int {
	return cat.features.Tally()
}

// Len returns the number of distinct features in this category.
func (cat *Category[C, F]) Len() int {
	return cat.features.Len()
}

// Empty reports whether the category has no features left.
func (cat *Category[C, F]) Empty() bool {
	return cat.features.Len() == 0
}
