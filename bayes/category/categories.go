package category

import (
	"cmp"
	"slices"
)

// Categories represents all our trained categories and enables us to interact with them.
type Categories[C cmp.Ordered, F comparable] struct {
	categories map[C]*Category[C, F]
}

// NewCategories returns a pointer to a instance of type Categories
func NewCategories[C cmp.Ordered, F comparable]() *Categories[C, F] {
	return &Categories[C, F]{
		categories: make(map[C]*Category[C, F]),
	}
}

// AddCategory is responsible for adding a new trainable category
func (cats *Categories[C, F]) AddCategory(name C) *Category[C, F] {
	cat := NewCategory[C, F](name)
	cats.categories[name] = cat
	return cat
}

// GetCategory returns a specified category, creating it when missing.
func (cats *Categories[C, F]) GetCategory(name C) *Category[C, F] {
	if val, ok := cats.categories[name]; ok {
		return val
	}

	return cats.AddCategory(name)
}

// LookupCategory returns a category without creating it.
func (cats *Categories[C, F]) LookupCategory(name C) (*Category[C, F], bool) {
	cat, ok := cats.categories[name]
	return cat, ok
}

// DeleteCategory removes a category from the list of categories
func (cats *Categories[C, F]) DeleteCategory(name C) {
	delete(cats.categories, name)
}

// Names returns the category names in ascending order.
func (cats *Categories[C, F]) Names() []C {
	names := make([]C, 0, len(cats.categories))
	for name := range cats.categories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of categories holding at least one feature.
func (cats *Categories[C, F]) Len() int {
	return len(cats.categories)
}
