package builder

import (
	"maps"
	"slices"
)

// SliceBuilder accumulates slice elements.
type SliceBuilder[E any] struct {
	items []E
}

// NewSliceBuilder starts from a copy of seed.
func NewSliceBuilder[E any](seed []E) *SliceBuilder[E] {
	return &SliceBuilder[E]{items: slices.Clone(seed)}
}

func (b *SliceBuilder[E]) Add(v ...E) *SliceBuilder[E] {
	b.items = append(b.items, v...)
	return b
}

// RemoveIf drops every element matching fn.
func (b *SliceBuilder[E]) RemoveIf(fn func(E) bool) *SliceBuilder[E] {
	b.items = slices.DeleteFunc(b.items, fn)
	return b
}

func (b *SliceBuilder[E]) Clear() *SliceBuilder[E] {
	b.items = b.items[:0]
	return b
}

func (b *SliceBuilder[E]) Len() int { return len(b.items) }

// Build returns a copy of the accumulated elements. A builder that never
// held elements yields nil.
func (b *SliceBuilder[E]) Build() []E {
	if b.items == nil {
		return nil
	}
	return slices.Clip(slices.Clone(b.items))
}

// SetBuilder accumulates set members stored as map[E]struct{}.
type SetBuilder[E comparable] struct {
	items map[E]struct{}
}

func NewSetBuilder[E comparable](seed map[E]struct{}) *SetBuilder[E] {
	items := maps.Clone(seed)
	if items == nil {
		items = make(map[E]struct{})
	}
	return &SetBuilder[E]{items: items}
}

func (b *SetBuilder[E]) Add(v ...E) *SetBuilder[E] {
	for _, e := range v {
		b.items[e] = struct{}{}
	}
	return b
}

func (b *SetBuilder[E]) Remove(v ...E) *SetBuilder[E] {
	for _, e := range v {
		delete(b.items, e)
	}
	return b
}

func (b *SetBuilder[E]) Contains(v E) bool {
	_, ok := b.items[v]
	return ok
}

func (b *SetBuilder[E]) Len() int { return len(b.items) }

func (b *SetBuilder[E]) Build() map[E]struct{} { return maps.Clone(b.items) }

// MapBuilder accumulates map entries.
type MapBuilder[K comparable, V any] struct {
	items map[K]V
}

func NewMapBuilder[K comparable, V any](seed map[K]V) *MapBuilder[K, V] {
	items := maps.Clone(seed)
	if items == nil {
		items = make(map[K]V)
	}
	return &MapBuilder[K, V]{items: items}
}

func (b *MapBuilder[K, V]) Put(k K, v V) *MapBuilder[K, V] {
	b.items[k] = v
	return b
}

// PutAll copies every entry of m.
func (b *MapBuilder[K, V]) PutAll(m map[K]V) *MapBuilder[K, V] {
	maps.Copy(b.items, m)
	return b
}

func (b *MapBuilder[K, V]) Remove(k ...K) *MapBuilder[K, V] {
	for _, key := range k {
		delete(b.items, key)
	}
	return b
}

func (b *MapBuilder[K, V]) Len() int { return len(b.items) }

func (b *MapBuilder[K, V]) Build() map[K]V { return maps.Clone(b.items) }
