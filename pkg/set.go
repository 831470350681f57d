// Package pkg is a package that provides utilities for varscope.
package pkg

import (
	"cmp"
	"sort"
)

// Set is a generic unordered set of comparable items.
type Set[T comparable] map[T]struct{}

// NewSet creates a Set containing the given items.
func NewSet[T comparable](items ...T) Set[T] {
	s := make(Set[T], len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}

	return s
}

// Add inserts an item into the set.
func (s Set[T]) Add(item T) {
	s[item] = struct{}{}
}

// Contains reports whether the item is in the set.
func (s Set[T]) Contains(item T) bool {
	_, ok := s[item]
	return ok
}

// Len returns the number of items in the set.
func (s Set[T]) Len() int {
	return len(s)
}

// Union returns a new set with the items of s and other.
func (s Set[T]) Union(other Set[T]) Set[T] {
	out := make(Set[T], len(s)+len(other))
	for item := range s {
		out[item] = struct{}{}
	}

	for item := range other {
		out[item] = struct{}{}
	}

	return out
}

// Intersect returns a new set with the items present in both s and other.
func (s Set[T]) Intersect(other Set[T]) Set[T] {
	out := make(Set[T])

	for item := range s {
		if other.Contains(item) {
			out[item] = struct{}{}
		}
	}

	return out
}

// Subtract returns a new set with the items of s that are not in other.
func (s Set[T]) Subtract(other Set[T]) Set[T] {
	out := make(Set[T])

	for item := range s {
		if !other.Contains(item) {
			out[item] = struct{}{}
		}
	}

	return out
}

// Equal reports whether s and other contain exactly the same items.
func (s Set[T]) Equal(other Set[T]) bool {
	if len(s) != len(other) {
		return false
	}

	for item := range s {
		if !other.Contains(item) {
			return false
		}
	}

	return true
}

// Sorted returns the items of the set in ascending order.
func Sorted[T cmp.Ordered](s Set[T]) []T {
	out := make([]T, 0, len(s))
	for item := range s {
		out = append(out, item)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}
