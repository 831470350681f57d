// Package model defines the data structures for scoped variable trees.
package model

import (
	"fmt"
	"strings"
)

// DType identifies the element type of an Array.
type DType string

// Supported element types.
const (
	Float32 DType = "float32"
	Float64 DType = "float64"
)

// Shape describes the dimensions of an Array.
type Shape []int

// Size returns the total number of elements a Shape addresses.
func (s Shape) Size() int {
	size := 1
	for _, dim := range s {
		size *= dim
	}

	return size
}

// Equal reports whether two shapes have identical dimensions.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}

	for i, dim := range s {
		if dim != other[i] {
			return false
		}
	}

	return true
}

// String renders a shape as "(d1, d2, ...)".
func (s Shape) String() string {
	dims := make([]string, len(s))
	for i, dim := range s {
		dims[i] = fmt.Sprintf("%d", dim)
	}

	return "(" + strings.Join(dims, ", ") + ")"
}

// Clone returns an independent copy of the shape.
func (s Shape) Clone() Shape {
	out := make(Shape, len(s))
	copy(out, s)

	return out
}

// Array is a dense numeric value stored in a variable tree. An abstract
// Array carries shape and dtype metadata only; its data is never
// materialized. Abstract arrays are produced by shape-only execution and
// taint every value computed from them.
type Array struct {
	Shape Shape     `yaml:"shape"`
	DType DType     `yaml:"dtype"`
	Data  []float64 `yaml:"data,omitempty"`

	abstract bool
}

// NewArray creates a concrete Array, validating that the data length
// matches the shape.
func NewArray(shape Shape, dtype DType, data []float64) (*Array, error) {
	if len(data) != shape.Size() {
		return nil, fmt.Errorf("data length %d does not match shape %s (size %d)", len(data), shape, shape.Size())
	}

	return &Array{Shape: shape.Clone(), DType: dtype, Data: data}, nil
}

// Full creates a concrete Array with every element set to value.
func Full(shape Shape, dtype DType, value float64) *Array {
	data := make([]float64, shape.Size())
	for i := range data {
		data[i] = value
	}

	return &Array{Shape: shape.Clone(), DType: dtype, Data: data}
}

// Zeros creates a concrete Array of zeros.
func Zeros(shape Shape, dtype DType) *Array {
	return Full(shape, dtype, 0)
}

// Ones creates a concrete Array of ones.
func Ones(shape Shape, dtype DType) *Array {
	return Full(shape, dtype, 1)
}

// Placeholder creates an abstract Array: shape and dtype metadata without
// any materialized data.
func Placeholder(shape Shape, dtype DType) *Array {
	return &Array{Shape: shape.Clone(), DType: dtype, abstract: true}
}

// Abstract reports whether the array is shape-only.
func (a *Array) Abstract() bool {
	return a.abstract
}

// Equal reports element-wise equality of two concrete arrays. Abstract
// arrays compare by shape and dtype only.
func (a *Array) Equal(other *Array) bool {
	if a == nil || other == nil {
		return a == other
	}

	if !a.Shape.Equal(other.Shape) || a.DType != other.DType || a.abstract != other.abstract {
		return false
	}

	if a.abstract {
		return true
	}

	for i, v := range a.Data {
		if v != other.Data[i] {
			return false
		}
	}

	return true
}

func (a *Array) String() string {
	if a.abstract {
		return fmt.Sprintf("Array%s<%s, abstract>", a.Shape, a.DType)
	}

	return fmt.Sprintf("Array%s<%s>", a.Shape, a.DType)
}
