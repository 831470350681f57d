package domain

import (
	"math"

	"varscope.dev/pkg/varscope/internal/adapter"
	m "varscope.dev/pkg/varscope/internal/model"
)

// ZerosInit fills the parameter with zeros. The key is unused but consumed
// so that initializer swaps never shift sibling RNG streams.
func ZerosInit(dtype m.DType) Initializer {
	return func(_ adapter.Key, shape m.Shape) (*m.Array, error) {
		return m.Zeros(shape, dtype), nil
	}
}

// OnesInit fills the parameter with ones.
func OnesInit(dtype m.DType) Initializer {
	return func(_ adapter.Key, shape m.Shape) (*m.Array, error) {
		return m.Ones(shape, dtype), nil
	}
}

// ConstantInit fills the parameter with a fixed value.
func ConstantInit(value float64, dtype m.DType) Initializer {
	return func(_ adapter.Key, shape m.Shape) (*m.Array, error) {
		return m.Full(shape, dtype, value), nil
	}
}

// NormalInit draws from a zero-mean normal with the given stddev, seeded
// by the derived key.
func NormalInit(stddev float64, dtype m.DType) Initializer {
	return func(key adapter.Key, shape m.Shape) (*m.Array, error) {
		src := adapter.Source(key)

		data := make([]float64, shape.Size())
		for i := range data {
			data[i] = src.NormFloat64() * stddev
		}

		return m.NewArray(shape, dtype, data)
	}
}

// LecunNormalInit scales the normal stddev by the inverse square root of
// the fan-in, taken as the leading axis.
func LecunNormalInit(dtype m.DType) Initializer {
	return func(key adapter.Key, shape m.Shape) (*m.Array, error) {
		fanIn := 1
		if len(shape) > 0 {
			fanIn = shape[0]
		}

		if fanIn < 1 {
			fanIn = 1
		}

		return NormalInit(1/math.Sqrt(float64(fanIn)), dtype)(key, shape)
	}
}
