package domain

import (
	"varscope.dev/pkg/varscope/internal/adapter"
	m "varscope.dev/pkg/varscope/internal/model"
)

// ApplyFn is a model function taking array inputs, as accepted by LazyInit.
type ApplyFn func(scope *Scope, inputs ...*m.Array) (*m.Array, error)

// LazyInit wraps fn into an initializer that never touches the input data:
// inputs are replaced by abstract placeholders of the same shape and dtype
// before the run. Parameter initializers that depend only on shapes run
// normally; any created variable still abstract after the run depends on
// input data and is reported as a LazyInitError.
func LazyInit(fn ApplyFn) func(key adapter.Key, inputs ...*m.Array) (m.Collections, error) {
	return func(key adapter.Key, inputs ...*m.Array) (m.Collections, error) {
		abstract := make([]*m.Array, len(inputs))
		for i, input := range inputs {
			abstract[i] = m.Placeholder(input.Shape, input.DType)
		}

		cols, err := Init(func(scope *Scope) error {
			_, err := fn(scope, abstract...)
			return err
		}, key)
		if err != nil {
			return nil, err
		}

		if err := checkConcrete(cols); err != nil {
			return nil, err
		}

		return cols, nil
	}
}

// checkConcrete rejects trees holding abstract leaves: a placeholder that
// survived initialization means its value was computed from input data.
func checkConcrete(cols m.Collections) error {
	for _, row := range m.Flatten(cols) {
		arr, ok := row.Value.(*m.Array)
		if !ok || !arr.Abstract() {
			continue
		}

		return &m.LazyInitError{Collection: row.Collection, Name: row.Path}
	}

	return nil
}
