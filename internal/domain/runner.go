package domain

import (
	"log/slog"

	"varscope.dev/pkg/varscope/internal/adapter"
	m "varscope.dev/pkg/varscope/internal/model"
)

// ModelFn is a model function: it receives the root scope of one
// invocation and reads or creates variables through it.
type ModelFn func(*Scope) error

// Init runs fn over an empty variable tree with every collection mutable
// and a "params" seed derived from key, returning the collections the run
// created. The returned tree is detached from the invocation.
func Init(fn ModelFn, key adapter.Key, opts ...Option) (m.Collections, error) {
	base := []Option{
		WithRNGs(map[string]adapter.Key{ParamsCollection: key}),
		WithMutable(AllowAll),
	}

	root, err := NewRoot(nil, append(base, opts...)...)
	if err != nil {
		return nil, err
	}

	defer root.close()

	if err := fn(root); err != nil {
		return nil, err
	}

	created := m.CopyCollections(root.inv.output)

	slog.Debug("initialized variables", "collections", len(created), "leaves", m.CountLeaves(created))

	return created, nil
}

// Apply runs fn against an existing variable tree. Collections are
// read-only unless opened with WithMutable; the return value is the set
// of writes the run performed, detached from both the input tree and the
// invocation.
func Apply(fn ModelFn, cols m.Collections, opts ...Option) (m.Collections, error) {
	root, err := NewRoot(cols, opts...)
	if err != nil {
		return nil, err
	}

	defer root.close()

	if err := fn(root); err != nil {
		return nil, err
	}

	return m.CopyCollections(root.inv.output), nil
}
