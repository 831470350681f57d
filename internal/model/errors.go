package model

import "fmt"

// CollectionNotFoundError reports a collection that is absent from the
// variable tree and not declared mutable, so it can neither be read nor
// created.
type CollectionNotFoundError struct {
	Collection string
	ScopePath  string
}

func (e *CollectionNotFoundError) Error() string {
	return fmt.Sprintf("collection %q not found in scope %q and not mutable", e.Collection, e.ScopePath)
}

// ParamNotFoundError reports a missing parameter in an existing, immutable
// "params" collection.
type ParamNotFoundError struct {
	Param     string
	ScopePath string
}

func (e *ParamNotFoundError) Error() string {
	return fmt.Sprintf("could not find parameter named %q in scope %q", e.Param, e.ScopePath)
}

// VariableNotFoundError reports a named variable lookup that failed because
// the name is absent and no initializer could (or was allowed to) create it.
type VariableNotFoundError struct {
	Collection string
	Name       string
	ScopePath  string
}

func (e *VariableNotFoundError) Error() string {
	return fmt.Sprintf("no variable named %q in collection %q of scope %q", e.Name, e.Collection, e.ScopePath)
}

// ParamShapeMismatchError reports a stored parameter whose shape differs
// from the shape the initializer declares.
type ParamShapeMismatchError struct {
	Param     string
	ScopePath string
	Expected  Shape
	Actual    Shape
}

func (e *ParamShapeMismatchError) Error() string {
	return fmt.Sprintf(
		"initializer for parameter %q in scope %q expected shape %s, but the stored parameter has shape %s",
		e.Param, e.ScopePath, e.Expected, e.Actual,
	)
}

// ModifyImmutableError reports a write attempted against a collection that
// is not mutable in the writing scope.
type ModifyImmutableError struct {
	Collection string
	Name       string
	ScopePath  string
}

func (e *ModifyImmutableError) Error() string {
	return fmt.Sprintf("cannot update variable %q in scope %q: collection %q is immutable", e.Name, e.ScopePath, e.Collection)
}

// InvalidRNGError reports a value that cannot serve as an RNG key, or a
// derivation request for a collection that has no seed.
type InvalidRNGError struct {
	Reason string
}

func (e *InvalidRNGError) Error() string {
	return "invalid rng: " + e.Reason
}

// LazyInitError reports a parameter created during shape-only execution
// whose value depended on placeholder input data rather than on the RNG
// and shapes alone.
type LazyInitError struct {
	Collection string
	Name       string
}

func (e *LazyInitError) Error() string {
	return fmt.Sprintf(
		"lazy init: variable %q in collection %q depends on input data; initializers must be a function of rng and shapes only",
		e.Name, e.Collection,
	)
}

// InvalidVariablesStructureError reports an externally supplied variable
// tree whose top-level shape does not match what the invocation expects.
type InvalidVariablesStructureError struct {
	Collection string
	Reason     string
}

func (e *InvalidVariablesStructureError) Error() string {
	return fmt.Sprintf("invalid variable tree for collection %q: %s", e.Collection, e.Reason)
}
