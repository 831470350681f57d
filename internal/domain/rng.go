package domain

import (
	"strings"

	"varscope.dev/pkg/varscope/internal/adapter"
)

// rngSeparator joins path segments before folding so that segment
// boundaries are unambiguous: ("ab","c") and ("a","bc") must never
// realize alike.
const rngSeparator = "\x1f"

// LazyRNG is a not-yet-materialized random key: a base key plus an ordered
// path of fold tokens. Deriving appends tokens without any hashing; the
// actual key materializes only in Realize, so passing LazyRNGs down a scope
// tree is free.
type LazyRNG struct {
	base       adapter.Key
	path       []string
	legacyFold bool
}

// CreateRNG wraps a base key with an initial token path.
func CreateRNG(base adapter.Key, tokens ...string) *LazyRNG {
	path := make([]string, len(tokens))
	copy(path, tokens)

	return &LazyRNG{base: base, path: path}
}

// createLegacyRNG is CreateRNG without separator folding, kept for streams
// derived before the separator mode existed.
func createLegacyRNG(base adapter.Key, tokens ...string) *LazyRNG {
	rng := CreateRNG(base, tokens...)
	rng.legacyFold = true

	return rng
}

// Derive appends a token to the path, returning a new LazyRNG sharing the
// same base key. Nothing is materialized.
func (r *LazyRNG) Derive(token string) *LazyRNG {
	path := make([]string, 0, len(r.path)+1)
	path = append(path, r.path...)
	path = append(path, token)

	return &LazyRNG{base: r.base, path: path, legacyFold: r.legacyFold}
}

// Realize folds the joined token path into the base key and finally folds
// in the ordinal call counter, producing a concrete key. Default mode joins
// with the separator; legacy mode concatenates tokens directly, so paths
// like ("ab","c") and ("a","bc") collide there.
func (r *LazyRNG) Realize(count uint64) adapter.Key {
	key := r.base

	if len(r.path) > 0 {
		sep := rngSeparator
		if r.legacyFold {
			sep = ""
		}

		key = adapter.Fold(key, strings.Join(r.path, sep))
	}

	return adapter.FoldCount(key, count)
}

// IsValidRNG reports whether a value can serve as an RNG input: a raw
// fixed-width key, a typed key, or a LazyRNG. Anything else is rejected,
// notably a batch of already-split keys, since splitting destroys the
// single-key invariant the fold protocol depends on.
func IsValidRNG(value any) bool {
	switch v := value.(type) {
	case adapter.Key:
		return true
	case *LazyRNG:
		return v != nil
	case []byte:
		return len(v) == adapter.KeySize
	default:
		return false
	}
}
