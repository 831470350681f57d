// Package domain provides the core state-scoping logic: the collection
// filter algebra, the partitioner, deterministic lazy RNG derivation, the
// Scope type and the invocation drivers built on it.
package domain

import (
	pkg "varscope.dev/pkg/varscope/pkg"
)

// Filter decides which collection names are included in a policy (visible
// for reads, open for writes, claimed by a partition group). It is a closed
// variant: AllowAll, DenyAll, an explicit name set, or the complement of
// another filter.
type Filter interface {
	filter()
}

type allowAll struct{}

type denyAll struct{}

type nameSet struct {
	Names pkg.Set[string]
}

type denyList struct {
	Inner Filter
}

func (allowAll) filter() {}
func (denyAll) filter()  {}
func (nameSet) filter()  {}
func (denyList) filter() {}

// AllowAll admits every collection name.
var AllowAll Filter = allowAll{}

// DenyAll admits no collection name.
var DenyAll Filter = denyAll{}

// Names builds a filter admitting exactly the given collection names.
func Names(names ...string) Filter {
	return nameSet{Names: pkg.NewSet(names...)}
}

// DenyList wraps a filter with its complement: everything except what the
// inner filter admits. A double complement collapses to the inner filter.
func DenyList(inner Filter) Filter {
	if dl, ok := inner.(denyList); ok {
		return dl.Inner
	}

	return denyList{Inner: inner}
}

// InFilter tests whether a collection name is admitted by a filter.
func InFilter(f Filter, name string) bool {
	switch v := f.(type) {
	case allowAll:
		return true
	case denyAll:
		return false
	case nameSet:
		return v.Names.Contains(name)
	case denyList:
		return !InFilter(v.Inner, name)
	default:
		return false
	}
}

// toSet converts a non-complement filter to an explicit set. DenyAll is the
// empty set; AllowAll and DenyList have no set form and must be peeled off
// by the algebra before this is reached.
func toSet(f Filter) pkg.Set[string] {
	switch v := f.(type) {
	case denyAll:
		return pkg.NewSet[string]()
	case nameSet:
		return v.Names
	default:
		return pkg.NewSet[string]()
	}
}

// Union returns the filter admitting names admitted by either argument.
func Union(a, b Filter) Filter {
	if _, ok := a.(allowAll); ok {
		return AllowAll
	}

	if _, ok := b.(allowAll); ok {
		return AllowAll
	}

	dlA, aIsDL := a.(denyList)
	dlB, bIsDL := b.(denyList)

	if aIsDL && bIsDL {
		return DenyList(Intersect(dlA.Inner, dlB.Inner))
	}

	if bIsDL {
		a, b = b, a
		dlA = dlB
		aIsDL = true
	}

	if aIsDL {
		return DenyList(Subtract(dlA.Inner, b))
	}

	return nameSet{Names: toSet(a).Union(toSet(b))}
}

// Intersect returns the filter admitting names admitted by both arguments.
func Intersect(a, b Filter) Filter {
	if _, ok := a.(allowAll); ok {
		return b
	}

	if _, ok := b.(allowAll); ok {
		return a
	}

	dlA, aIsDL := a.(denyList)
	dlB, bIsDL := b.(denyList)

	if aIsDL && bIsDL {
		return DenyList(Union(dlA.Inner, dlB.Inner))
	}

	if bIsDL {
		a, b = b, a
		dlA = dlB
		aIsDL = true
	}

	if aIsDL {
		return Subtract(b, dlA.Inner)
	}

	return nameSet{Names: toSet(a).Intersect(toSet(b))}
}

// Subtract returns the filter admitting names admitted by a but not b.
func Subtract(a, b Filter) Filter {
	if _, ok := b.(allowAll); ok {
		return DenyAll
	}

	if _, ok := a.(allowAll); ok {
		return DenyList(b)
	}

	dlA, aIsDL := a.(denyList)
	dlB, bIsDL := b.(denyList)

	if aIsDL && bIsDL {
		return Subtract(dlB.Inner, dlA.Inner)
	}

	if aIsDL {
		return DenyList(Union(dlA.Inner, b))
	}

	if bIsDL {
		// a − ¬T keeps exactly the names of a that are in T.
		return Intersect(a, dlB.Inner)
	}

	return nameSet{Names: toSet(a).Subtract(toSet(b))}
}
