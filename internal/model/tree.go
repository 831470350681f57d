package model

import (
	"sort"
	"strings"
)

// Tree is a nested mapping from path segments to subtrees or leaf values.
// Leaves are typically *Array but may be any scalar the caller stores.
type Tree = map[string]any

// Collections maps a collection name ("params", "state", ...) to its
// variable tree.
type Collections = map[string]Tree

// Descend walks a tree along the given path. It returns false if any
// segment is missing or resolves to a leaf.
func Descend(t Tree, path []string) (Tree, bool) {
	node := t
	for _, seg := range path {
		child, ok := node[seg]
		if !ok {
			return nil, false
		}

		sub, ok := child.(Tree)
		if !ok {
			return nil, false
		}

		node = sub
	}

	return node, true
}

// Lookup returns the value stored under path+name in a tree.
func Lookup(t Tree, path []string, name string) (any, bool) {
	node, ok := Descend(t, path)
	if !ok {
		return nil, false
	}

	value, ok := node[name]

	return value, ok
}

// Put stores a value under path+name, creating intermediate nodes as
// needed. An intermediate leaf is overwritten by a subtree.
func Put(t Tree, path []string, name string, value any) {
	node := t

	for _, seg := range path {
		child, ok := node[seg].(Tree)
		if !ok {
			child = Tree{}
			node[seg] = child
		}

		node = child
	}

	node[name] = value
}

// CopyTree returns a deep copy of a tree. Leaf values are shared, the
// mapping structure is not.
func CopyTree(t Tree) Tree {
	out := make(Tree, len(t))

	for key, value := range t {
		if sub, ok := value.(Tree); ok {
			out[key] = CopyTree(sub)
			continue
		}

		out[key] = value
	}

	return out
}

// CopyCollections returns a deep copy of every collection tree.
func CopyCollections(cols Collections) Collections {
	out := make(Collections, len(cols))
	for name, tree := range cols {
		out[name] = CopyTree(tree)
	}

	return out
}

// MergeTree overlays src onto dst in place. Subtrees merge recursively;
// a leaf in src replaces whatever dst holds at that key.
func MergeTree(dst, src Tree) {
	for key, value := range src {
		srcSub, srcIsTree := value.(Tree)
		dstSub, dstIsTree := dst[key].(Tree)

		if srcIsTree && dstIsTree {
			MergeTree(dstSub, srcSub)
			continue
		}

		if srcIsTree {
			dst[key] = CopyTree(srcSub)
			continue
		}

		dst[key] = value
	}
}

// MergeCollections overlays src onto dst in place.
func MergeCollections(dst, src Collections) {
	for name, tree := range src {
		if existing, ok := dst[name]; ok {
			MergeTree(existing, tree)
			continue
		}

		dst[name] = CopyTree(tree)
	}
}

// Row is one flattened leaf of a variable tree.
type Row struct {
	Collection string
	Path       string
	Value      any
}

// Flatten returns every leaf of every collection as sorted rows. Paths use
// "/" separators rooted at the collection.
func Flatten(cols Collections) []Row {
	var rows []Row

	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		rows = append(rows, flattenTree(name, "/", cols[name])...)
	}

	return rows
}

func flattenTree(collection, prefix string, t Tree) []Row {
	var rows []Row

	keys := make([]string, 0, len(t))
	for key := range t {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		if sub, ok := t[key].(Tree); ok {
			rows = append(rows, flattenTree(collection, prefix+key+"/", sub)...)
			continue
		}

		rows = append(rows, Row{Collection: collection, Path: prefix + key, Value: t[key]})
	}

	return rows
}

// CountLeaves returns the number of leaf values across all collections.
func CountLeaves(cols Collections) int {
	count := 0
	for _, tree := range cols {
		count += countTreeLeaves(tree)
	}

	return count
}

func countTreeLeaves(t Tree) int {
	count := 0

	for _, value := range t {
		if sub, ok := value.(Tree); ok {
			count += countTreeLeaves(sub)
			continue
		}

		count++
	}

	return count
}

// ValidateStructure checks an externally supplied collection mapping for
// shape mistakes that would silently corrupt lookups: a nil collection
// tree, or a collection wrapped in an extra layer of itself (passing the
// whole collections dict where one collection was expected).
func ValidateStructure(cols Collections) error {
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		tree := cols[name]
		if tree == nil {
			return &InvalidVariablesStructureError{
				Collection: name,
				Reason:     "collection is not a mapping",
			}
		}

		if len(tree) == 1 {
			if _, ok := tree[name].(Tree); ok {
				return &InvalidVariablesStructureError{
					Collection: name,
					Reason:     "got a dict with an extra " + name + " layer",
				}
			}
		}
	}

	return nil
}

// PathString renders a scope path as "/seg1/seg2". The root path is "/".
func PathString(path []string) string {
	if len(path) == 0 {
		return "/"
	}

	return "/" + strings.Join(path, "/")
}
