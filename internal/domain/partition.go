package domain

import (
	"sort"

	m "varscope.dev/pkg/varscope/internal/model"
)

// GroupCollections splits a collection mapping into one group per filter,
// in filter order. Each collection name is claimed by the first filter that
// admits it and is removed from consideration for the rest, so a trailing
// AllowAll safely means "everything else". Names no filter admits are
// dropped.
func GroupCollections(cols m.Collections, filters []Filter) []m.Collections {
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}

	sort.Strings(names)

	claimed := make(map[string]bool, len(cols))
	groups := make([]m.Collections, 0, len(filters))

	for _, f := range filters {
		group := m.Collections{}

		for _, name := range names {
			if claimed[name] || !InFilter(f, name) {
				continue
			}

			claimed[name] = true
			group[name] = cols[name]
		}

		groups = append(groups, group)
	}

	return groups
}
