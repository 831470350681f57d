package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
	m "varscope.dev/pkg/varscope/internal/model"
)

func TestGroupCollectionsFirstFilterClaims(t *testing.T) {
	cols := m.Collections{
		"params": m.Tree{"w": 1},
		"state":  m.Tree{"s": 2},
		"cache":  m.Tree{"c": 3},
	}

	groups := GroupCollections(cols, []Filter{Names("params"), AllowAll})
	require.Len(t, groups, 2)
	require.Equal(t, m.Collections{"params": cols["params"]}, groups[0])
	require.Equal(t, m.Collections{"state": cols["state"], "cache": cols["cache"]}, groups[1])
}

func TestGroupCollectionsClaimsOnlyOnce(t *testing.T) {
	cols := m.Collections{"params": m.Tree{"w": 1}}

	groups := GroupCollections(cols, []Filter{AllowAll, AllowAll})
	require.Len(t, groups[0], 1)
	require.Empty(t, groups[1])
}

func TestGroupCollectionsDropsUnmatched(t *testing.T) {
	cols := m.Collections{
		"params": m.Tree{"w": 1},
		"state":  m.Tree{"s": 2},
	}

	groups := GroupCollections(cols, []Filter{Names("params")})
	require.Len(t, groups, 1)
	require.NotContains(t, groups[0], "state")
}

func TestGroupCollectionsSharesTrees(t *testing.T) {
	tree := m.Tree{"w": 1}
	cols := m.Collections{"params": tree}

	groups := GroupCollections(cols, []Filter{AllowAll})

	tree["w"] = 2
	require.Equal(t, 2, groups[0]["params"]["w"])
}
