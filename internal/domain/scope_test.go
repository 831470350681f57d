package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
	"varscope.dev/pkg/varscope/internal/adapter"
	m "varscope.dev/pkg/varscope/internal/model"
)

func newTestRoot(t *testing.T, cols m.Collections, opts ...Option) *Scope {
	t.Helper()

	root, err := NewRoot(cols, opts...)
	require.NoError(t, err)

	return root
}

func paramsSeed() Option {
	return WithRNGs(map[string]adapter.Key{ParamsCollection: adapter.NewKey(0)})
}

func TestNewRootRejectsExtraLayer(t *testing.T) {
	_, err := NewRoot(m.Collections{
		"params": m.Tree{"params": m.Tree{"kernel": 1}},
	})

	var structErr *m.InvalidVariablesStructureError
	require.ErrorAs(t, err, &structErr)
	require.Equal(t, "params", structErr.Collection)
}

func TestNewRootCopiesInput(t *testing.T) {
	cols := m.Collections{"params": m.Tree{"kernel": m.Ones(m.Shape{2}, m.Float32)}}
	root := newTestRoot(t, cols)

	cols["params"]["kernel"] = nil
	_, ok := root.inv.lookup(ParamsCollection, nil, "kernel")
	require.True(t, ok)

	value, _ := root.inv.lookup(ParamsCollection, nil, "kernel")
	require.NotNil(t, value)
}

func TestParamCreatesWhenMutable(t *testing.T) {
	root := newTestRoot(t, nil, paramsSeed(), WithMutable(AllowAll))

	arr, err := root.Param("kernel", OnesInit(m.Float32), m.Shape{4})
	require.NoError(t, err)
	require.True(t, arr.Shape.Equal(m.Shape{4}))
	require.Equal(t, []float64{1, 1, 1, 1}, arr.Data)

	stored, ok := root.inv.lookup(ParamsCollection, nil, "kernel")
	require.True(t, ok)
	require.Same(t, arr, stored)
}

func TestParamReturnsStoredValue(t *testing.T) {
	kernel := m.Full(m.Shape{4}, m.Float32, 3)
	root := newTestRoot(t, m.Collections{"params": m.Tree{"kernel": kernel}})

	arr, err := root.Param("kernel", OnesInit(m.Float32), m.Shape{4})
	require.NoError(t, err)
	require.Equal(t, kernel.Data, arr.Data)
}

func TestParamShapeMismatch(t *testing.T) {
	root := newTestRoot(t, m.Collections{
		"params": m.Tree{"kernel": m.Ones(m.Shape{4}, m.Float32)},
	})

	_, err := root.Param("kernel", OnesInit(m.Float32), m.Shape{2})

	var shapeErr *m.ParamShapeMismatchError
	require.ErrorAs(t, err, &shapeErr)
	require.Equal(t, "kernel", shapeErr.Param)
	require.Equal(t, "/", shapeErr.ScopePath)
	require.True(t, shapeErr.Expected.Equal(m.Shape{2}))
	require.True(t, shapeErr.Actual.Equal(m.Shape{4}))
}

func TestParamMissingInImmutableCollection(t *testing.T) {
	root := newTestRoot(t, m.Collections{"params": m.Tree{}}, paramsSeed())

	_, err := root.Param("kernel", OnesInit(m.Float32), m.Shape{4})

	var notFound *m.ParamNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "kernel", notFound.Param)
}

func TestParamAbsentImmutableCollection(t *testing.T) {
	root := newTestRoot(t, nil, paramsSeed())

	_, err := root.Param("kernel", OnesInit(m.Float32), m.Shape{4})

	var colErr *m.CollectionNotFoundError
	require.ErrorAs(t, err, &colErr)
	require.Equal(t, ParamsCollection, colErr.Collection)
}

func TestParamHiddenCollection(t *testing.T) {
	root := newTestRoot(t,
		m.Collections{"params": m.Tree{"kernel": m.Ones(m.Shape{4}, m.Float32)}},
		WithVisible(Names("state")),
	)

	_, err := root.Param("kernel", OnesInit(m.Float32), m.Shape{4})

	var colErr *m.CollectionNotFoundError
	require.ErrorAs(t, err, &colErr)
}

func TestVariableCreateReadWrite(t *testing.T) {
	root := newTestRoot(t, nil, WithMutable(Names("state")))

	v, err := root.Variable("state", "count", func() (any, error) { return 0, nil })
	require.NoError(t, err)
	require.True(t, v.IsMutable())
	require.Equal(t, 0, v.Value())

	require.NoError(t, v.Set(5))
	require.Equal(t, 5, v.Value())
}

func TestVariableMissingWithoutInitializer(t *testing.T) {
	root := newTestRoot(t, m.Collections{"state": m.Tree{}}, WithMutable(AllowAll))

	_, err := root.Variable("state", "count", nil)

	var notFound *m.VariableNotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "count", notFound.Name)
}

func TestVariableImmutableCollectionWithInitializer(t *testing.T) {
	root := newTestRoot(t, m.Collections{"state": m.Tree{}})

	_, err := root.Variable("state", "count", func() (any, error) { return 0, nil })

	var notFound *m.VariableNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestVariableAbsentCollection(t *testing.T) {
	root := newTestRoot(t, nil)

	_, err := root.Variable("state", "count", func() (any, error) { return 0, nil })

	var colErr *m.CollectionNotFoundError
	require.ErrorAs(t, err, &colErr)
	require.Equal(t, "state", colErr.Collection)
}

func TestVariableHandleImmutableSet(t *testing.T) {
	root := newTestRoot(t, m.Collections{"state": m.Tree{"count": 1}})

	v, err := root.Variable("state", "count", nil)
	require.NoError(t, err)
	require.False(t, v.IsMutable())

	var immErr *m.ModifyImmutableError
	require.ErrorAs(t, v.Set(2), &immErr)
	require.Equal(t, 1, v.Value())
}

func TestPutVariableImmutable(t *testing.T) {
	root := newTestRoot(t, m.Collections{"state": m.Tree{}})

	var immErr *m.ModifyImmutableError
	require.ErrorAs(t, root.PutVariable("state", "count", 1), &immErr)
	require.Equal(t, "state", immErr.Collection)
}

func TestChildWritesVisibleFromRoot(t *testing.T) {
	root := newTestRoot(t, m.Collections{"state": m.Tree{}}, WithMutable(AllowAll))

	child, err := root.Push("block")
	require.NoError(t, err)
	require.Equal(t, "/block", child.Path())

	require.NoError(t, child.PutVariable("state", "x", 7))

	vars := root.Variables()
	require.Equal(t, 7, vars["state"]["block"].(m.Tree)["x"])

	childVars := child.Variables()
	require.Equal(t, 7, childVars["state"]["x"])
}

func TestVariablesHidesInvisibleCollections(t *testing.T) {
	root := newTestRoot(t, m.Collections{
		"params": m.Tree{"kernel": 1},
		"state":  m.Tree{"count": 2},
	}, WithVisible(Names("params")))

	vars := root.Variables()
	require.Contains(t, vars, "params")
	require.NotContains(t, vars, "state")
}

func TestVariablesMergesInputAndOutput(t *testing.T) {
	root := newTestRoot(t, m.Collections{"state": m.Tree{"a": 1}}, WithMutable(AllowAll))
	require.NoError(t, root.PutVariable("state", "b", 2))

	state := root.Variables()["state"]
	require.Equal(t, 1, state["a"])
	require.Equal(t, 2, state["b"])
}

func TestVariablesViewStaysLive(t *testing.T) {
	root := newTestRoot(t, m.Collections{"state": m.Tree{"a": 1}}, WithMutable(AllowAll))

	vars := root.Variables()
	require.Equal(t, 1, vars["state"]["a"])

	require.NoError(t, root.PutVariable("state", "b", 2))
	require.Equal(t, 2, vars["state"]["b"])

	child, err := root.Push("block")
	require.NoError(t, err)
	require.NoError(t, child.PutVariable("state", "x", 3))
	require.Equal(t, 3, vars["state"]["block"].(m.Tree)["x"])
}

func TestPushRejectsDuplicateName(t *testing.T) {
	root := newTestRoot(t, nil)

	_, err := root.Push("block")
	require.NoError(t, err)

	_, err = root.Push("block")
	require.Error(t, err)
}

func TestPushGeneratesAnonymousNames(t *testing.T) {
	root := newTestRoot(t, nil)

	a, err := root.Push("")
	require.NoError(t, err)

	b, err := root.Push("")
	require.NoError(t, err)

	require.NotEqual(t, a.Path(), b.Path())
}

func TestChildRunsAgainstSubScope(t *testing.T) {
	root := newTestRoot(t, nil, WithMutable(AllowAll))

	err := root.Child("block", func(s *Scope) error {
		return s.PutVariable("state", "x", 1)
	})
	require.NoError(t, err)
	require.Equal(t, 1, root.Variables()["state"]["block"].(m.Tree)["x"])
}

func TestMakeRNGRequiresSeed(t *testing.T) {
	root := newTestRoot(t, nil)
	require.False(t, root.HasRNG("dropout"))

	_, err := root.MakeRNG("dropout")

	var rngErr *m.InvalidRNGError
	require.ErrorAs(t, err, &rngErr)
}

func TestWithRNGSourcesAcceptsMixedInputs(t *testing.T) {
	key := adapter.NewKey(5)
	raw := make([]byte, adapter.KeySize)
	copy(raw, key[:])

	fromKey := newTestRoot(t, nil, WithRNGs(map[string]adapter.Key{ParamsCollection: key}))
	fromRaw := newTestRoot(t, nil, WithRNGSources(map[string]any{ParamsCollection: raw}))
	fromLazy := newTestRoot(t, nil, WithRNGSources(map[string]any{ParamsCollection: CreateRNG(key)}))

	want, err := fromKey.MakeRNG(ParamsCollection)
	require.NoError(t, err)

	got, err := fromRaw.MakeRNG(ParamsCollection)
	require.NoError(t, err)
	require.Equal(t, want, got)

	got, err = fromLazy.MakeRNG(ParamsCollection)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestWithRNGSourcesRejectsSplitBatches(t *testing.T) {
	batch := adapter.Split(adapter.NewKey(0), 2)

	_, err := NewRoot(nil, WithRNGSources(map[string]any{"dropout": batch}))

	var rngErr *m.InvalidRNGError
	require.ErrorAs(t, err, &rngErr)
}

func TestMakeRNGCounterDecorrelates(t *testing.T) {
	root := newTestRoot(t, nil, paramsSeed())

	first, err := root.MakeRNG(ParamsCollection)
	require.NoError(t, err)

	second, err := root.MakeRNG(ParamsCollection)
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestMakeRNGDependsOnPath(t *testing.T) {
	rootA := newTestRoot(t, nil, paramsSeed())
	rootB := newTestRoot(t, nil, paramsSeed())

	childA, err := rootA.Push("a")
	require.NoError(t, err)

	childB, err := rootB.Push("b")
	require.NoError(t, err)

	keyA, err := childA.MakeRNG(ParamsCollection)
	require.NoError(t, err)

	keyB, err := childB.MakeRNG(ParamsCollection)
	require.NoError(t, err)

	require.NotEqual(t, keyA, keyB)
}

func TestRewoundReproducesDerivations(t *testing.T) {
	root := newTestRoot(t, nil, paramsSeed())

	first, err := root.MakeRNG(ParamsCollection)
	require.NoError(t, err)

	_, err = root.MakeRNG(ParamsCollection)
	require.NoError(t, err)

	rewound := root.Rewound()
	replayed, err := rewound.MakeRNG(ParamsCollection)
	require.NoError(t, err)

	require.Equal(t, first, replayed)
}

func TestRewoundSharesStorage(t *testing.T) {
	root := newTestRoot(t, nil, WithMutable(AllowAll))
	require.NoError(t, root.PutVariable("state", "x", 1))

	rewound := root.Rewound()
	require.Equal(t, 1, rewound.Variables()["state"]["x"])
}

func TestClosedScopePanics(t *testing.T) {
	var leaked *Scope

	_, err := Init(func(s *Scope) error {
		leaked = s
		return nil
	}, adapter.NewKey(0))
	require.NoError(t, err)

	require.Panics(t, func() {
		_, _ = leaked.Param("kernel", OnesInit(m.Float32), m.Shape{4})
	})
	require.Panics(t, func() {
		_, _ = leaked.Push("block")
	})
}
