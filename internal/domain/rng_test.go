package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
	"varscope.dev/pkg/varscope/internal/adapter"
)

func TestLazyRNGRealizeIsDeterministic(t *testing.T) {
	base := adapter.NewKey(42)

	a := CreateRNG(base).Derive("dense").Derive("kernel")
	b := CreateRNG(base).Derive("dense").Derive("kernel")

	require.Equal(t, a.Realize(0), b.Realize(0))
	require.NotEqual(t, a.Realize(0), a.Realize(1))
}

func TestLazyRNGDeriveDoesNotMutateParent(t *testing.T) {
	base := adapter.NewKey(1)
	parent := CreateRNG(base, "layer")

	_ = parent.Derive("a")
	_ = parent.Derive("b")

	require.Equal(t, CreateRNG(base, "layer").Realize(0), parent.Realize(0))
}

func TestLazyRNGSeparatorDisambiguatesSegments(t *testing.T) {
	base := adapter.NewKey(7)

	joined := CreateRNG(base).Derive("ab").Derive("c")
	split := CreateRNG(base).Derive("a").Derive("bc")

	require.NotEqual(t, joined.Realize(0), split.Realize(0))
}

func TestLazyRNGLegacyFoldConcatenates(t *testing.T) {
	base := adapter.NewKey(7)

	joined := createLegacyRNG(base, "ab", "c")
	split := createLegacyRNG(base, "a", "bc")

	require.Equal(t, joined.Realize(0), split.Realize(0))
	require.NotEqual(t, joined.Realize(0), CreateRNG(base, "ab", "c").Realize(0))
}

func TestLazyRNGDifferentPathsDecorrelate(t *testing.T) {
	base := adapter.NewKey(3)

	require.NotEqual(
		t,
		CreateRNG(base).Derive("a").Realize(0),
		CreateRNG(base).Derive("b").Realize(0),
	)
}

func TestIsValidRNG(t *testing.T) {
	require.True(t, IsValidRNG(adapter.NewKey(0)))
	require.True(t, IsValidRNG(CreateRNG(adapter.NewKey(0))))
	require.True(t, IsValidRNG(make([]byte, adapter.KeySize)))

	require.False(t, IsValidRNG((*LazyRNG)(nil)))
	require.False(t, IsValidRNG(make([]byte, 16)))
	require.False(t, IsValidRNG([]adapter.Key{adapter.NewKey(0), adapter.NewKey(1)}))
	require.False(t, IsValidRNG("seed"))
	require.False(t, IsValidRNG(nil))
}
