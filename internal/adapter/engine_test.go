package adapter

import (
	"testing"

	"github.com/stretchr/testify/require"
	m "varscope.dev/pkg/varscope/internal/model"
)

func TestMatMulConcrete(t *testing.T) {
	engine := NewLocalArrayEngine()

	a, err := m.NewArray(m.Shape{2, 2}, m.Float32, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	b, err := m.NewArray(m.Shape{2, 2}, m.Float32, []float64{5, 6, 7, 8})
	require.NoError(t, err)

	out, err := engine.MatMul(a, b)
	require.NoError(t, err)
	require.Equal(t, []float64{19, 22, 43, 50}, out.Data)
	require.False(t, out.Abstract())
}

func TestMatMulShapeMismatch(t *testing.T) {
	engine := NewLocalArrayEngine()

	a := m.Ones(m.Shape{2, 3}, m.Float32)
	b := m.Ones(m.Shape{2, 3}, m.Float32)

	_, err := engine.MatMul(a, b)
	require.Error(t, err)
}

func TestMatMulAbstractSkipsCompute(t *testing.T) {
	engine := NewLocalArrayEngine()

	// A shape that would exhaust memory if the multiply actually ran.
	x := m.Placeholder(m.Shape{1 << 30, 128}, m.Float32)
	k := m.Ones(m.Shape{128, 128}, m.Float32)

	out, err := engine.MatMul(x, k)
	require.NoError(t, err)
	require.True(t, out.Abstract())
	require.True(t, out.Shape.Equal(m.Shape{1 << 30, 128}))
	require.Nil(t, out.Data)
}

func TestAddAndMul(t *testing.T) {
	engine := NewLocalArrayEngine()

	a := m.Ones(m.Shape{3}, m.Float32)
	b := m.Full(m.Shape{3}, m.Float32, 2)

	sum, err := engine.Add(a, b)
	require.NoError(t, err)
	require.Equal(t, []float64{3, 3, 3}, sum.Data)

	prod, err := engine.Mul(a, b)
	require.NoError(t, err)
	require.Equal(t, []float64{2, 2, 2}, prod.Data)

	_, err = engine.Add(a, m.Ones(m.Shape{4}, m.Float32))
	require.Error(t, err)
}

func TestMulPropagatesAbstractness(t *testing.T) {
	engine := NewLocalArrayEngine()

	out, err := engine.Mul(m.Placeholder(m.Shape{3}, m.Float32), m.Ones(m.Shape{3}, m.Float32))
	require.NoError(t, err)
	require.True(t, out.Abstract())
}

func TestScale(t *testing.T) {
	engine := NewLocalArrayEngine()

	out, err := engine.Scale(m.Full(m.Shape{2}, m.Float32, 3), 2)
	require.NoError(t, err)
	require.Equal(t, []float64{6, 6}, out.Data)

	abstract, err := engine.Scale(m.Placeholder(m.Shape{2}, m.Float32), 2)
	require.NoError(t, err)
	require.True(t, abstract.Abstract())
}

func TestExecuteRunsEagerly(t *testing.T) {
	engine := NewLocalArrayEngine()

	ran := false
	require.NoError(t, engine.Execute(func() error {
		ran = true
		return nil
	}))
	require.True(t, ran)
}
