package adapter

import (
	"fmt"
	"log/slog"

	m "varscope.dev/pkg/varscope/internal/model"
)

// ArrayEngine is the numeric collaborator of the scope runtime. It can run
// a model function eagerly or in shape-only mode, and provides the handful
// of array operations model functions compose. Operations on abstract
// (shape-only) operands perform no compute: they derive the result shape
// and return an abstract array, so abstractness propagates through
// everything computed from a placeholder input.
type ArrayEngine interface {
	Execute(fn func() error) error
	AbstractExecute(fn func() error) error
	MatMul(a, b *m.Array) (*m.Array, error)
	Add(a, b *m.Array) (*m.Array, error)
	Mul(a, b *m.Array) (*m.Array, error)
	Scale(a *m.Array, factor float64) (*m.Array, error)
	Equal(a, b *m.Array) bool
}

type localArrayEngine struct{}

// NewLocalArrayEngine constructs the in-process ArrayEngine.
func NewLocalArrayEngine() ArrayEngine {
	return &localArrayEngine{}
}

// Execute runs fn eagerly. The local engine has no tracing machinery, so
// this is a plain synchronous call.
func (e *localArrayEngine) Execute(fn func() error) error {
	return fn()
}

// AbstractExecute runs fn in shape-only mode. The mode is carried by the
// arrays themselves: callers pass abstract inputs and every op on them
// stays abstract, so the same code path serves both modes.
func (e *localArrayEngine) AbstractExecute(fn func() error) error {
	return fn()
}

func (e *localArrayEngine) MatMul(a, b *m.Array) (*m.Array, error) {
	if len(a.Shape) != 2 || len(b.Shape) != 2 {
		return nil, fmt.Errorf("matmul requires 2-d operands, got %s and %s", a.Shape, b.Shape)
	}

	if a.Shape[1] != b.Shape[0] {
		return nil, fmt.Errorf("matmul shape mismatch: %s x %s", a.Shape, b.Shape)
	}

	rows, inner, cols := a.Shape[0], a.Shape[1], b.Shape[1]
	outShape := m.Shape{rows, cols}

	if a.Abstract() || b.Abstract() {
		slog.Debug("matmul in shape-only mode", "lhs", a.Shape, "rhs", b.Shape)
		return m.Placeholder(outShape, a.DType), nil
	}

	out := m.Zeros(outShape, a.DType)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			sum := 0.0
			for k := 0; k < inner; k++ {
				sum += a.Data[i*inner+k] * b.Data[k*cols+j]
			}

			out.Data[i*cols+j] = sum
		}
	}

	return out, nil
}

func (e *localArrayEngine) Add(a, b *m.Array) (*m.Array, error) {
	return e.elementwise("add", a, b, func(x, y float64) float64 { return x + y })
}

func (e *localArrayEngine) Mul(a, b *m.Array) (*m.Array, error) {
	return e.elementwise("mul", a, b, func(x, y float64) float64 { return x * y })
}

func (e *localArrayEngine) elementwise(op string, a, b *m.Array, fn func(x, y float64) float64) (*m.Array, error) {
	if !a.Shape.Equal(b.Shape) {
		return nil, fmt.Errorf("%s shape mismatch: %s vs %s", op, a.Shape, b.Shape)
	}

	if a.Abstract() || b.Abstract() {
		return m.Placeholder(a.Shape, a.DType), nil
	}

	out := m.Zeros(a.Shape, a.DType)
	for i := range out.Data {
		out.Data[i] = fn(a.Data[i], b.Data[i])
	}

	return out, nil
}

func (e *localArrayEngine) Scale(a *m.Array, factor float64) (*m.Array, error) {
	if a.Abstract() {
		return m.Placeholder(a.Shape, a.DType), nil
	}

	out := m.Zeros(a.Shape, a.DType)
	for i, v := range a.Data {
		out.Data[i] = v * factor
	}

	return out, nil
}

// Equal is the comparison primitive used by tests; abstract arrays compare
// by metadata only.
func (e *localArrayEngine) Equal(a, b *m.Array) bool {
	return a.Equal(b)
}
