package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
	m "varscope.dev/pkg/varscope/internal/model"
)

// TreeStore persists variable trees. The on-disk layout is plain nested
// mappings; arrays are mappings with shape/dtype/data keys.
type TreeStore interface {
	Load(ctx context.Context, path string) (m.Collections, error)
	Save(ctx context.Context, path string, cols m.Collections) error
}

type yamlTreeStore struct{}

// NewYAMLTreeStore constructs a TreeStore backed by YAML files.
func NewYAMLTreeStore() TreeStore {
	return &yamlTreeStore{}
}

func (s *yamlTreeStore) Load(ctx context.Context, path string) (m.Collections, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Error("failed to read tree file", "path", path, "error", err)
		return nil, fmt.Errorf("read tree file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		slog.Error("failed to decode tree file", "path", path, "error", err)
		return nil, fmt.Errorf("decode tree file %s: %w", path, err)
	}

	cols := make(m.Collections, len(raw))

	for name, value := range raw {
		tree, ok := decodeNode(value).(m.Tree)
		if !ok {
			return nil, &m.InvalidVariablesStructureError{
				Collection: name,
				Reason:     "collection is not a mapping",
			}
		}

		cols[name] = tree
	}

	slog.Debug("loaded tree", "path", path, "collections", len(cols), "leaves", m.CountLeaves(cols))

	return cols, nil
}

func (s *yamlTreeStore) Save(ctx context.Context, path string, cols m.Collections) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	encoded := make(map[string]any, len(cols))
	for name, tree := range cols {
		encoded[name] = encodeNode(tree)
	}

	data, err := yaml.Marshal(encoded)
	if err != nil {
		slog.Error("failed to encode tree", "path", path, "error", err)
		return fmt.Errorf("encode tree: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		slog.Error("failed to write tree file", "path", path, "error", err)
		return fmt.Errorf("write tree file: %w", err)
	}

	slog.Debug("saved tree", "path", path, "collections", len(cols))

	return nil
}

// decodeNode converts a generic YAML node into tree form: mappings become
// m.Tree, mappings carrying shape+dtype keys become *m.Array, everything
// else stays a leaf scalar.
func decodeNode(value any) any {
	node, ok := value.(map[string]any)
	if !ok {
		return value
	}

	if arr, ok := decodeArray(node); ok {
		return arr
	}

	tree := make(m.Tree, len(node))
	for key, child := range node {
		tree[key] = decodeNode(child)
	}

	return tree
}

func decodeArray(node map[string]any) (*m.Array, bool) {
	rawShape, hasShape := node["shape"]
	rawDType, hasDType := node["dtype"]

	if !hasShape || !hasDType {
		return nil, false
	}

	shapeList, ok := rawShape.([]any)
	if !ok {
		return nil, false
	}

	dtype, ok := rawDType.(string)
	if !ok {
		return nil, false
	}

	shape := make(m.Shape, 0, len(shapeList))

	for _, dim := range shapeList {
		n, ok := toInt(dim)
		if !ok {
			return nil, false
		}

		shape = append(shape, n)
	}

	rawData, hasData := node["data"]
	if !hasData {
		return m.Placeholder(shape, m.DType(dtype)), true
	}

	dataList, ok := rawData.([]any)
	if !ok {
		return nil, false
	}

	data := make([]float64, 0, len(dataList))

	for _, item := range dataList {
		f, ok := toFloat(item)
		if !ok {
			return nil, false
		}

		data = append(data, f)
	}

	arr, err := m.NewArray(shape, m.DType(dtype), data)
	if err != nil {
		return nil, false
	}

	return arr, true
}

func encodeNode(value any) any {
	switch v := value.(type) {
	case m.Tree:
		out := make(map[string]any, len(v))
		for key, child := range v {
			out[key] = encodeNode(child)
		}

		return out

	case *m.Array:
		shape := make([]int, len(v.Shape))
		copy(shape, v.Shape)

		encoded := map[string]any{
			"shape": shape,
			"dtype": string(v.DType),
		}
		if !v.Abstract() {
			encoded["data"] = v.Data
		}

		return encoded

	default:
		return value
	}
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
