// Package controller provides output adapters for displaying variable
// trees and partition results.
package controller

import (
	"context"

	m "varscope.dev/pkg/varscope/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeView StartMode = iota
	ModePartition
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
}

// WithViewMode sets the UI to tree viewing mode.
func WithViewMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeView
	}
}

// WithPartitionMode sets the UI to partition display mode.
func WithPartitionMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModePartition
	}
}

// PartitionGroup is one displayed partition result: the filter expression
// that claimed the group and the collections it claimed.
type PartitionGroup struct {
	Expr        string
	Collections m.Collections
}

// UI defines the interface for displaying variable trees.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish (user closes it)
	DisplayTree(ctx context.Context, cols m.Collections, err error) error
	DisplayPartition(ctx context.Context, groups []PartitionGroup) error
	DisplayMergeInfo(ctx context.Context, inputs int, leaves int)
}
