package controller

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	m "varscope.dev/pkg/varscope/internal/model"
)

// SimpleUI implements UI using cobra Command's output stream.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
	// SimpleUI doesn't block - it just prints and continues
}

// DisplayTree prints the flattened variable tree or error.
func (s *SimpleUI) DisplayTree(ctx context.Context, cols m.Collections, err error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err != nil {
		s.printf("tree error: %v\n", err)
		return err
	}

	s.printf("\n%s", renderTreeTable(m.Flatten(cols)))

	return nil
}

func renderTreeTable(rows []m.Row) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Collection", "Path", "Value"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	for _, row := range rows {
		table.Append([]string{row.Collection, row.Path, formatValue(row.Value)})
	}

	table.SetFooter([]string{
		"",
		"Total",
		fmt.Sprintf("%d", len(rows)),
	})

	table.Render()

	return tableBuffer.String()
}

func formatValue(value any) string {
	if arr, ok := value.(*m.Array); ok {
		return arr.String()
	}

	return fmt.Sprintf("%v", value)
}

// DisplayPartition prints one table row per partition group.
func (s *SimpleUI) DisplayPartition(ctx context.Context, groups []PartitionGroup) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Filter", "Collections", "Leaves"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	totalLeaves := 0

	for _, group := range groups {
		names := make([]string, 0, len(group.Collections))
		for name := range group.Collections {
			names = append(names, name)
		}

		sort.Strings(names)

		leaves := m.CountLeaves(group.Collections)
		totalLeaves += leaves

		table.Append([]string{group.Expr, joinOrDash(names), fmt.Sprintf("%d", leaves)})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Groups %d", len(groups)),
		"",
		fmt.Sprintf("%d", totalLeaves),
	})

	table.Render()

	s.printf("\n%s", tableBuffer.String())

	return nil
}

func joinOrDash(names []string) string {
	if len(names) == 0 {
		return "-"
	}

	out := names[0]
	for _, name := range names[1:] {
		out += ", " + name
	}

	return out
}

// DisplayMergeInfo shows the result of merging variable trees.
func (s *SimpleUI) DisplayMergeInfo(ctx context.Context, inputs int, leaves int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Merged %d tree(s) into %d variable(s)\n", inputs, leaves)
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
