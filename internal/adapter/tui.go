package adapter

import (
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
	m "varscope.dev/pkg/varscope/internal/model"
)

const (
	// ANSI color codes for abstract values (dark gray, faint).
	grayColor  = "\033[2;90m" // Faint + dark gray
	resetColor = "\033[0m"    // Reset
)

// TUI implements interactive variable-tree display using Bubble Tea.
type TUI struct {
	output io.Writer
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// DisplayTree shows a flattened variable tree, paginated when it does not
// fit the terminal.
func (p *TUI) DisplayTree(cols m.Collections) error {
	model := newTreeModel(m.Flatten(cols))

	// Get initial terminal size
	if f, ok := p.output.(*os.File); ok {
		width, height, err := term.GetSize(int(f.Fd()))
		if err == nil {
			model.height = height
			model.width = width
		}
	}

	// If the tree is small, just print and exit
	if !model.needsPagination() {
		_, err := fmt.Fprint(p.output, model.View())
		return err
	}

	program := tea.NewProgram(model, tea.WithOutput(p.output), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

// treeModel represents the Bubble Tea model for browsing tree leaves.
type treeModel struct {
	rows     []m.Row
	height   int
	width    int
	offset   int // Current scroll offset
	quitting bool
}

func newTreeModel(rows []m.Row) treeModel {
	return treeModel{
		rows:     rows,
		height:   0, // Will be set on first WindowSizeMsg
		width:    0,
		offset:   0,
		quitting: false,
	}
}

func (tm treeModel) Init() tea.Cmd {
	return nil
}

func (tm treeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		tm.height = msg.Height
		tm.width = msg.Width

		return tm, nil

	case tea.KeyMsg:
		return tm.handleKeyPress(msg)
	}

	return tm, nil
}

//nolint:cyclop,exhaustive // Key handling requires multiple cases for UI navigation
func (tm treeModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		tm.quitting = true
		return tm, tea.Quit
	default:
		// Handle other key types in the string switch below
	}

	switch msg.String() {
	case "q":
		tm.quitting = true
		return tm, tea.Quit

	case "down", "j":
		tm.offset++

		maxOffset := tm.maxOffset()
		if tm.offset > maxOffset {
			tm.offset = maxOffset
		}

		return tm, nil

	case "up", "k":
		tm.offset--
		if tm.offset < 0 {
			tm.offset = 0
		}

		return tm, nil

	case "g", "home":
		tm.offset = 0

		return tm, nil

	case "G", "end":
		tm.offset = tm.maxOffset()

		return tm, nil

	case "d", "pgdown":
		tm.offset += tm.itemsPerPage()

		maxOffset := tm.maxOffset()
		if tm.offset > maxOffset {
			tm.offset = maxOffset
		}

		return tm, nil

	case "u", "pgup":
		tm.offset -= tm.itemsPerPage()
		if tm.offset < 0 {
			tm.offset = 0
		}

		return tm, nil
	}

	return tm, nil
}

// itemsPerPage calculates how many rows fit on screen.
func (tm treeModel) itemsPerPage() int {
	if tm.height == 0 {
		return 10 // Default
	}
	// Reserve space for:
	// - Header: 4 lines (box + empty)
	// - Title: 2 lines (summary + empty)
	// - Total: 2 lines (empty + total)
	// - Footer: 3 lines (empty + page + help)
	// - Top margin: 1 line
	// Total: 12 lines
	reserved := 12

	available := tm.height - reserved
	if available < 1 {
		return 1
	}

	return available
}

// maxOffset returns the maximum scroll offset.
func (tm treeModel) maxOffset() int {
	rowCount := len(tm.rows)

	perPage := tm.itemsPerPage()
	if perPage <= 0 {
		return 0
	}

	maxOff := rowCount - perPage
	if maxOff < 0 {
		return 0
	}

	return maxOff
}

// needsPagination returns true if the tree is too large to fit on screen.
func (tm treeModel) needsPagination() bool {
	rowCount := len(tm.rows)
	if rowCount == 0 {
		return false
	}

	return rowCount > tm.itemsPerPage() && tm.height > 0
}

func (tm treeModel) View() string {
	var b strings.Builder

	tm.renderHeader(&b)

	if len(tm.rows) == 0 {
		b.WriteString("  (empty variable tree)\n")
		return b.String()
	}

	tm.renderRows(&b)

	return b.String()
}

func (tm treeModel) renderHeader(b *strings.Builder) {
	b.WriteString("╔════════════════════════════════════════════════════════════════╗\n")
	b.WriteString("║                   varscope - Variable Tree                     ║\n")
	b.WriteString("╚════════════════════════════════════════════════════════════════╝\n\n")
}

func (tm treeModel) renderRows(b *strings.Builder) {
	totalRows := len(tm.rows)

	b.WriteString("  variables:\n\n")

	// Calculate pagination
	itemsPerPage := tm.itemsPerPage()
	needsPagination := totalRows > itemsPerPage && tm.height > 0

	start := tm.offset

	end := start + itemsPerPage
	if end > totalRows {
		end = totalRows
	}

	if start >= totalRows {
		start = totalRows - 1
		if start < 0 {
			start = 0
		}
	}

	// Show rows for current page
	displayRows := tm.rows

	if needsPagination {
		displayRows = tm.rows[start:end]
	}

	for _, row := range displayRows {
		value := formatLeaf(row.Value)

		if isAbstractLeaf(row.Value) {
			// Gray out shape-only values
			fmt.Fprintf(b, "  %s%s: %s%s%s\n", row.Collection, row.Path, grayColor, value, resetColor)
		} else {
			fmt.Fprintf(b, "  %s%s: %s\n", row.Collection, row.Path, value)
		}
	}

	// Total count
	b.WriteString("\n")
	fmt.Fprintf(b, "  Total: %d variable(s)\n", totalRows)

	// Footer with navigation help
	if needsPagination {
		b.WriteString("\n")

		currentPage := (tm.offset / itemsPerPage) + 1
		totalPages := (totalRows + itemsPerPage - 1) / itemsPerPage
		fmt.Fprintf(b, "  Page %d/%d | Showing %d-%d of %d\n",
			currentPage, totalPages, start+1, end, totalRows)
		b.WriteString("  ↑/k: up | ↓/j: down | g: top | G: bottom | q: quit\n")
	}
}

func formatLeaf(value any) string {
	if arr, ok := value.(*m.Array); ok {
		return arr.String()
	}

	return fmt.Sprintf("%v", value)
}

func isAbstractLeaf(value any) bool {
	arr, ok := value.(*m.Array)
	return ok && arr.Abstract()
}
