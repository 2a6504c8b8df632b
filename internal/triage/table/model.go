package table

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/yvc-project/yvcweb/pkg/formats"
)

const (
	widthPackage  = 32
	widthType     = 26
	widthSeverity = 10
)

const (
	hexNotSelected = "#777777"
	hexSelected    = "#FFFFFF"
)

const notFound = -1

// NoMatchFound is returned by the Find methods when no row contains the
// expression.
var NoMatchFound = errors.New("no row matched expression")

var (
	styleHeaderRow          = lipgloss.NewStyle().Foreground(lipgloss.Color(hexNotSelected)).Bold(true)
	styleDataRowNotSelected = lipgloss.NewStyle().Foreground(lipgloss.Color(hexNotSelected))
	styleDataRowSelected    = lipgloss.NewStyle().Foreground(lipgloss.Color(hexSelected))
)

// Model is a scrolling table of vulnerable packages with one selected row.
type Model struct {
	windowStart    int
	windowSize     int
	width          int
	rowSelected    int
	findExpression string

	data formats.Normalized
}

func New(data formats.Normalized) Model {
	return Model{
		windowStart: 0,
		windowSize:  10,
		rowSelected: 0,
		data:        data,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {

	// Is it a key press?
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		switch msg.String() {

		case "q":
			return m, tea.Quit

		case "up", "k":
			return m.moveUp(), nil

		case "down", "j":
			return m.moveDown(), nil

		case "g":
			return m.jumpToStart(), nil

		case "G":
			return m.jumpToEnd(), nil

		case "w":
			return m.pageUp(), nil

		case "z":
			return m.pageDown(), nil

		}
	}

	return m, nil
}

func (m Model) View() string {
	output := ""
	output += renderHeaderRow()

	if m.totalRowCount() == 0 {
		return output + "  No vulnerabilities found.\n"
	}

	output += m.renderRowsWindow(m.windowStart, m.windowSize)

	if m.width > 0 {
		output = lipgloss.NewStyle().MaxWidth(m.width).Render(output)
	}

	return output
}

// SetHeight sizes the row window, leaving room for the header row.
func (m Model) SetHeight(h int) Model {
	m.windowSize = h - 2
	if m.windowSize < 1 {
		m.windowSize = 1
	}
	m = m.updateWindow()
	return m
}

func (m Model) SetWidth(w int) Model {
	m.width = w
	return m
}

// IndexSelected is the index into the data's matches of the selected row,
// or -1 when there is no data.
func (m Model) IndexSelected() int {
	if m.totalRowCount() == 0 {
		return notFound
	}

	return m.rowSelected
}

func (m Model) Find(expr string) (Model, error) {
	m.findExpression = expr
	foundIndex := m.find(expr)
	if foundIndex == notFound {
		return Model{}, NoMatchFound
	}

	m = m.selectAndShowRow(foundIndex)
	return m, nil
}

func (m Model) FindNext() (Model, error) {
	foundIndex := m.findNext(m.findExpression)
	if foundIndex == notFound {
		return Model{}, NoMatchFound
	}

	m = m.selectAndShowRow(foundIndex)
	return m, nil
}

func (m Model) FindPrevious() (Model, error) {
	foundIndex := m.findPrevious(m.findExpression)
	if foundIndex == notFound {
		return Model{}, NoMatchFound
	}

	m = m.selectAndShowRow(foundIndex)
	return m, nil
}

func (m Model) find(expr string) int {
	for i, match := range m.data.Matches {
		if match.Contains(expr) {
			return i
		}
	}

	return notFound
}

func (m Model) findNext(expr string) int {
	if m.totalRowCount() == 0 {
		return notFound
	}

	i := m.rowSelected

	for {
		i++
		if i > m.lastRowIndex() {
			i = 0
		}
		if i == m.rowSelected {
			return notFound
		}

		match := m.data.Matches[i]
		if match.Contains(expr) {
			return i
		}
	}
}

func (m Model) findPrevious(expr string) int {
	if m.totalRowCount() == 0 {
		return notFound
	}

	i := m.rowSelected

	for {
		i--
		if i < 0 {
			i = m.lastRowIndex()
		}
		if i == m.rowSelected {
			return notFound
		}

		match := m.data.Matches[i]
		if match.Contains(expr) {
			return i
		}
	}
}

// selectAndShowRow updates the index setting for the "selected row" and then
// updates the table window appropriately to ensure the selected row is shown.
func (m Model) selectAndShowRow(i int) Model {
	m.rowSelected = i
	m = m.updateWindow()
	return m
}

func (m Model) totalRowCount() int {
	return len(m.data.Matches)
}

func (m Model) lastRowIndex() int {
	return m.totalRowCount() - 1
}

func (m Model) dataWindowEnd() int {
	return m.windowStart + m.windowSize - 1
}

func (m Model) renderRowsWindow(start, size int) string {
	lastRow := m.lastRowIndex()

	if start > lastRow {
		return "\n"
	}

	output := ""

	for i := start; i < start+size; i++ {
		if i > lastRow {
			output += "\n"
			continue
		}

		isSelected := i == m.rowSelected

		output += renderDataRow(m.data.Matches[i], isSelected)
	}

	return output
}

func renderHeaderRow() string {
	unstyled := "  " +
		renderCell("Package", widthPackage) +
		renderCell("Vulnerability", widthType) +
		renderCell("Severity", widthSeverity) +
		"Reference"

	return styleHeaderRow.Render(unstyled) + "\n"
}

func renderDataRow(m formats.Match, isSelected bool) string {
	row := renderCell(m.Package.Identifier(), widthPackage) +
		renderCell(m.Vulnerability.Type, widthType) +
		renderCell(m.Vulnerability.Severity, widthSeverity) +
		m.Vulnerability.URL

	if isSelected {
		row = styleDataRowSelected.Render("> " + row)
	} else {
		row = styleDataRowNotSelected.Render("  " + row)
	}

	row += "\n"

	return row
}

// renderCell pads content to size, truncating it when it would not leave at
// least one column of separation.
func renderCell(content string, size int) string {
	if lipgloss.Width(content) >= size {
		runes := []rune(content)
		if len(runes) > size-2 {
			content = string(runes[:size-2]) + "…"
		}
	}

	padSize := size - lipgloss.Width(content)

	return lipgloss.NewStyle().PaddingRight(padSize).Render(content)
}

func (m Model) moveUp() Model {
	if m.rowSelected == 0 {
		return m
	}

	m = m.selectAndShowRow(m.rowSelected - 1)
	return m
}

func (m Model) moveDown() Model {
	if m.rowSelected >= m.lastRowIndex() {
		return m
	}

	m = m.selectAndShowRow(m.rowSelected + 1)
	return m
}

func (m Model) jumpToStart() Model {
	m = m.selectAndShowRow(0)
	return m
}

func (m Model) jumpToEnd() Model {
	if m.totalRowCount() == 0 {
		return m
	}

	m = m.selectAndShowRow(m.lastRowIndex())
	return m
}

func (m Model) pageUp() Model {
	if m.rowSelected > m.windowStart {
		m.rowSelected = m.windowStart
		return m
	}

	// already at the top of the window

	newSelectedRow := m.rowSelected - m.windowSize
	if newSelectedRow < 0 {
		// catch out-of-bounds case
		newSelectedRow = 0
	}

	m = m.selectAndShowRow(newSelectedRow)

	return m
}

func (m Model) pageDown() Model {
	if m.totalRowCount() == 0 {
		return m
	}

	if windowEnd := m.dataWindowEnd(); m.rowSelected < windowEnd {
		if windowEnd > m.lastRowIndex() {
			m.rowSelected = m.lastRowIndex()
			return m
		}

		m.rowSelected = windowEnd
		return m
	}

	// already at the bottom of the window

	newSelectedRow := m.rowSelected + m.windowSize
	if lastRow := m.lastRowIndex(); newSelectedRow > lastRow {
		// catch out-of-bounds case
		newSelectedRow = lastRow
	}

	m = m.selectAndShowRow(newSelectedRow)

	return m
}

func (m Model) updateWindow() Model {
	newSelectedIndex := m.rowSelected

	windowFirst := m.windowStart
	windowLast := m.dataWindowEnd()

	if newSelectedIndex >= windowFirst && newSelectedIndex <= windowLast {
		// selection already appears in window
		return m
	}

	if newSelectedIndex < windowFirst {
		// jump window backward to start at selection
		m.windowStart = newSelectedIndex
		return m
	}

	if newSelectedIndex > windowLast {
		// jump window forward so that windowLast is selection
		newStart := newSelectedIndex - (m.windowSize - 1)
		m.windowStart = newStart
		return m
	}

	return m
}
