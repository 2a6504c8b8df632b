package triage

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/yvc-project/yvcweb/internal/triage/details"
	"github.com/yvc-project/yvcweb/internal/triage/table"
	"github.com/yvc-project/yvcweb/pkg/formats"
)

var styleStatus = lipgloss.NewStyle().Foreground(lipgloss.Color("#aa7777"))

type model struct {
	height, width int

	data formats.Normalized

	mode   Mode
	table  table.Model
	filter textinput.Model
	status string

	showDetails bool
	details     details.Model
}

type Mode int

const (
	ModeDataScroll Mode = iota
	ModeFilterEntry
)

// New returns the triage program model for data, with matches sorted by
// package and then vulnerability.
func New(data formats.Normalized) tea.Model {
	ms := data.Matches

	sort.SliceStable(ms, func(i, j int) bool {
		nameCmp := strings.Compare(ms[i].Package.Identifier(), ms[j].Package.Identifier())

		if nameCmp != 0 {
			return nameCmp < 0
		}

		vulnCmp := strings.Compare(ms[i].Vulnerability.Name(), ms[j].Vulnerability.Name())
		return vulnCmp < 0
	})

	return model{
		data:   data,
		table:  table.New(data),
		mode:   ModeDataScroll,
		filter: textinput.Model{},
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {

	// Is it a key press?
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		switch m.mode {
		case ModeDataScroll:
			m.status = ""

			switch msg.String() {

			case "q":
				return m, tea.Quit

			case "/":
				m.mode = ModeFilterEntry
				m.filter = newFilterTextInput()
				m.filter.Focus()
				m = m.updateComponentSizes()
				return m, textinput.Blink

			case "n":
				if expr := m.filter.Value(); expr != "" {
					updatedTable, err := m.table.FindNext()
					if err == table.NoMatchFound {
						m.status = "No other match for " + expr
						return m, nil
					}

					m.table = updatedTable
					return m, nil
				}

			case "N":
				if expr := m.filter.Value(); expr != "" {
					updatedTable, err := m.table.FindPrevious()
					if err == table.NoMatchFound {
						m.status = "No other match for " + expr
						return m, nil
					}

					m.table = updatedTable
					return m, nil
				}

			case "d":
				m.showDetails = !m.showDetails
				m = m.updateComponentSizes()
				return m, nil
			}

			m.table, cmd = m.table.Update(msg)
			return m, cmd

		case ModeFilterEntry:
			if msg.String() == "enter" {
				expr := m.filter.Value()
				m.filter.Blur()
				m.mode = ModeDataScroll

				updatedTable, err := m.table.Find(expr)
				if err == table.NoMatchFound {
					m.status = "Not found: " + expr
				} else {
					m.table = updatedTable
				}

				m = m.updateComponentSizes()
				return m, nil
			}

			if msg.String() == "esc" {
				m.filter.Blur()
				m.mode = ModeDataScroll
				m = m.updateComponentSizes()
				return m, nil
			}

			m.filter, cmd = m.filter.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.width = msg.Width

		m = m.updateComponentSizes()

		return m, nil
	}

	m.filter, cmd = m.filter.Update(msg)
	return m, cmd
}

func (m model) updateComponentSizes() model {
	tableHeight, detailsHeight := m.expectedComponentHeights()

	m.table = m.table.SetHeight(tableHeight).SetWidth(m.width)
	m.details = m.details.SetHeight(detailsHeight).SetWidth(m.width)

	return m
}

func (m model) View() string {
	output := ""

	output += m.table.View()

	if m.mode == ModeFilterEntry {
		output += "\n" + m.filter.View()
	} else if m.status != "" {
		output += "\n" + styleStatus.Render(m.status)
	}

	if i := m.table.IndexSelected(); m.showDetails && i >= 0 {
		output += "\n" + m.details.For(m.data.Matches[i]).View()
	}

	return output
}

func (m model) expectedComponentHeights() (table, details int) {
	table = m.height
	details = 0

	if m.showDetails {
		details = m.height / 2
		table = m.height - details
	}

	if m.mode == ModeFilterEntry || m.status != "" {
		table = table - 1
	}

	return
}

func newFilterTextInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "Find: "
	ti.Placeholder = "package, vulnerability or URL"

	return ti
}
