package details

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/yvc-project/yvcweb/pkg/formats"
)

var (
	detailsStyle    = lipgloss.NewStyle().Background(lipgloss.Color("#222233"))
	fieldNameStyle  = lipgloss.NewStyle().Inherit(detailsStyle).Foreground(lipgloss.Color("#aaaaaa"))
	fieldValueStyle = lipgloss.NewStyle().Inherit(detailsStyle).Foreground(lipgloss.Color("#ffffff"))
)

// Model shows every field of one match.
type Model struct {
	height, width int

	data formats.Match
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(_ tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

func (m Model) View() string {
	p, v := m.data.Package, m.data.Vulnerability

	output := ""
	output += m.renderFieldNameValue("Package", p.Identifier()) + "\n"
	output += m.renderOptional("Type", p.Type)
	output += m.renderOptional("Origin", p.OriginPackageName)
	if len(p.Locations) > 0 {
		output += m.renderLocations(p.Locations) + "\n"
	}

	output += "\n"

	output += m.renderFieldNameValue("Vulnerability", v.Name()) + "\n"
	output += m.renderFieldNameValue("Type", v.Type) + "\n"
	output += m.renderOptional("Severity", v.Severity)
	output += m.renderFieldNameValue("URL", v.URL) + "\n"
	output += m.renderOptional("Description", v.Description)

	return detailsStyle.Height(m.height).MaxHeight(m.height).Width(m.width).Render(output)
}

func (m Model) SetHeight(h int) Model {
	m.height = h
	return m
}

func (m Model) SetWidth(w int) Model {
	m.width = w
	return m
}

func (m Model) For(data formats.Match) Model {
	m.data = data
	return m
}

func (m Model) renderFieldNameValue(name, value string) string {
	renderedName := fieldNameStyle.Render(name + ":")
	renderedName = stripANSIReset(renderedName)
	renderedValue := fieldValueStyle.Render(value)

	line := renderedName + " " + renderedValue

	return line
}

// renderOptional renders a field line only when value is set; yvc leaves most
// of them empty.
func (m Model) renderOptional(name, value string) string {
	if value == "" {
		return ""
	}

	return m.renderFieldNameValue(name, value) + "\n"
}

func (m Model) renderLocations(locations []string) string {
	switch len(locations) {
	case 1:
		return m.renderFieldNameValue("Location", locations[0])
	default:
		values := strings.Join(locations, "\n")
		return m.renderFieldNameValue("Locations", values)
	}
}

func stripANSIReset(in string) string {
	const resetSequence = "\x1b[0m"
	return strings.Replace(in, resetSequence, "", -1)
}
