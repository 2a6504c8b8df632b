package triage

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yvc-project/yvcweb/pkg/formats"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m tea.Model, msgs ...tea.Msg) model {
	t.Helper()

	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}

	got, ok := m.(model)
	require.True(t, ok)
	return got
}

func testData() formats.Normalized {
	return formats.Normalized{
		Matches: []formats.Match{
			{
				Package:       formats.Package{Name: "perl-5.8.5_13"},
				Vulnerability: formats.Vulnerability{Type: "remote-code-execution", URL: "http://example.com/perl"},
			},
			{
				Package:       formats.Package{Name: "openssl-0.9.8"},
				Vulnerability: formats.Vulnerability{Type: "CVE-2014-0160", URL: "http://example.com/heartbleed"},
			},
		},
	}
}

func TestNew_SortsMatches(t *testing.T) {
	m := update(t, New(testData()))

	require.Len(t, m.data.Matches, 2)
	assert.Equal(t, "openssl-0.9.8", m.data.Matches[0].Package.Name)
	assert.Equal(t, "perl-5.8.5_13", m.data.Matches[1].Package.Name)
}

func TestModel_Find(t *testing.T) {
	m := update(t, New(testData()),
		tea.WindowSizeMsg{Width: 120, Height: 20},
		key("/"),
		key("perl"),
		tea.KeyMsg{Type: tea.KeyEnter},
	)

	assert.Equal(t, ModeDataScroll, m.mode)
	assert.Equal(t, 1, m.table.IndexSelected())
	assert.Empty(t, m.status)

	m = update(t, m, key("/"), key("bash"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "Not found: bash", m.status)
	assert.Equal(t, 1, m.table.IndexSelected(), "selection is kept when nothing matches")
	assert.Contains(t, m.View(), "Not found: bash")
}

func TestModel_Details(t *testing.T) {
	m := update(t, New(testData()), tea.WindowSizeMsg{Width: 120, Height: 20}, key("d"))

	assert.True(t, m.showDetails)
	view := m.View()
	assert.Contains(t, view, "http://example.com/heartbleed")
	assert.Contains(t, view, "CVE-2014-0160")

	m = update(t, m, key("d"))
	assert.False(t, m.showDetails)
}

func TestModel_Quit(t *testing.T) {
	_, cmd := New(testData()).Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
