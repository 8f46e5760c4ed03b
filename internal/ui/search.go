package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"filedesk/internal/catalog"
	"filedesk/internal/util/logx"
)

type searchTickMsg struct{ tag int }

// debouncer coalesces bursts of input. Every trigger supersedes the
// previous one; only the tick carrying the latest tag is acted upon.
type debouncer struct {
	delay time.Duration
	tag   int
}

func (d *debouncer) trigger() tea.Cmd {
	d.tag++
	tag := d.tag
	return tea.Tick(d.delay, func(time.Time) tea.Msg { return searchTickMsg{tag: tag} })
}

// cancel invalidates any pending tick.
func (d *debouncer) cancel() { d.tag++ }

func (d *debouncer) current(msg searchTickMsg) bool { return msg.tag == d.tag }

func (m *Model) startSearch() tea.Cmd {
	m.inlineMode = inlineSearch
	return m.search.Focus()
}

func (m *Model) updateSearchInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.inlineMode = inlineNone
		m.search.Blur()
		return nil
	case tea.KeyEnter:
		// explicit trigger: apply now and drop whatever is pending
		m.debounce.cancel()
		return m.applySearch()
	}
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == before {
		return cmd
	}
	return tea.Batch(cmd, m.debounce.trigger())
}

func (m *Model) onSearchTick(msg searchTickMsg) tea.Cmd {
	if !m.debounce.current(msg) {
		return nil
	}
	return m.applySearch()
}

func (m *Model) applySearch() tea.Cmd {
	m.query = catalog.NormalizeQuery(m.search.Value())
	logx.Debugf("ui: search %q", m.query)
	return m.renderCatalog()
}

func (m *Model) startFilter() tea.Cmd {
	m.inlineMode = inlineFilter
	if m.expr != nil {
		m.exprInput.SetValue(m.expr.String())
	}
	m.exprInput.CursorEnd()
	return m.exprInput.Focus()
}

func (m *Model) updateFilterInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.inlineMode = inlineNone
		m.exprInput.Blur()
		return nil
	case tea.KeyEnter:
		e, err := catalog.CompileExpr(m.exprInput.Value())
		if err != nil {
			m.lastMsg = "filter error: " + err.Error()
			return nil
		}
		m.inlineMode = inlineNone
		m.exprInput.Blur()
		m.expr = e
		if e.String() == "" {
			m.lastMsg = "filter cleared"
		} else {
			m.lastMsg = "filter: " + e.String()
		}
		return m.renderCatalog()
	}
	var cmd tea.Cmd
	m.exprInput, cmd = m.exprInput.Update(msg)
	return cmd
}

func (m *Model) clearFilter() tea.Cmd {
	m.expr = nil
	m.exprInput.SetValue("")
	m.lastMsg = "filter cleared"
	return m.renderCatalog()
}
