package dashboard

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and updates the model accordingly.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case projectsLoadedMsg:
		m.projectsErr = msg.err
		if msg.err != nil {
			m.app.ReportError(msg.err)
			return m, nil
		}
		m.projects = msg.items
		m.syncCursor()
		return m, nil

	case versionsLoadedMsg:
		if msg.err != nil {
			m.app.ReportError(msg.err)
		}
		return m, nil

	case storeUpdateMsg:
		// The view reads hooks and toasts directly; the update only
		// triggers a re-render.
		return m, m.waitForUpdate()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.projects)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Select):
			return m, m.selectProject()
		case key.Matches(msg, m.keys.Next):
			if len(m.projects) > 0 {
				m.cursor = (m.cursor + 1) % len(m.projects)
			}
			return m, m.selectProject()
		case key.Matches(msg, m.keys.Reload):
			return m, tea.Batch(m.loadProjects(true), m.reloadVersions())
		case key.Matches(msg, m.keys.Dismiss):
			toasts := m.app.Store().Toasts()
			if len(toasts) > 0 {
				m.app.Notifier().Dismiss(toasts[len(toasts)-1].ID)
			}
		}
	}
	return m, nil
}
