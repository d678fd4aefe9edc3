// Package dashboard is the interactive terminal surface: projects, the
// current project's product versions, and notifications.
package dashboard

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/dashboard/internal/app"
	"github.com/grovetools/dashboard/internal/store"
	"github.com/grovetools/dashboard/pkg/models"
	"github.com/grovetools/dashboard/tui/theme"
)

// Model represents the state of the dashboard TUI.
type Model struct {
	ctx     context.Context
	app     *app.App
	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	updates chan store.Update

	projects    []models.Project
	projectsErr error
	cursor      int
	width       int
	height      int
}

type projectsLoadedMsg struct {
	items []models.Project
	err   error
}

type versionsLoadedMsg struct {
	scope models.Scope
	err   error
}

type storeUpdateMsg store.Update

// New creates the dashboard model. The app must already be started.
func New(ctx context.Context, a *app.App) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.DefaultTheme.Accent

	return &Model{
		ctx:     ctx,
		app:     a,
		keys:    DefaultKeyMap,
		help:    help.New(),
		spinner: sp,
		updates: a.Store().Subscribe(),
	}
}

// Init is the first command that will be executed.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadProjects(false), m.spinner.Tick, m.waitForUpdate())
}

// Close releases the store subscription.
func (m *Model) Close() {
	m.app.Store().Unsubscribe(m.updates)
}

func (m *Model) loadProjects(force bool) tea.Cmd {
	hook := m.app.Projects()
	return func() tea.Msg {
		items, err := hook.Load(m.ctx, models.NoScope, force)
		return projectsLoadedMsg{items: items, err: err}
	}
}

func (m *Model) reloadVersions() tea.Cmd {
	hook := m.app.Versions()
	s := m.app.Mirror().Current()
	if s.IsNull() {
		return nil
	}
	return func() tea.Msg {
		_, err := hook.Reload(m.ctx)
		return versionsLoadedMsg{scope: s, err: err}
	}
}

func (m *Model) waitForUpdate() tea.Cmd {
	ch := m.updates
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return nil
		}
		return storeUpdateMsg(u)
	}
}

// selectProject writes the project under the cursor as the shared scope.
func (m *Model) selectProject() tea.Cmd {
	if m.cursor < 0 || m.cursor >= len(m.projects) {
		return nil
	}
	id := m.projects[m.cursor].ID
	if err := m.app.SelectProject(id); err != nil {
		m.app.ReportError(err)
	}
	return nil
}

// syncCursor moves the cursor to the project that is the current scope.
func (m *Model) syncCursor() {
	current := m.app.Mirror().Current()
	for i, p := range m.projects {
		if models.Scope(p.ID) == current {
			m.cursor = i
			return
		}
	}
	if m.cursor >= len(m.projects) {
		m.cursor = 0
	}
}
