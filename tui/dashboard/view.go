package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/dashboard/pkg/models"
	"github.com/grovetools/dashboard/pkg/resource"
	"github.com/grovetools/dashboard/tui/theme"
)

// View renders the dashboard.
func (m *Model) View() string {
	t := theme.DefaultTheme
	current := m.app.Mirror().Current()

	scopeLabel := t.Muted.Render("none")
	if !current.IsNull() {
		scopeLabel = t.Accent.Render(current.String())
	}
	header := t.Header.Render(fmt.Sprintf("%s Dashboard  %s %s", theme.IconProject, t.Muted.Render("project:"), scopeLabel))

	columns := lipgloss.JoinHorizontal(lipgloss.Top,
		t.Box.Render(m.renderProjects(current)),
		t.Box.Render(m.renderVersions()),
	)

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(columns)
	b.WriteString("\n")
	if toasts := m.renderToasts(); toasts != "" {
		b.WriteString(toasts)
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderProjects(current models.Scope) string {
	t := theme.DefaultTheme
	lines := []string{t.TableHeader.Render("Projects")}

	hook := m.app.Projects()
	switch {
	case hook.State() == resource.Loading && len(m.projects) == 0:
		lines = append(lines, m.spinner.View()+" loading")
	case m.projectsErr != nil && len(m.projects) == 0:
		lines = append(lines, t.Error.Render(theme.IconError+" failed to load"))
	case len(m.projects) == 0:
		lines = append(lines, t.Muted.Render("no projects"))
	}

	for i, p := range m.projects {
		marker := "  "
		if models.Scope(p.ID) == current {
			marker = theme.IconArrow + " "
		}
		line := marker + p.Name
		if i == m.cursor {
			line = t.Selected.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderVersions() string {
	t := theme.DefaultTheme
	hook := m.app.Versions()
	lines := []string{t.TableHeader.Render("Product versions")}

	if hook.Scope().IsNull() {
		return strings.Join(append(lines, t.Muted.Render("select a project")), "\n")
	}

	items := hook.Items()
	switch hook.State() {
	case resource.Loading:
		if len(items) == 0 {
			lines = append(lines, m.spinner.View()+" loading")
		}
	case resource.Empty:
		if err := hook.Err(); err != nil {
			lines = append(lines, t.Error.Render(theme.IconError+" failed to load"))
		} else {
			lines = append(lines, t.Muted.Render("nothing loaded"))
		}
	}
	if hook.State() == resource.Loaded && len(items) == 0 {
		lines = append(lines, t.Muted.Render("no versions"))
	}
	for _, v := range items {
		lines = append(lines, fmt.Sprintf("%s %s %s", theme.IconBullet, v.Name, t.Muted.Render(v.Version)))
	}
	if hook.State() == resource.Loaded && hook.Err() != nil {
		lines = append(lines, t.Warning.Render(theme.IconWarning+" showing last loaded data"))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderToasts() string {
	t := theme.DefaultTheme
	toasts := m.app.Store().Toasts()
	if len(toasts) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(toasts))
	for _, toast := range toasts {
		style := t.ToastStyle(toast.Kind)
		rendered = append(rendered, t.Toast.Render(style.Render(theme.ToastIcon(toast.Kind))+" "+toast.Message))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rendered...)
}
