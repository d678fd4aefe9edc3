package dashboard

import (
	"context"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/dashboard/config"
	"github.com/grovetools/dashboard/internal/app"
	"github.com/grovetools/dashboard/pkg/models"
	"github.com/grovetools/dashboard/pkg/toast"
	"github.com/grovetools/dashboard/pkg/transport/mocks"
	"github.com/grovetools/dashboard/state"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)

	projects := &mocks.MockResource[models.Project]{
		KindValue: models.KindProjects,
		ListFunc: func(ctx context.Context, s models.Scope, f models.Filters) (*models.Page[models.Project], error) {
			return &models.Page[models.Project]{Items: []models.Project{
				{ID: "p1", Name: "Alpha"},
				{ID: "p2", Name: "Beta"},
			}}, nil
		},
	}
	versions := &mocks.MockResource[models.ProductVersion]{
		KindValue: models.KindProductVersions,
		ListFunc: func(ctx context.Context, s models.Scope, f models.Filters) (*models.Page[models.ProductVersion], error) {
			return &models.Page[models.ProductVersion]{Items: []models.ProductVersion{
				{ID: s.String() + "-v", ProjectID: s.String(), Name: "release-" + s.String(), Version: "1.2.3"},
			}}, nil
		},
	}

	a, err := app.New(config.Default(),
		app.WithLogger(logrus.NewEntry(l)),
		app.WithDurableStore(state.NewMemoryStore()),
		app.WithProjectsAPI(projects),
		app.WithVersionsAPI(versions))
	require.NoError(t, err)
	a.Start(context.Background())
	t.Cleanup(a.Close)
	return a
}

func runCmd(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	m.Update(cmd())
}

func TestProjectsLoadAndRender(t *testing.T) {
	a := newTestApp(t)
	m := New(context.Background(), a)
	defer m.Close()

	runCmd(t, m, m.loadProjects(false))
	require.Len(t, m.projects, 2)

	view := m.View()
	assert.Contains(t, view, "Alpha")
	assert.Contains(t, view, "Beta")
	assert.Contains(t, view, "select a project")
}

func TestTabSelectsNextProjectAsSharedScope(t *testing.T) {
	a := newTestApp(t)
	m := New(context.Background(), a)
	defer m.Close()
	runCmd(t, m, m.loadProjects(false))

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, m.cursor)
	assert.Equal(t, models.Scope("p2"), a.Mirror().Current())

	v, ok, err := a.Durable().GetValue(a.Config().Scope.Key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "p2", v)

	require.Eventually(t, func() bool {
		_, ok := a.Versions().Get("p2-v")
		return ok
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, m.View(), "release-p2")

	// Wraps around.
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 0, m.cursor)
	assert.Equal(t, models.Scope("p1"), a.Mirror().Current())
}

func TestDismissRemovesNewestToast(t *testing.T) {
	a := newTestApp(t)
	m := New(context.Background(), a)
	defer m.Close()

	a.Notifier().Notify("first", models.ToastInfo, 0)
	a.Notifier().Notify("second", models.ToastWarning, toast.UseDefault)
	assert.Contains(t, m.View(), "second")

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	toasts := a.Store().Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, "first", toasts[0].Message)
}

func TestQuit(t *testing.T) {
	a := newTestApp(t)
	m := New(context.Background(), a)
	defer m.Close()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
