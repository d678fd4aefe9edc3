package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/dashboard/pkg/models"
)

func TestStore_Entries(t *testing.T) {
	s := New()

	_, ok := s.Entry(models.KindProjects, models.NoScope)
	assert.False(t, ok, "new store should have no entries")

	s.SetEntry(Entry{
		Kind:     models.KindProjects,
		Items:    []models.Project{{ID: "p1"}},
		LoadedAt: time.Now(),
	})

	e, ok := s.Entry(models.KindProjects, models.NoScope)
	require.True(t, ok)
	assert.Equal(t, []models.Project{{ID: "p1"}}, e.Items)

	// Entries are keyed by scope
	_, ok = s.Entry(models.KindProjects, "other")
	assert.False(t, ok)

	s.DropEntry(models.KindProjects, models.NoScope)
	_, ok = s.Entry(models.KindProjects, models.NoScope)
	assert.False(t, ok)
}

func TestStore_MutateEntry(t *testing.T) {
	s := New()

	mutated := s.MutateEntry(models.KindProductVersions, "p1", func(items any) any {
		t.Fatal("mutation should not run without an entry")
		return items
	})
	assert.False(t, mutated)

	s.SetEntry(Entry{Kind: models.KindProductVersions, Scope: "p1", Items: []models.ProductVersion{{ID: "v1"}}})
	mutated = s.MutateEntry(models.KindProductVersions, "p1", func(items any) any {
		return append(items.([]models.ProductVersion), models.ProductVersion{ID: "v2"})
	})
	require.True(t, mutated)

	e, _ := s.Entry(models.KindProductVersions, "p1")
	assert.Len(t, e.Items, 2)
}

func TestStore_Toasts(t *testing.T) {
	s := New()
	s.AddToast(models.Toast{ID: "t1"})
	s.AddToast(models.Toast{ID: "t2"})

	toasts := s.Toasts()
	require.Len(t, toasts, 2)

	// Returned slice is a copy
	toasts[0].ID = "changed"
	assert.Equal(t, "t1", s.Toasts()[0].ID)

	assert.True(t, s.RemoveToast("t1"))
	assert.False(t, s.RemoveToast("t1"), "second removal should be a no-op")
	assert.Equal(t, []models.Toast{{ID: "t2"}}, s.Toasts())
}

func TestStore_Subscribe(t *testing.T) {
	s := New()
	ch := s.Subscribe()

	s.AddToast(models.Toast{ID: "t1"})
	select {
	case u := <-ch:
		assert.Equal(t, UpdateToasts, u.Type)
		assert.Len(t, u.Toasts, 1)
	case <-time.After(time.Second):
		t.Fatal("expected toast update")
	}

	s.SetEntry(Entry{Kind: models.KindProjects})
	select {
	case u := <-ch:
		assert.Equal(t, UpdateCache, u.Type)
		assert.Equal(t, models.KindProjects, u.Kind)
	case <-time.After(time.Second):
		t.Fatal("expected cache update")
	}

	s.Unsubscribe(ch)
	_, open := <-ch
	assert.False(t, open, "channel should be closed after Unsubscribe")

	// Double unsubscribe is safe
	s.Unsubscribe(ch)
}
