package state

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/grovetools/dashboard/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "state.yml"))
	require.NoError(t, err)
	return s
}

func TestFileStoreEmpty(t *testing.T) {
	s := newTestFileStore(t)

	st, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, st)

	_, ok, err := s.GetValue("current_project")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStoreSetGetDelete(t *testing.T) {
	s := newTestFileStore(t)

	require.NoError(t, s.SetValue("current_project", "42"))
	got, ok, err := s.GetValue("current_project")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "42", got)

	// A second store on the same file sees the write.
	other, err := NewFileStore(s.Path())
	require.NoError(t, err)
	got, ok, err = other.GetValue("current_project")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "42", got)

	require.NoError(t, s.Delete("current_project"))
	_, ok, err = other.GetValue("current_project")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting a missing key is a no-op.
	require.NoError(t, s.Delete("current_project"))
}

func TestFileStorePreservesOtherKeys(t *testing.T) {
	s := newTestFileStore(t)
	require.NoError(t, s.Save(State{"theme": "dark", "count": 3}))

	require.NoError(t, s.SetValue("current_project", "7"))

	st, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "dark", st["theme"])
	assert.Equal(t, 3, st["count"])
	assert.Equal(t, "7", st["current_project"])
}

func TestFileStoreFormatsNonStringValues(t *testing.T) {
	s := newTestFileStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0755))
	require.NoError(t, os.WriteFile(s.Path(), []byte("current_project: 42\n"), 0644))

	got, ok, err := s.GetValue("current_project")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "42", got)
}

func TestFileStoreCorruptFile(t *testing.T) {
	s := newTestFileStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0755))
	require.NoError(t, os.WriteFile(s.Path(), []byte("::: not yaml [\n"), 0644))

	_, _, err := s.GetValue("current_project")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeStateUnavailable))
}

func TestFileStoreConcurrentWriters(t *testing.T) {
	s := newTestFileStore(t)
	other, err := NewFileStore(s.Path())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.SetValue("a", string(rune('a'+i))))
		}(i)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, other.SetValue("b", string(rune('a'+i))))
		}(i)
	}
	wg.Wait()

	st, err := s.Load()
	require.NoError(t, err)
	assert.Contains(t, st, "a")
	assert.Contains(t, st, "b")
}

func TestDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	s, err := NewFileStore("")
	require.NoError(t, err)
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, ".dashboard", "state.yml"), s.Path())
}

func TestMemoryStoreWatch(t *testing.T) {
	m := NewMemoryStore()
	ch, stop := m.Watch()
	defer stop()

	require.NoError(t, m.SetValue("current_project", "1"))
	select {
	case key := <-ch:
		assert.Equal(t, "current_project", key)
	case <-time.After(time.Second):
		t.Fatal("expected change notification")
	}

	// Writing the same value does not notify.
	require.NoError(t, m.SetValue("current_project", "1"))
	select {
	case key := <-ch:
		t.Fatalf("unexpected notification for %s", key)
	default:
	}

	require.NoError(t, m.Delete("current_project"))
	assert.Equal(t, "current_project", <-ch)

	v, ok, err := m.GetValue("current_project")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestMemoryStoreStopClosesChannel(t *testing.T) {
	m := NewMemoryStore()
	ch, stop := m.Watch()
	stop()
	stop()

	_, open := <-ch
	assert.False(t, open)
	require.NoError(t, m.SetValue("k", "v"))
}
