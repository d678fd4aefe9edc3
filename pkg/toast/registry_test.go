package toast

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/dashboard/internal/store"
	"github.com/grovetools/dashboard/pkg/models"
)

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type removals struct {
	mu  sync.Mutex
	ids []string
}

func (r *removals) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
}

func (r *removals) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}

func toast(id string, d time.Duration) models.Toast {
	return models.Toast{ID: id, Message: id, Kind: models.ToastInfo, Duration: d}
}

func TestSweepDropsExternallyRemovedToast(t *testing.T) {
	var rm removals
	r := NewRegistry(rm.remove, WithRegistryLogger(quietLogger()))
	defer r.Close()

	r.OnToastListChanged([]models.Toast{toast("t1", time.Hour), toast("t2", time.Hour)})
	require.Equal(t, 2, r.Len())

	// t1 is dismissed by hand; only t2 keeps a timer.
	r.OnToastListChanged([]models.Toast{toast("t2", time.Hour)})
	assert.Equal(t, 1, r.Len())
	assert.False(t, r.Has("t1"))
	assert.True(t, r.Has("t2"))
	assert.Empty(t, rm.list())
}

func TestNoDuplicateTimers(t *testing.T) {
	var rm removals
	r := NewRegistry(rm.remove, WithRegistryLogger(quietLogger()))
	defer r.Close()

	list := []models.Toast{toast("t1", 20*time.Millisecond)}
	r.OnToastListChanged(list)
	r.OnToastListChanged(list)
	assert.False(t, r.Schedule("t1", 20*time.Millisecond))
	assert.Equal(t, 1, r.Len())

	assert.Eventually(t, func() bool { return len(rm.list()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, []string{"t1"}, rm.list())
	assert.Equal(t, 0, r.Len())
}

func TestStickyToastsAreNotScheduled(t *testing.T) {
	r := NewRegistry(func(string) {}, WithRegistryLogger(quietLogger()))
	defer r.Close()

	r.OnToastListChanged([]models.Toast{toast("sticky", 0)})
	assert.Equal(t, 0, r.Len())
	assert.False(t, r.Schedule("neg", -time.Second))
}

func TestCancel(t *testing.T) {
	var rm removals
	r := NewRegistry(rm.remove, WithRegistryLogger(quietLogger()))
	defer r.Close()

	require.True(t, r.Schedule("t1", 10*time.Millisecond))
	assert.True(t, r.Cancel("t1"))
	assert.False(t, r.Cancel("t1"))

	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, rm.list())
}

func TestRescheduleAfterCancelFiresOnce(t *testing.T) {
	var rm removals
	r := NewRegistry(rm.remove, WithRegistryLogger(quietLogger()))
	defer r.Close()

	require.True(t, r.Schedule("t1", 10*time.Millisecond))
	r.Cancel("t1")
	require.True(t, r.Schedule("t1", 30*time.Millisecond))

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, rm.list())
	assert.True(t, r.Has("t1"))

	assert.Eventually(t, func() bool { return len(rm.list()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestCloseCancelsEverything(t *testing.T) {
	var rm removals
	r := NewRegistry(rm.remove, WithRegistryLogger(quietLogger()))

	r.OnToastListChanged([]models.Toast{toast("a", 10*time.Millisecond), toast("b", 10*time.Millisecond)})
	r.Close()
	assert.Equal(t, 0, r.Len())
	assert.False(t, r.Schedule("c", 10*time.Millisecond))

	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, rm.list())
}

func TestNotifierAutoDismisses(t *testing.T) {
	st := store.New()
	n := NewNotifier(st,
		WithLogger(quietLogger()),
		WithDurations(func(models.ToastKind) time.Duration { return 20 * time.Millisecond }),
		WithResyncInterval(10*time.Millisecond))
	n.Start(context.Background())
	defer n.Close()

	id := n.Notify("saved", models.ToastSuccess, UseDefault)
	sticky := n.Notify("read me", models.ToastWarning, 0)

	toasts := st.Toasts()
	require.Len(t, toasts, 2)
	assert.Equal(t, id, toasts[0].ID)
	assert.Equal(t, 20*time.Millisecond, toasts[0].Duration)

	assert.Eventually(t, func() bool { return len(st.Toasts()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, sticky, st.Toasts()[0].ID)

	assert.True(t, n.Dismiss(sticky))
	assert.False(t, n.Dismiss(sticky))
	assert.Empty(t, st.Toasts())
}

func TestNotifierManualDismissSweepsTimer(t *testing.T) {
	st := store.New()
	n := NewNotifier(st, WithLogger(quietLogger()), WithResyncInterval(5*time.Millisecond))
	n.Start(context.Background())
	defer n.Close()

	id := n.Notify("long", models.ToastInfo, time.Hour)
	assert.Eventually(t, func() bool { return n.Registry().Has(id) }, time.Second, 5*time.Millisecond)

	require.True(t, n.Dismiss(id))
	assert.Eventually(t, func() bool { return n.Registry().Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestNotifierDefaultDurations(t *testing.T) {
	st := store.New()
	n := NewNotifier(st, WithLogger(quietLogger()))
	defer n.Close()

	n.Notify("boom", models.ToastError, UseDefault)
	n.Notify("fyi", "", UseDefault)

	toasts := st.Toasts()
	require.Len(t, toasts, 2)
	assert.Equal(t, 8*time.Second, toasts[0].Duration)
	assert.Equal(t, models.ToastInfo, toasts[1].Kind)
	assert.Equal(t, 4*time.Second, toasts[1].Duration)
}
