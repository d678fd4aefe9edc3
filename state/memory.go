package state

import "sync"

// MemoryStore is an in-process Store that pushes key changes to watchers.
type MemoryStore struct {
	mu       sync.RWMutex
	values   map[string]string
	watchers map[int]chan string
	nextID   int
}

var (
	_ Store     = (*MemoryStore)(nil)
	_ Watchable = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values:   make(map[string]string),
		watchers: make(map[int]chan string),
	}
}

func (m *MemoryStore) GetValue(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) SetValue(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.values[key]; ok && cur == value {
		return nil
	}
	m.values[key] = value
	m.notify(key)
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; !ok {
		return nil
	}
	delete(m.values, key)
	m.notify(key)
	return nil
}

// Watch subscribes to key changes. Slow watchers drop notifications rather
// than block writers; a dropped signal is recovered on the next one since
// consumers re-read the value.
func (m *MemoryStore) Watch() (<-chan string, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	ch := make(chan string, 16)
	m.watchers[id] = ch

	var once sync.Once
	stop := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			delete(m.watchers, id)
			close(ch)
		})
	}
	return ch, stop
}

// notify must be called with mu held.
func (m *MemoryStore) notify(key string) {
	for _, ch := range m.watchers {
		select {
		case ch <- key:
		default:
		}
	}
}
