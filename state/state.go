// Package state is the durable client store shared by every dashboard
// surface. Values live in a YAML key/value file guarded by an OS file lock,
// so independent processes can read and write the same keys.
package state

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/grovetools/dashboard/errors"
	"gopkg.in/yaml.v3"
)

// State is the decoded contents of the state file.
type State map[string]interface{}

// Store is the key/value surface the scope mirror depends on.
type Store interface {
	// GetValue returns the value for key and whether it was present.
	GetValue(key string) (string, bool, error)
	SetValue(key, value string) error
	Delete(key string) error
}

// Watchable stores push the name of every changed key. The returned
// function stops delivery and closes the channel.
type Watchable interface {
	Watch() (<-chan string, func())
}

// DefaultPath returns .dashboard/state.yml under the current directory.
func DefaultPath() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get current directory: %w", err)
	}
	return filepath.Join(cwd, ".dashboard", "state.yml"), nil
}

// FileStore keeps state in a YAML file.
type FileStore struct {
	path string

	// mu serializes goroutines sharing this store; the flock only excludes
	// other open file descriptions.
	mu   sync.Mutex
	lock *flock.Flock
}

var _ Store = (*FileStore)(nil)

// NewFileStore opens a store at path. An empty path uses DefaultPath.
// The file itself is created lazily on first write.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve state path: %w", err)
	}
	return &FileStore{
		path: abs,
		lock: flock.New(abs + ".lock"),
	}, nil
}

// Path returns the absolute path of the state file.
func (f *FileStore) Path() string {
	return f.path
}

// Load reads the whole state. A missing file is an empty state.
func (f *FileStore) Load() (State, error) {
	if err := f.ensureDir(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.lock.RLock(); err != nil {
		return nil, errors.StateUnavailable(f.path, err)
	}
	defer f.lock.Unlock()

	return f.read()
}

// Save replaces the whole state.
func (f *FileStore) Save(s State) error {
	if err := f.ensureDir(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.lock.Lock(); err != nil {
		return errors.StateUnavailable(f.path, err)
	}
	defer f.lock.Unlock()

	return f.write(s)
}

// GetValue returns the value stored under key. Non-string scalars written
// by hand (e.g. an unquoted numeric id) are formatted with fmt.Sprint.
func (f *FileStore) GetValue(key string) (string, bool, error) {
	s, err := f.Load()
	if err != nil {
		return "", false, err
	}
	val, ok := s[key]
	if !ok || val == nil {
		return "", false, nil
	}
	if str, ok := val.(string); ok {
		return str, true, nil
	}
	return fmt.Sprint(val), true, nil
}

// SetValue stores value under key.
func (f *FileStore) SetValue(key, value string) error {
	return f.update(func(s State) bool {
		if cur, ok := s[key].(string); ok && cur == value {
			return false
		}
		s[key] = value
		return true
	})
}

// Delete removes key from the state.
func (f *FileStore) Delete(key string) error {
	return f.update(func(s State) bool {
		if _, ok := s[key]; !ok {
			return false
		}
		delete(s, key)
		return true
	})
}

// update runs a read-modify-write under the exclusive lock. fn reports
// whether it changed anything; unchanged state is not rewritten.
func (f *FileStore) update(fn func(State) bool) error {
	if err := f.ensureDir(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.lock.Lock(); err != nil {
		return errors.StateUnavailable(f.path, err)
	}
	defer f.lock.Unlock()

	s, err := f.read()
	if err != nil {
		return err
	}
	if !fn(s) {
		return nil
	}
	return f.write(s)
}

func (f *FileStore) ensureDir() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return errors.StateUnavailable(f.path, fmt.Errorf("create state directory: %w", err))
	}
	return nil
}

func (f *FileStore) read() (State, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(State), nil
		}
		return nil, errors.StateUnavailable(f.path, fmt.Errorf("read state file: %w", err))
	}

	var s State
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.StateUnavailable(f.path, fmt.Errorf("parse state file: %w", err))
	}
	if s == nil {
		s = make(State)
	}
	return s, nil
}

// write replaces the file atomically so readers never see a partial document.
func (f *FileStore) write(s State) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return errors.StateUnavailable(f.path, fmt.Errorf("marshal state: %w", err))
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".state-*.yml")
	if err != nil {
		return errors.StateUnavailable(f.path, fmt.Errorf("create temp file: %w", err))
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.StateUnavailable(f.path, fmt.Errorf("write state file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return errors.StateUnavailable(f.path, fmt.Errorf("write state file: %w", err))
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return errors.StateUnavailable(f.path, fmt.Errorf("chmod state file: %w", err))
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return errors.StateUnavailable(f.path, fmt.Errorf("replace state file: %w", err))
	}
	return nil
}
