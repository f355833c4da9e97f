// Durable key/value state that survives restarts.
// Same mechanics as a browser-local storage area: get/set/remove plus
// change notifications, backed by a single JSON file.

package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Well-known keys. Other packages read and write through these only.
const (
	KeyCursor      = "cursor"
	KeyPreferences = "preferences"
)

// Store is the persistence capability the run loop depends on.
type Store interface {
	// Get unmarshals the value under key into out.
	// Returns false when the key is absent.
	Get(key string, out any) (bool, error)

	// Set marshals value and persists it under key.
	Set(key string, value any) error

	// Remove deletes the key. Removing an absent key is not an error.
	Remove(key string) error

	// Watch registers fn to run after every change to key.
	Watch(key string, fn func())
}

type FileStore struct {
	mu       sync.Mutex
	filePath string
	state    map[string]json.RawMessage
	watchers map[string][]func()
}

// NewFileStore creates or loads the state file under dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	fs := &FileStore{
		filePath: filepath.Join(dir, "state.json"),
		state:    make(map[string]json.RawMessage),
		watchers: make(map[string][]func()),
	}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileStore) Get(key string, out any) (bool, error) {
	fs.mu.Lock()
	raw, ok := fs.state[key]
	fs.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("failed to decode %q: %w", key, err)
	}
	return true, nil
}

func (fs *FileStore) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}

	fs.mu.Lock()
	fs.state[key] = raw
	err = fs.save()
	fns := append([]func(){}, fs.watchers[key]...)
	fs.mu.Unlock()

	if err != nil {
		return err
	}
	for _, fn := range fns {
		fn()
	}
	return nil
}

func (fs *FileStore) Remove(key string) error {
	fs.mu.Lock()
	_, existed := fs.state[key]
	delete(fs.state, key)
	var err error
	if existed {
		err = fs.save()
	}
	fns := append([]func(){}, fs.watchers[key]...)
	fs.mu.Unlock()

	if err != nil {
		return err
	}
	if existed {
		for _, fn := range fns {
			fn()
		}
	}
	return nil
}

func (fs *FileStore) Watch(key string, fn func()) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.watchers[key] = append(fs.watchers[key], fn)
}

// load reads the state file into the in-memory map
func (fs *FileStore) load() error {
	data, err := os.ReadFile(fs.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read state file: %w", err)
	}
	if err := json.Unmarshal(data, &fs.state); err != nil {
		return fmt.Errorf("failed to parse state file: %w", err)
	}
	return nil
}

// save writes the whole map back to disk. Caller holds the mutex.
func (fs *FileStore) save() error {
	data, err := json.MarshalIndent(fs.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := os.WriteFile(fs.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}
