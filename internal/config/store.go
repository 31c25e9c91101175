package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/renameio/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/muurk/polfunbox/internal/logging"
)

const storeVersion = 1

// Store is a flat string key-value store. Every Set or Remove is durable
// once it returns.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
	Keys() []string
	Clear() error
}

// storeDocument is the on-disk layout of a FileStore.
type storeDocument struct {
	Version int               `yaml:"version"`
	Values  map[string]string `yaml:"values"`
}

// FileStore keeps all values in memory and rewrites a YAML file on every
// change.
type FileStore struct {
	mu     sync.RWMutex
	path   string
	values map[string]string
}

// OpenFileStore loads path, or starts empty when the file does not exist yet.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, values: make(map[string]string)}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// OpenDefault opens the store in the user's config directory.
func OpenDefault() (*FileStore, error) {
	path, err := GetStorePath()
	if err != nil {
		return nil, fmt.Errorf("failed to get store path: %w", err)
	}
	return OpenFileStore(path)
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Reload replaces the in-memory values with the file contents, discarding
// nothing that was saved. A missing file reads as empty.
func (s *FileStore) Reload() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.mu.Lock()
		s.values = make(map[string]string)
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read store: %w", err)
	}

	var doc storeDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse store: %w", err)
	}
	if doc.Version != 0 && doc.Version != storeVersion {
		return fmt.Errorf("unsupported store version: %d (expected %d)", doc.Version, storeVersion)
	}
	if doc.Values == nil {
		doc.Values = make(map[string]string)
	}

	s.mu.Lock()
	s.values = doc.Values
	s.mu.Unlock()
	return nil
}

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.values[key]; ok && old == value {
		return nil
	}
	s.values[key] = value
	return s.saveLocked()
}

func (s *FileStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.saveLocked()
}

func (s *FileStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.values)
}

// Clear drops every value, including favorites and history.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string)
	return s.saveLocked()
}

func (s *FileStore) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(storeDocument{Version: storeVersion, Values: s.values})
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}

	header := []byte(`# polfun storage
# Session, settings, favorite channels and watch history.
# The IPTV password is stored in plain text; keep this file private.
#
# Location: ` + s.path + `

`)

	pending, err := renameio.NewPendingFile(s.path, renameio.WithPermissions(0600))
	if err != nil {
		return fmt.Errorf("failed to create pending store file: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			logging.Debug("cleanup pending store file", zap.Error(err))
		}
	}()

	if _, err := pending.Write(append(header, data...)); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("failed to save store: %w", err)
	}
	return nil
}

// MemStore is an in-memory Store for tests and headless runs.
type MemStore struct {
	mu     sync.RWMutex
	values map[string]string
	// FailWrites makes every mutation fail, to exercise storage errors.
	FailWrites error
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]string)}
}

func (m *MemStore) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.values[key] = value
	return nil
}

func (m *MemStore) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	delete(m.values, key)
	return nil
}

func (m *MemStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedKeys(m.values)
}

func (m *MemStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.values = make(map[string]string)
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
