// Package store persists small JSON documents under string keys.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned by Get for keys that were never set.
var ErrNotFound = errors.New("store: key not found")

// Keys used by the core.
const (
	KeyUnlocked  = "progress.unlocked"
	KeyHighScore = "progress.highscore"
	KeyProfile   = "ship.profile"
)

// Store is a key-value store. Values are JSON documents. Concurrent writers
// are not coordinated: the last write wins.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Close() error
}

// Memory is an in-process Store.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Close() error { return nil }

type namespaced struct {
	Store
	prefix string
}

// Namespace prefixes every key of s with prefix and a dot. Closing the
// namespaced store does not close s.
func Namespace(s Store, prefix string) Store {
	return namespaced{Store: s, prefix: prefix + "."}
}

func (n namespaced) Get(key string) ([]byte, error)     { return n.Store.Get(n.prefix + key) }
func (n namespaced) Set(key string, value []byte) error { return n.Store.Set(n.prefix+key, value) }
func (n namespaced) Close() error                       { return nil }

// LoadJSON decodes the value at key into dst. A missing or corrupt entry
// leaves dst untouched, so callers pre-fill dst with the default; corrupt
// entries are logged. It reports whether dst was loaded.
func LoadJSON(s Store, key string, dst any, log zerolog.Logger) bool {
	raw, err := s.Get(key)
	if errors.Is(err, ErrNotFound) {
		return false
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("store read failed, using default")
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("corrupt stored value, using default")
		return false
	}
	return true
}

// SaveJSON encodes v and writes it at key.
func SaveJSON(s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Set(key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
