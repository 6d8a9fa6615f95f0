package store

import (
	"errors"
	"sync"
)

// ErrWriteFailed is the default error injected by MemoryKV.FailWrites.
var ErrWriteFailed = errors.New("storage quota exceeded")

// MemoryKV is an in-process Backend. Writes can be made to fail to exercise
// persistence error paths.
type MemoryKV struct {
	mu       sync.RWMutex
	data     map[string]string
	writeErr error
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.data[key] = value
	return nil
}

func (m *MemoryKV) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	delete(m.data, key)
	return nil
}

// FailWrites makes every subsequent Set and Remove return err.
// A nil err restores normal behavior.
func (m *MemoryKV) FailWrites(err error) {
	m.mu.Lock()
	m.writeErr = err
	m.mu.Unlock()
}

func (m *MemoryKV) Snapshot() (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out, nil
}

func (m *MemoryKV) Restore(pairs map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.data = make(map[string]string, len(pairs))
	for k, v := range pairs {
		m.data[k] = v
	}
	return nil
}
