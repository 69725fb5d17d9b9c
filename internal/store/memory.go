package store

import "sync"

type memoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns a Store that lives only as long as the process.
func NewMemory() Store {
	return &jsonStore{kv: &memoryKV{data: make(map[string][]byte)}}
}

func (m *memoryKV) get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte{}, v...), nil
}

func (m *memoryKV) put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte{}, value...)
	return nil
}

func (m *memoryKV) del(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memoryKV) close() error { return nil }
