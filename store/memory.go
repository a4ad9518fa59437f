package store

import (
	"slices"
	"strings"
	"sync"
)

// MemStore keeps entries in a map. Nothing survives a restart.
type MemStore struct {
	mutex *sync.RWMutex
	db    map[string]Entry
}

func NewMemStore() MemStore {
	return MemStore{
		mutex: &sync.RWMutex{},
		db:    make(map[string]Entry),
	}
}

func (m MemStore) All(prefix string) ([]Entry, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	entries := make([]Entry, 0)
	for _, key := range m.sortedKeys(prefix) {
		entries = append(entries, m.db[key])
	}
	return entries, nil
}

func (m MemStore) Get(key string) (Entry, bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	entry, ok := m.db[key]
	return entry, ok, nil
}

func (m MemStore) Put(entry Entry) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	// stored bytes must not change under the caller's feet
	entry.Bytes = slices.Clone(entry.Bytes)
	if entry.Bytes == nil {
		entry.Bytes = []byte{}
	}
	m.db[entry.Key] = entry
	return nil
}

func (m MemStore) Purge(key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.db, key)
	return nil
}

func (m MemStore) Has(key string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	_, ok := m.db[key]
	return ok
}

func (m MemStore) Keys(prefix string, cb func(string)) error {
	m.mutex.RLock()
	keys := m.sortedKeys(prefix)
	m.mutex.RUnlock()
	for _, key := range keys {
		cb(key)
	}
	return nil
}

func (m MemStore) sortedKeys(prefix string) []string {
	keys := make([]string, 0)
	for key := range m.db {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys
}
