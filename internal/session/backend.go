package session

import (
	"context"
	"sync"
	"time"
)

// Backend is durable storage shared by every browser, keyed by client id.
type Backend interface {
	Get(ctx context.Context, clientID, key string) (string, bool, error)
	Set(ctx context.Context, clientID, key, value string) error
	Remove(ctx context.Context, clientID, key string) error
	// Purge drops entries last written before the given time.
	Purge(ctx context.Context, before time.Time) error
	Close() error
}

type scoped struct {
	b        Backend
	clientID string
}

// Scope narrows a Backend to one browser.
func Scope(b Backend, clientID string) Storage {
	return scoped{b: b, clientID: clientID}
}

func (s scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.b.Get(ctx, s.clientID, key)
}

func (s scoped) Set(ctx context.Context, key, value string) error {
	return s.b.Set(ctx, s.clientID, key, value)
}

func (s scoped) Remove(ctx context.Context, key string) error {
	return s.b.Remove(ctx, s.clientID, key)
}

type memEntry struct {
	value   string
	written time.Time
}

// Memory is an in-process Backend.
type Memory struct {
	mu   sync.Mutex
	data map[string]map[string]memEntry
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string]memEntry)}
}

func (m *Memory) Get(_ context.Context, clientID, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.data[clientID][key]
	return e.value, ok, nil
}

func (m *Memory) Set(_ context.Context, clientID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[clientID] == nil {
		m.data[clientID] = make(map[string]memEntry)
	}
	m.data[clientID][key] = memEntry{value: value, written: time.Now()}
	return nil
}

func (m *Memory) Remove(_ context.Context, clientID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data[clientID], key)
	return nil
}

func (m *Memory) Purge(_ context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, entries := range m.data {
		for key, e := range entries {
			if e.written.Before(before) {
				delete(entries, key)
			}
		}
		if len(entries) == 0 {
			delete(m.data, id)
		}
	}
	return nil
}

func (m *Memory) Close() error {
	return nil
}
