package store

import (
	"context"
	"sync"
)

// Memory is an in-process Store. Commit is atomic under a single lock.
type Memory struct {
	mu     sync.RWMutex
	data   map[string]map[string][]byte
	closed bool
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string][]byte)}
}

func (m *Memory) Load(ctx context.Context, collection string) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}

	out := make(map[string][]byte, len(m.data[collection]))
	for id, rec := range m.data[collection] {
		out[id] = clone(rec)
	}
	return out, nil
}

func (m *Memory) Get(ctx context.Context, collection, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}

	rec, ok := m.data[collection][id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return clone(rec), nil
}

func (m *Memory) Save(ctx context.Context, collection string, records map[string][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	fresh := make(map[string][]byte, len(records))
	for id, rec := range records {
		fresh[id] = clone(rec)
	}
	m.data[collection] = fresh
	return nil
}

func (m *Memory) Commit(ctx context.Context, writes ...Write) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	for _, w := range writes {
		coll, ok := m.data[w.Collection]
		if !ok {
			coll = make(map[string][]byte)
			m.data[w.Collection] = coll
		}
		if w.Delete {
			delete(coll, w.ID)
			continue
		}
		coll[w.ID] = clone(w.Record)
	}
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *Memory) HealthCheck(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	return ctx.Err()
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
