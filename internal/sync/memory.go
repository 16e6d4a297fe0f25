package sync

import (
	"context"
	"encoding/json"
	stdsync "sync"
)

// Memory is an in-process Replica. Two engines sharing one Memory behave
// like two devices behind the same account, which is what the convergence
// tests need.
type Memory struct {
	mu   stdsync.Mutex
	docs map[Collection]map[string]json.RawMessage
	subs map[Collection]map[int]func(Event)
	next int
}

// NewMemory returns an empty in-memory replica.
func NewMemory() *Memory {
	return &Memory{
		docs: map[Collection]map[string]json.RawMessage{},
		subs: map[Collection]map[int]func(Event){},
	}
}

func (m *Memory) GetAll(_ context.Context, col Collection, _ string) (map[string]json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := map[string]json.RawMessage{}
	for id, data := range m.docs[col] {
		out[id] = data
	}
	return out, nil
}

func (m *Memory) Put(_ context.Context, col Collection, _, id string, data json.RawMessage) error {
	m.mu.Lock()
	if m.docs[col] == nil {
		m.docs[col] = map[string]json.RawMessage{}
	}
	m.docs[col][id] = data
	fns := m.subscribers(col)
	m.mu.Unlock()

	for _, fn := range fns {
		fn(Event{Op: OpPut, ID: id, Data: data})
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, col Collection, _, id string) error {
	m.mu.Lock()
	delete(m.docs[col], id)
	fns := m.subscribers(col)
	m.mu.Unlock()

	for _, fn := range fns {
		fn(Event{Op: OpDelete, ID: id})
	}
	return nil
}

func (m *Memory) Subscribe(_ context.Context, col Collection, _ string, fn func(Event)) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.subs[col] == nil {
		m.subs[col] = map[int]func(Event){}
	}
	id := m.next
	m.next++
	m.subs[col][id] = fn

	return func() {
		m.mu.Lock()
		delete(m.subs[col], id)
		m.mu.Unlock()
	}, nil
}

// subscribers snapshots the callback list; callers invoke outside the lock.
func (m *Memory) subscribers(col Collection) []func(Event) {
	fns := make([]func(Event), 0, len(m.subs[col]))
	for _, fn := range m.subs[col] {
		fns = append(fns, fn)
	}
	return fns
}
