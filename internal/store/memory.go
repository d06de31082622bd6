package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Memory is an in-process backend for tests and dry runs.
type Memory struct {
	mu     sync.Mutex
	blobs  map[string][]byte
	events []CompletionEvent
	next   int64
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte), next: 1}
}

func (m *Memory) BlobRepo() BlobRepo   { return m }
func (m *Memory) EventRepo() EventRepo { return m }
func (m *Memory) Close() error         { return nil }

func (m *Memory) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(data), true, nil
}

func (m *Memory) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = slices.Clone(data)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

func (m *Memory) AppendCompletionEvent(_ context.Context, data CompletionEventData) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ev := range m.events {
		if ev.ID == data.ID {
			return 0, fmt.Errorf("%w: %q", ErrDuplicateEvent, data.ID)
		}
	}
	seq := m.next
	m.next++
	m.events = append(m.events, CompletionEvent{Sequence: seq, CompletionEventData: cloneEventData(data)})
	return seq, nil
}

func (m *Memory) QueryCompletionEvents(_ context.Context, opts QueryOpts) ([]CompletionEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []CompletionEvent
	for _, ev := range m.events {
		if !opts.matches(ev.Sequence, ev.Timestamp) {
			continue
		}
		result = append(result, CompletionEvent{Sequence: ev.Sequence, CompletionEventData: cloneEventData(ev.CompletionEventData)})
		if opts.Limit > 0 && len(result) == opts.Limit {
			break
		}
	}
	return result, nil
}

func (m *Memory) ReplaceCompletionEvents(_ context.Context, data []CompletionEventData) error {
	if err := uniqueEventIDs(data); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = make([]CompletionEvent, 0, len(data))
	for _, d := range data {
		m.events = append(m.events, CompletionEvent{Sequence: m.next, CompletionEventData: cloneEventData(d)})
		m.next++
	}
	return nil
}

func (m *Memory) ClearCompletionEvents(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
	return nil
}

func cloneEventData(d CompletionEventData) CompletionEventData {
	if d.Score != nil {
		v := *d.Score
		d.Score = &v
	}
	if d.TimeSpent != nil {
		v := *d.TimeSpent
		d.TimeSpent = &v
	}
	return d
}
