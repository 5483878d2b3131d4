package store

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
)

// Memory is an in-process Documents used by tests and local runs without a
// database.
type Memory struct {
	mu   sync.Mutex
	docs map[string]map[string][]byte
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]map[string][]byte)}
}

// Get decodes the document into dst or returns ErrNotFound.
func (m *Memory) Get(_ context.Context, collection, id string, dst any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(collection, id, dst)
}

// Put creates or replaces the document.
func (m *Memory) Put(_ context.Context, collection, id string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.put(collection, id, v)
}

// QueryEmails returns the email of every document whose boolean field is
// true, ordered by id.
func (m *Memory) QueryEmails(_ context.Context, collection, field string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	emails := make([]string, 0)
	for _, id := range m.ids(collection) {
		var doc map[string]any
		if err := json.Unmarshal(m.docs[collection][id], &doc); err != nil {
			return nil, errors.Join(ErrDecode, err)
		}
		if flag, _ := doc[field].(bool); !flag {
			continue
		}
		if email, _ := doc["email"].(string); email != "" {
			emails = append(emails, email)
		}
	}
	return emails, nil
}

// Update loads, mutates and stores the document under the store lock.
func (m *Memory) Update(_ context.Context, collection, id string, dst any, fn func(exists bool) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.get(collection, id, dst)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if err := fn(err == nil); err != nil {
		return err
	}
	return m.put(collection, id, dst)
}

// List returns copies of every document of collection ordered by id.
func (m *Memory) List(_ context.Context, collection string) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Document, 0, len(m.docs[collection]))
	for _, id := range m.ids(collection) {
		out = append(out, Document{ID: id, Data: slices.Clone(m.docs[collection][id])})
	}
	return out, nil
}

// Delete removes the document or returns ErrNotFound.
func (m *Memory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[collection][id]; !ok {
		return ErrNotFound
	}
	delete(m.docs[collection], id)
	return nil
}

func (m *Memory) ids(collection string) []string {
	ids := make([]string, 0, len(m.docs[collection]))
	for id := range m.docs[collection] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (m *Memory) get(collection, id string, dst any) error {
	data, ok := m.docs[collection][id]
	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return errors.Join(ErrDecode, err)
	}
	return nil
}

func (m *Memory) put(collection, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Join(ErrEncode, err)
	}
	if m.docs[collection] == nil {
		m.docs[collection] = make(map[string][]byte)
	}
	m.docs[collection][id] = data
	return nil
}
