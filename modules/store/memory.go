package store

import (
	"context"
	"sort"
	"sync"

	task "github.com/example/task-service/domain/task"
)

// MemoryStore is an in-process TaskStore keeping tasks in a map. It backs
// tests and the no-backend development mode. Pagination walks ids in
// ascending order with a keyset cursor, matching the SQLite backend.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]*task.Task
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks: make(map[string]*task.Task),
	}
}

// Get returns the task with the given id.
func (s *MemoryStore) Get(_ context.Context, id string) (*task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, found := s.tasks[id]
	if !found {
		return nil, task.ErrNotFound
	}
	return t.Clone(), nil
}

// Put stores the task, replacing any previous record with the same id.
func (s *MemoryStore) Put(_ context.Context, t *task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks[t.ID] = t.Clone()
	return nil
}

// Delete removes the task with the given id.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.tasks[id]; !found {
		return task.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

// QueryIndex returns up to limit tasks whose indexed field equals value.
func (s *MemoryStore) QueryIndex(_ context.Context, field IndexField, value string, limit int, startKey Key) (Page, error) {
	return s.page(limit, startKey, func(t *task.Task) bool {
		return indexValue(t, field) == value
	})
}

// Scan returns up to limit tasks from the whole store.
func (s *MemoryStore) Scan(_ context.Context, limit int, startKey Key) (Page, error) {
	return s.page(limit, startKey, func(*task.Task) bool { return true })
}

func (s *MemoryStore) page(limit int, startKey Key, match func(*task.Task) bool) (Page, error) {
	lastID, err := decodeKeysetKey(startKey)
	if err != nil {
		return Page{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.tasks))
	for id, t := range s.tasks {
		if id > lastID && match(t) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	var page Page
	for _, id := range ids {
		if len(page.Tasks) == limit {
			// At least one matching record remains past this page.
			page.NextKey = encodeKeysetKey(page.Tasks[limit-1].ID)
			return page, nil
		}
		page.Tasks = append(page.Tasks, s.tasks[id].Clone())
	}
	return page, nil
}
