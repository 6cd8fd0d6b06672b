package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	task "github.com/example/task-service/domain/task"
)

func newTask(id, description string, status task.Status) *task.Task {
	return &task.Task{
		ID:          id,
		Description: description,
		Priority:    task.DefaultPriority,
		Status:      status,
		CreatedAt:   "2026-01-01T00:00:00Z",
		UpdatedAt:   "2026-01-01T00:00:00Z",
	}
}

func TestMemoryStore_GetPutDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, task.ErrNotFound) {
		t.Errorf("Get on empty store: err = %v, want ErrNotFound", err)
	}

	tk := newTask("t1", "first", task.StatusOpen)
	if err := s.Put(ctx, tk); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := s.Get(ctx, "t1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Description != "first" {
		t.Errorf("Description = %q, want first", got.Description)
	}

	// Stored record is isolated from caller mutation.
	got.Description = "mutated"
	again, _ := s.Get(ctx, "t1")
	if again.Description != "first" {
		t.Error("store leaked a shared reference")
	}

	// Put is an upsert.
	tk2 := newTask("t1", "second", task.StatusDone)
	if err := s.Put(ctx, tk2); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	again, _ = s.Get(ctx, "t1")
	if again.Description != "second" || again.Status != task.StatusDone {
		t.Errorf("upsert not applied: %+v", again)
	}

	if err := s.Delete(ctx, "t1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete(ctx, "t1"); !errors.Is(err, task.ErrNotFound) {
		t.Errorf("double delete: err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_QueryIndex(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	alice := "alice@example.com"
	bob := "bob@example.com"

	a1 := newTask("a1", "one", task.StatusOpen)
	a1.Assignee = &alice
	a2 := newTask("a2", "two", task.StatusDone)
	a2.Assignee = &alice
	b1 := newTask("b1", "three", task.StatusOpen)
	b1.Assignee = &bob

	for _, tk := range []*task.Task{a1, a2, b1} {
		if err := s.Put(ctx, tk); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	page, err := s.QueryIndex(ctx, IndexAssignee, alice, 10, nil)
	if err != nil {
		t.Fatalf("QueryIndex failed: %v", err)
	}
	if len(page.Tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(page.Tasks))
	}
	if page.Tasks[0].ID != "a1" || page.Tasks[1].ID != "a2" {
		t.Errorf("unexpected order: %s, %s", page.Tasks[0].ID, page.Tasks[1].ID)
	}
	if page.NextKey != nil {
		t.Error("exhausted query returned a continuation key")
	}

	page, err = s.QueryIndex(ctx, IndexStatus, string(task.StatusOpen), 10, nil)
	if err != nil {
		t.Fatalf("QueryIndex by status failed: %v", err)
	}
	if len(page.Tasks) != 2 {
		t.Errorf("status index got %d tasks, want 2", len(page.Tasks))
	}

	// Unassigned tasks never match an assignee filter.
	page, err = s.QueryIndex(ctx, IndexAssignee, "nobody@example.com", 10, nil)
	if err != nil {
		t.Fatalf("QueryIndex failed: %v", err)
	}
	if len(page.Tasks) != 0 {
		t.Errorf("got %d tasks for unknown assignee, want 0", len(page.Tasks))
	}
}

func TestMemoryStore_ScanPagination(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for i := 0; i < 5; i++ {
		tk := newTask(fmt.Sprintf("t%d", i), "task", task.StatusOpen)
		if err := s.Put(ctx, tk); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	var seen []string
	var key Key
	pages := 0
	for {
		page, err := s.Scan(ctx, 2, key)
		if err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		for _, tk := range page.Tasks {
			seen = append(seen, tk.ID)
		}
		pages++
		if page.NextKey == nil {
			break
		}
		key = page.NextKey
	}

	if pages != 3 {
		t.Errorf("walked %d pages, want 3", pages)
	}
	want := []string{"t0", "t1", "t2", "t3", "t4"}
	if len(seen) != len(want) {
		t.Fatalf("saw %d tasks %v, want %d", len(seen), seen, len(want))
	}
	for i, id := range want {
		if seen[i] != id {
			t.Errorf("seen[%d] = %s, want %s", i, seen[i], id)
		}
	}
}

func TestMemoryStore_NoKeyAtExactBoundary(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for i := 0; i < 2; i++ {
		if err := s.Put(ctx, newTask(fmt.Sprintf("t%d", i), "task", task.StatusOpen)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	// A page that consumes the final record must not hand out a key that
	// would lead to an empty follow-up page.
	page, err := s.Scan(ctx, 2, nil)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(page.Tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(page.Tasks))
	}
	if page.NextKey != nil {
		t.Error("got a continuation key with nothing left to read")
	}
}

func TestMemoryStore_MalformedStartKey(t *testing.T) {
	s := NewMemoryStore()

	if _, err := s.Scan(context.Background(), 10, Key("not json")); err == nil {
		t.Error("malformed start key accepted")
	}
}
