package audit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/example/task-service/events"
)

func TestHandlersRecordEntries(t *testing.T) {
	m := NewModule()
	ctx := context.Background()
	now := time.Now()

	if err := m.handleCreated(ctx, events.TaskCreatedEvent{TaskID: "t1", Priority: "P1", CreatedAt: now}, nil); err != nil {
		t.Fatalf("handleCreated failed: %v", err)
	}
	if err := m.handleUpdated(ctx, events.TaskUpdatedEvent{TaskID: "t1", Status: "done", UpdatedAt: now}, nil); err != nil {
		t.Fatalf("handleUpdated failed: %v", err)
	}
	if err := m.handleArchived(ctx, events.TaskArchivedEvent{TaskID: "t1", ArchivedAt: now}, nil); err != nil {
		t.Fatalf("handleArchived failed: %v", err)
	}
	if err := m.handleRestored(ctx, events.TaskRestoredEvent{TaskID: "t1", RestoredAt: now}, nil); err != nil {
		t.Fatalf("handleRestored failed: %v", err)
	}
	if err := m.handleDeleted(ctx, events.TaskDeletedEvent{TaskID: "t1", DeletedAt: now}, nil); err != nil {
		t.Fatalf("handleDeleted failed: %v", err)
	}
	if err := m.handleBatchUpdated(ctx, events.TaskBatchUpdatedEvent{TaskIDs: []string{"t1", "t2"}, Status: "blocked", UpdatedAt: now}, nil); err != nil {
		t.Fatalf("handleBatchUpdated failed: %v", err)
	}

	entries := m.Entries()
	if len(entries) != 6 {
		t.Fatalf("got %d entries, want 6", len(entries))
	}

	wantActions := []string{"created", "updated", "archived", "restored", "deleted", "batch-updated"}
	for i, action := range wantActions {
		if entries[i].Action != action {
			t.Errorf("entries[%d].Action = %q, want %q", i, entries[i].Action, action)
		}
	}
	if entries[0].Detail != "priority P1" {
		t.Errorf("created detail = %q", entries[0].Detail)
	}
	if entries[5].TaskID != "t1,t2" {
		t.Errorf("batch entry TaskID = %q", entries[5].TaskID)
	}
}

func TestTrailIsBounded(t *testing.T) {
	m := NewModule()

	for i := 0; i < maxEntries+10; i++ {
		m.record(fmt.Sprintf("t%d", i), "created", "")
	}

	entries := m.Entries()
	if len(entries) != maxEntries {
		t.Fatalf("got %d entries, want %d", len(entries), maxEntries)
	}
	// The oldest entries are dropped first.
	if entries[0].TaskID != "t10" {
		t.Errorf("entries[0].TaskID = %q, want t10", entries[0].TaskID)
	}
	if entries[len(entries)-1].TaskID != fmt.Sprintf("t%d", maxEntries+9) {
		t.Errorf("newest entry = %q", entries[len(entries)-1].TaskID)
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	m := NewModule()
	m.record("t1", "created", "")

	entries := m.Entries()
	entries[0].TaskID = "mutated"

	if m.Entries()[0].TaskID != "t1" {
		t.Error("Entries leaked internal state")
	}
}
