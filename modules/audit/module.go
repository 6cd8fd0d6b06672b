// Package audit keeps a bounded in-process trail of task lifecycle events.
package audit

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/example/task-service/events"
)

// maxEntries bounds the trail; the oldest entries are dropped first.
const maxEntries = 1000

// Entry is one recorded lifecycle event.
type Entry struct {
	TaskID    string    `json:"task_id"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
	Timestamp time.Time `json:"timestamp"`
}

// Module subscribes to task events and records them.
type Module struct {
	mu      sync.RWMutex
	entries []Entry
}

var _ mono.Module = (*Module)(nil)
var _ mono.EventConsumerModule = (*Module)(nil)

// NewModule creates the audit module.
func NewModule() *Module {
	return &Module{
		entries: make([]Entry, 0),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "audit"
}

// RegisterEventConsumers subscribes to every task lifecycle event.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskUpdatedV1, m.handleUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskArchivedV1, m.handleArchived, m); err != nil {
		return fmt.Errorf("failed to register TaskArchived consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskRestoredV1, m.handleRestored, m); err != nil {
		return fmt.Errorf("failed to register TaskRestored consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskBatchUpdatedV1, m.handleBatchUpdated, m); err != nil {
		return fmt.Errorf("failed to register TaskBatchUpdated consumer: %w", err)
	}

	log.Printf("[audit] Registered event consumers for task lifecycle events")
	return nil
}

func (m *Module) handleCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	m.record(event.TaskID, "created", fmt.Sprintf("priority %s", event.Priority))
	return nil
}

func (m *Module) handleUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	m.record(event.TaskID, "updated", fmt.Sprintf("status %s", event.Status))
	return nil
}

func (m *Module) handleArchived(_ context.Context, event events.TaskArchivedEvent, _ *mono.Msg) error {
	m.record(event.TaskID, "archived", "")
	return nil
}

func (m *Module) handleRestored(_ context.Context, event events.TaskRestoredEvent, _ *mono.Msg) error {
	m.record(event.TaskID, "restored", "")
	return nil
}

func (m *Module) handleDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.record(event.TaskID, "deleted", "")
	return nil
}

func (m *Module) handleBatchUpdated(_ context.Context, event events.TaskBatchUpdatedEvent, _ *mono.Msg) error {
	m.record(strings.Join(event.TaskIDs, ","), "batch-updated", fmt.Sprintf("status %s", event.Status))
	return nil
}

func (m *Module) record(taskID, action, detail string) {
	log.Printf("[audit] Task %s: %s %s", taskID, action, detail)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, Entry{
		TaskID:    taskID,
		Action:    action,
		Detail:    detail,
		Timestamp: time.Now(),
	})
	if len(m.entries) > maxEntries {
		m.entries = m.entries[len(m.entries)-maxEntries:]
	}
}

// Entries returns a copy of the recorded trail.
func (m *Module) Entries() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Entry, len(m.entries))
	copy(result, m.entries)
	return result
}

// Start begins listening for events.
func (m *Module) Start(_ context.Context) error {
	log.Println("[audit] Module started - recording task lifecycle events")
	return nil
}

// Stop shuts the module down.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[audit] Module stopped")
	return nil
}
