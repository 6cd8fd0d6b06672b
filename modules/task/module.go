// Package task is the core domain module: one request-reply service per
// task operation, the list-query planner, and the lifecycle rules around
// archival and batch updates.
package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"golang.org/x/sync/singleflight"

	domain "github.com/example/task-service/domain/task"
	"github.com/example/task-service/events"
	"github.com/example/task-service/modules/store"
)

type eventPublisher = mono.EventBus

// Module provides task management services.
type Module struct {
	store         store.TaskStore
	storeProvider func() store.TaskStore
	eventBus      mono.EventBus
	statsGroup    singleflight.Group
}

var _ mono.Module = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)
var _ mono.EventEmitterModule = (*Module)(nil)
var _ TaskPort = (*Module)(nil)

// NewModule creates the task module. The store is wired by the composition
// root once the store module has started.
func NewModule() *Module {
	return &Module{}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "task"
}

// SetStore wires the persistence port directly.
func (m *Module) SetStore(s store.TaskStore) {
	m.store = s
}

// SetStoreProvider wires a lazy store lookup, resolved on Start. The store
// module only exposes its backend once it has started, which happens before
// this module starts because it is registered first.
func (m *Module) SetStoreProvider(provider func() store.TaskStore) {
	m.storeProvider = provider
}

// SetEventBus receives the event bus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module publishes.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskArchivedV1.ToBase(),
		events.TaskRestoredV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
		events.TaskBatchUpdatedV1.ToBase(),
	}
}

// RegisterServices exposes every task operation as an independent typed
// request-reply service.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	services := map[string]func() error{
		"create-task": func() error {
			return helper.RegisterTypedRequestReplyService(container, "create-task", json.Unmarshal, json.Marshal, m.rpcCreate)
		},
		"get-task": func() error {
			return helper.RegisterTypedRequestReplyService(container, "get-task", json.Unmarshal, json.Marshal, m.rpcGet)
		},
		"update-task": func() error {
			return helper.RegisterTypedRequestReplyService(container, "update-task", json.Unmarshal, json.Marshal, m.rpcUpdate)
		},
		"delete-task": func() error {
			return helper.RegisterTypedRequestReplyService(container, "delete-task", json.Unmarshal, json.Marshal, m.rpcDelete)
		},
		"list-tasks": func() error {
			return helper.RegisterTypedRequestReplyService(container, "list-tasks", json.Unmarshal, json.Marshal, m.rpcList)
		},
		"archive-task": func() error {
			return helper.RegisterTypedRequestReplyService(container, "archive-task", json.Unmarshal, json.Marshal, m.rpcArchive)
		},
		"restore-task": func() error {
			return helper.RegisterTypedRequestReplyService(container, "restore-task", json.Unmarshal, json.Marshal, m.rpcRestore)
		},
		"batch-update-status": func() error {
			return helper.RegisterTypedRequestReplyService(container, "batch-update-status", json.Unmarshal, json.Marshal, m.rpcBatchUpdateStatus)
		},
		"task-stats": func() error {
			return helper.RegisterTypedRequestReplyService(container, "task-stats", json.Unmarshal, json.Marshal, m.rpcStats)
		},
	}

	for name, register := range services {
		if err := register(); err != nil {
			return fmt.Errorf("failed to register %s service: %w", name, err)
		}
	}

	log.Printf("[task] Registered services: create-task, get-task, update-task, delete-task, list-tasks, archive-task, restore-task, batch-update-status, task-stats")
	return nil
}

// Start resolves and verifies wiring.
func (m *Module) Start(_ context.Context) error {
	if m.store == nil && m.storeProvider != nil {
		m.store = m.storeProvider()
	}
	if m.store == nil {
		return fmt.Errorf("task store not set")
	}
	if m.eventBus == nil {
		log.Println("[task] Warning: eventBus not set, events will not be published")
	}
	log.Println("[task] Module started")
	return nil
}

// Stop shuts the module down.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[task] Module stopped")
	return nil
}

// Request-reply shims over the TaskPort methods.

func (m *Module) rpcCreate(ctx context.Context, req CreateRequest, _ *mono.Msg) (domain.Task, error) {
	t, err := m.Create(ctx, req)
	if err != nil {
		return domain.Task{}, err
	}
	return *t, nil
}

func (m *Module) rpcGet(ctx context.Context, req GetRequest, _ *mono.Msg) (domain.Task, error) {
	t, err := m.Get(ctx, req.TaskID)
	if err != nil {
		return domain.Task{}, err
	}
	return *t, nil
}

func (m *Module) rpcUpdate(ctx context.Context, req UpdateRequest, _ *mono.Msg) (domain.Task, error) {
	t, err := m.Update(ctx, req)
	if err != nil {
		return domain.Task{}, err
	}
	return *t, nil
}

func (m *Module) rpcDelete(ctx context.Context, req DeleteRequest, _ *mono.Msg) (DeleteResponse, error) {
	if err := m.Delete(ctx, req.TaskID); err != nil {
		return DeleteResponse{Deleted: false}, err
	}
	return DeleteResponse{Deleted: true}, nil
}

func (m *Module) rpcList(ctx context.Context, req ListRequest, _ *mono.Msg) (ListResponse, error) {
	resp, err := m.List(ctx, req)
	if err != nil {
		return ListResponse{}, err
	}
	return *resp, nil
}

func (m *Module) rpcArchive(ctx context.Context, req ArchiveRequest, _ *mono.Msg) (domain.Task, error) {
	t, err := m.Archive(ctx, req.TaskID)
	if err != nil {
		return domain.Task{}, err
	}
	return *t, nil
}

func (m *Module) rpcRestore(ctx context.Context, req RestoreRequest, _ *mono.Msg) (domain.Task, error) {
	t, err := m.Restore(ctx, req.TaskID)
	if err != nil {
		return domain.Task{}, err
	}
	return *t, nil
}

func (m *Module) rpcBatchUpdateStatus(ctx context.Context, req BatchStatusRequest, _ *mono.Msg) (BatchStatusResponse, error) {
	resp, err := m.BatchUpdateStatus(ctx, req)
	if err != nil {
		return BatchStatusResponse{}, err
	}
	return *resp, nil
}

func (m *Module) rpcStats(ctx context.Context, req StatsRequest, _ *mono.Msg) (StatsResponse, error) {
	resp, err := m.Stats(ctx, req)
	if err != nil {
		return StatsResponse{}, err
	}
	return *resp, nil
}
