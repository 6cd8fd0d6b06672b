package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// TaskCreatedEvent is emitted when a new task is persisted.
type TaskCreatedEvent struct {
	TaskID      string    `json:"task_id"`
	Description string    `json:"description"`
	Assignee    string    `json:"assignee,omitempty"`
	Priority    string    `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskCreatedV1 is the typed event definition for task creation.
// Subject: events.task.v1.task-created
var TaskCreatedV1 = helper.EventDefinition[TaskCreatedEvent](
	"task", "TaskCreated", "v1",
)

// TaskUpdatedEvent is emitted when a task is changed through a generic update.
type TaskUpdatedEvent struct {
	TaskID    string    `json:"task_id"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskUpdatedV1 is the typed event definition for task updates.
// Subject: events.task.v1.task-updated
var TaskUpdatedV1 = helper.EventDefinition[TaskUpdatedEvent](
	"task", "TaskUpdated", "v1",
)

// TaskArchivedEvent is emitted when a task is soft-deleted.
type TaskArchivedEvent struct {
	TaskID     string    `json:"task_id"`
	ArchivedAt time.Time `json:"archived_at"`
}

// TaskArchivedV1 is the typed event definition for task archival.
// Subject: events.task.v1.task-archived
var TaskArchivedV1 = helper.EventDefinition[TaskArchivedEvent](
	"task", "TaskArchived", "v1",
)

// TaskRestoredEvent is emitted when an archived task is brought back.
type TaskRestoredEvent struct {
	TaskID     string    `json:"task_id"`
	RestoredAt time.Time `json:"restored_at"`
}

// TaskRestoredV1 is the typed event definition for task restoration.
// Subject: events.task.v1.task-restored
var TaskRestoredV1 = helper.EventDefinition[TaskRestoredEvent](
	"task", "TaskRestored", "v1",
)

// TaskDeletedEvent is emitted when a task is hard-deleted.
type TaskDeletedEvent struct {
	TaskID    string    `json:"task_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// TaskDeletedV1 is the typed event definition for task deletion.
// Subject: events.task.v1.task-deleted
var TaskDeletedV1 = helper.EventDefinition[TaskDeletedEvent](
	"task", "TaskDeleted", "v1",
)

// TaskBatchUpdatedEvent is emitted after a batch status update commits.
type TaskBatchUpdatedEvent struct {
	TaskIDs   []string  `json:"task_ids"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskBatchUpdatedV1 is the typed event definition for batch status updates.
// Subject: events.task.v1.task-batch-updated
var TaskBatchUpdatedV1 = helper.EventDefinition[TaskBatchUpdatedEvent](
	"task", "TaskBatchUpdated", "v1",
)
