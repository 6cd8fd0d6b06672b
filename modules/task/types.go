package task

import (
	"context"

	domain "github.com/example/task-service/domain/task"
)

// CreateRequest carries the raw decoded request body for task creation.
// Fields stay untyped because field presence and explicit nulls are
// significant to validation.
type CreateRequest struct {
	Fields map[string]any `json:"fields"`
}

// GetRequest is the request for fetching a task.
type GetRequest struct {
	TaskID string `json:"task_id"`
}

// UpdateRequest carries a partial update. A key absent from Fields leaves
// the stored value untouched; a key present with a null value clears an
// optional field.
type UpdateRequest struct {
	TaskID string         `json:"task_id"`
	Fields map[string]any `json:"fields"`
}

// DeleteRequest is the request for hard-deleting a task.
type DeleteRequest struct {
	TaskID string `json:"task_id"`
}

// DeleteResponse is the response for a delete.
type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

// ArchiveRequest is the request for soft-deleting a task.
type ArchiveRequest struct {
	TaskID string `json:"task_id"`
}

// RestoreRequest is the request for reviving an archived task.
type RestoreRequest struct {
	TaskID string `json:"task_id"`
}

// ListRequest carries list filters and pagination parameters as raw query
// strings; validation and coercion happen in the service so every adapter
// gets identical behavior.
type ListRequest struct {
	Assignee      string `json:"assignee,omitempty"`
	Status        string `json:"status,omitempty"`
	Priority      string `json:"priority,omitempty"`
	DueDateBefore string `json:"due_date_before,omitempty"`
	Tag           string `json:"tag,omitempty"`
	Limit         string `json:"limit,omitempty"`
	NextToken     string `json:"next_token,omitempty"`
}

// ListResponse is one page of tasks. NextToken is empty when the listing is
// exhausted.
type ListResponse struct {
	Tasks     []domain.Task `json:"tasks"`
	NextToken string        `json:"next_token,omitempty"`
}

// BatchStatusRequest sets one status on a batch of tasks. Elements stay
// untyped so the service can report precise validation failures instead of
// a bare decode error.
type BatchStatusRequest struct {
	TaskIDs []any `json:"taskIds"`
	Status  any   `json:"status"`
}

// BatchStatusResponse reports the outcome of a batch status update.
type BatchStatusResponse struct {
	Updated int           `json:"updated"`
	Tasks   []domain.Task `json:"tasks"`
}

// StatsRequest asks for aggregate counts, optionally scoped to an assignee.
type StatsRequest struct {
	Assignee string `json:"assignee,omitempty"`
}

// StatsResponse is the aggregate view over the store.
type StatsResponse struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
}

// TaskPort is the contract driving adapters use to reach the core domain.
type TaskPort interface {
	Create(ctx context.Context, req CreateRequest) (*domain.Task, error)
	Get(ctx context.Context, taskID string) (*domain.Task, error)
	Update(ctx context.Context, req UpdateRequest) (*domain.Task, error)
	Delete(ctx context.Context, taskID string) error
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	Archive(ctx context.Context, taskID string) (*domain.Task, error)
	Restore(ctx context.Context, taskID string) (*domain.Task, error)
	BatchUpdateStatus(ctx context.Context, req BatchStatusRequest) (*BatchStatusResponse, error)
	Stats(ctx context.Context, req StatsRequest) (*StatsResponse, error)
}
