// Package store provides the driven adapter for task persistence: a
// key-value port with secondary-index queries, opaque continuation keys,
// and Redis, SQLite and in-memory implementations behind it.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	task "github.com/example/task-service/domain/task"
)

// IndexField names a secondary index maintained by every backend.
type IndexField string

const (
	IndexAssignee IndexField = "assignee"
	IndexStatus   IndexField = "status"
	IndexPriority IndexField = "priority"
)

// Key is an opaque continuation position within a paginated query. It holds
// the backend's JSON-encoded cursor and is only ever surfaced to clients
// through the token codec. A nil Key means "start from the beginning" when
// passed in and "exhausted" when returned.
type Key []byte

// Page is one paginated result slice.
type Page struct {
	Tasks   []*task.Task
	NextKey Key
}

// TaskStore is the persistence port for tasks. Implementations must return
// task.ErrNotFound for missing ids and wrap backend failures with
// task.ErrStoreUnavailable.
type TaskStore interface {
	Get(ctx context.Context, id string) (*task.Task, error)
	Put(ctx context.Context, t *task.Task) error
	Delete(ctx context.Context, id string) error

	// QueryIndex returns up to limit tasks whose field equals value,
	// resuming from startKey.
	QueryIndex(ctx context.Context, field IndexField, value string, limit int, startKey Key) (Page, error)

	// Scan returns up to limit tasks from the full store, resuming from
	// startKey.
	Scan(ctx context.Context, limit int, startKey Key) (Page, error)
}

// indexValue projects the indexed attribute out of a task. A nil assignee
// indexes as the empty string, which no valid filter can match.
func indexValue(t *task.Task, field IndexField) string {
	switch field {
	case IndexAssignee:
		if t.Assignee == nil {
			return ""
		}
		return *t.Assignee
	case IndexStatus:
		return string(t.Status)
	case IndexPriority:
		return string(t.Priority)
	}
	return ""
}

// keysetCursor is the shared continuation shape for backends that paginate
// by last-seen id in ascending id order.
type keysetCursor struct {
	ID string `json:"id"`
}

func encodeKeysetKey(lastID string) Key {
	raw, _ := json.Marshal(keysetCursor{ID: lastID})
	return Key(raw)
}

func decodeKeysetKey(k Key) (string, error) {
	if len(k) == 0 {
		return "", nil
	}
	var c keysetCursor
	if err := json.Unmarshal(k, &c); err != nil {
		return "", fmt.Errorf("malformed continuation key: %w", err)
	}
	return c.ID, nil
}
