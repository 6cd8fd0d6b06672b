package task

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	domain "github.com/example/task-service/domain/task"
	"github.com/example/task-service/events"
	"github.com/example/task-service/modules/store"
	"github.com/example/task-service/sanitize"
)

const statsPageSize = 100

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// cleanFields strips control characters from every string in the decoded
// body and additionally reduces the description to plain text. Sanitization
// runs before validation so length limits apply to what will be stored.
func cleanFields(fields map[string]any) map[string]any {
	if fields == nil {
		return map[string]any{}
	}
	cleaned, _ := sanitize.StringFields(fields).(map[string]any)
	if desc, ok := cleaned["description"].(string); ok {
		cleaned["description"] = sanitize.StripControlCharacters(sanitize.StripHTMLTags(desc))
	}
	return cleaned
}

// Create builds and persists a new task from a sanitized, validated body.
func (m *Module) Create(ctx context.Context, req CreateRequest) (*domain.Task, error) {
	fields := cleanFields(req.Fields)

	if msgs := domain.ValidateInput(fields); len(msgs) > 0 {
		return nil, domain.NewValidationError(msgs...)
	}

	now := timestamp()
	t := &domain.Task{
		ID:          uuid.New().String(),
		Description: fields["description"].(string),
		Priority:    domain.DefaultPriority,
		Status:      domain.StatusOpen,
		Tags:        []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if s, ok := fields["priority"].(string); ok {
		t.Priority = domain.Priority(s)
	}
	if s, ok := fields["status"].(string); ok {
		t.Status = domain.Status(s)
	}
	t.Assignee = optionalString(fields["assignee"])
	t.DueDate = optionalString(fields["dueDate"])
	if tags, ok := fields["tags"]; ok && tags != nil {
		t.Tags = toStringSlice(tags)
	}

	if err := m.store.Put(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}

	m.publishCreated(t)
	return t, nil
}

// Get returns a single task by id.
func (m *Module) Get(ctx context.Context, taskID string) (*domain.Task, error) {
	return m.store.Get(ctx, taskID)
}

// Update applies a partial update. Only keys present in the body change the
// record; an explicit null clears an optional field. The merged view is
// validated so a partial update cannot spuriously fail on fields it does
// not touch.
func (m *Module) Update(ctx context.Context, req UpdateRequest) (*domain.Task, error) {
	existing, err := m.store.Get(ctx, req.TaskID)
	if err != nil {
		return nil, err
	}

	fields := cleanFields(req.Fields)

	merged := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		merged[k] = v
	}
	if _, present := merged["description"]; !present {
		merged["description"] = existing.Description
	}
	if msgs := domain.ValidateInput(merged); len(msgs) > 0 {
		return nil, domain.NewValidationError(msgs...)
	}

	// Archived tasks leave that state only through restore.
	if _, present := fields["status"]; present && existing.Status == domain.StatusArchived {
		return nil, domain.ErrAlreadyArchived
	}

	updated := existing.Clone()
	if desc, present := fields["description"]; present {
		updated.Description = desc.(string)
	}
	if v, present := fields["assignee"]; present {
		updated.Assignee = optionalString(v)
	}
	if v, present := fields["priority"]; present && v != nil {
		updated.Priority = domain.Priority(v.(string))
	}
	if v, present := fields["status"]; present && v != nil {
		updated.Status = domain.Status(v.(string))
	}
	if v, present := fields["dueDate"]; present {
		updated.DueDate = optionalString(v)
	}
	if v, present := fields["tags"]; present {
		if v == nil {
			updated.Tags = []string{}
		} else {
			updated.Tags = toStringSlice(v)
		}
	}
	updated.UpdatedAt = timestamp()

	if err := m.store.Put(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	m.publish(func(bus eventPublisher) error {
		return events.TaskUpdatedV1.Publish(bus, events.TaskUpdatedEvent{
			TaskID:    updated.ID,
			Status:    string(updated.Status),
			UpdatedAt: time.Now(),
		}, nil)
	}, "TaskUpdated", updated.ID)

	return updated, nil
}

// Delete permanently removes a task.
func (m *Module) Delete(ctx context.Context, taskID string) error {
	if _, err := m.store.Get(ctx, taskID); err != nil {
		return err
	}
	if err := m.store.Delete(ctx, taskID); err != nil {
		return err
	}

	m.publish(func(bus eventPublisher) error {
		return events.TaskDeletedV1.Publish(bus, events.TaskDeletedEvent{
			TaskID:    taskID,
			DeletedAt: time.Now(),
		}, nil)
	}, "TaskDeleted", taskID)

	return nil
}

// Archive soft-deletes a task by moving it to the archived status.
func (m *Module) Archive(ctx context.Context, taskID string) (*domain.Task, error) {
	t, err := m.store.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.Status == domain.StatusArchived {
		return nil, domain.ErrAlreadyArchived
	}

	t.Status = domain.StatusArchived
	t.UpdatedAt = timestamp()
	if err := m.store.Put(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to archive task: %w", err)
	}

	m.publish(func(bus eventPublisher) error {
		return events.TaskArchivedV1.Publish(bus, events.TaskArchivedEvent{
			TaskID:     taskID,
			ArchivedAt: time.Now(),
		}, nil)
	}, "TaskArchived", taskID)

	return t, nil
}

// Restore revives an archived task into the open status.
func (m *Module) Restore(ctx context.Context, taskID string) (*domain.Task, error) {
	t, err := m.store.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if t.Status != domain.StatusArchived {
		return nil, domain.ErrNotArchived
	}

	t.Status = domain.StatusOpen
	t.UpdatedAt = timestamp()
	if err := m.store.Put(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to restore task: %w", err)
	}

	m.publish(func(bus eventPublisher) error {
		return events.TaskRestoredV1.Publish(bus, events.TaskRestoredEvent{
			TaskID:     taskID,
			RestoredAt: time.Now(),
		}, nil)
	}, "TaskRestored", taskID)

	return t, nil
}

// Batch size bounds for BatchUpdateStatus.
const (
	MinBatchSize = 1
	MaxBatchSize = 25
)

// BatchUpdateStatus sets one status on up to MaxBatchSize tasks. Every id is
// checked for existence before any write: a single missing id fails the
// whole batch with no writes issued. This is all-or-nothing ordering, not a
// transaction; a concurrent deleter can still slip between check and write.
func (m *Module) BatchUpdateStatus(ctx context.Context, req BatchStatusRequest) (*BatchStatusResponse, error) {
	var msgs []string
	if len(req.TaskIDs) < MinBatchSize || len(req.TaskIDs) > MaxBatchSize {
		msgs = append(msgs, fmt.Sprintf("taskIds must contain between %d and %d task ids", MinBatchSize, MaxBatchSize))
	}

	ids := make([]string, 0, len(req.TaskIDs))
	for _, v := range req.TaskIDs {
		s, ok := v.(string)
		if !ok || s == "" {
			msgs = append(msgs, "Each task id must be a non-empty string")
			break
		}
		ids = append(ids, s)
	}

	status, _ := req.Status.(string)
	if statusMsg := domain.ValidateStatus(req.Status); statusMsg != "" || req.Status == nil {
		if statusMsg == "" {
			statusMsg = "Status must be one of: open, in-progress, blocked, done"
		}
		msgs = append(msgs, statusMsg)
	}
	if len(msgs) > 0 {
		return nil, domain.NewValidationError(msgs...)
	}

	// Existence pass: nothing is written unless every id resolves.
	tasks := make([]*domain.Task, 0, len(ids))
	for _, id := range ids {
		t, err := m.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if t.Status == domain.StatusArchived {
			return nil, domain.ErrAlreadyArchived
		}
		tasks = append(tasks, t)
	}

	now := timestamp()
	updated := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		t.Status = domain.Status(status)
		t.UpdatedAt = now
		if err := m.store.Put(ctx, t); err != nil {
			return nil, fmt.Errorf("failed to update task %s: %w", t.ID, err)
		}
		updated = append(updated, *t)
	}

	m.publish(func(bus eventPublisher) error {
		return events.TaskBatchUpdatedV1.Publish(bus, events.TaskBatchUpdatedEvent{
			TaskIDs:   ids,
			Status:    status,
			UpdatedAt: time.Now(),
		}, nil)
	}, "TaskBatchUpdated", fmt.Sprintf("%d tasks", len(ids)))

	return &BatchStatusResponse{Updated: len(updated), Tasks: updated}, nil
}

// Stats reduces the store into a total count and per-status histogram,
// optionally scoped to one assignee. Concurrent identical requests share a
// single underlying scan.
func (m *Module) Stats(ctx context.Context, req StatsRequest) (*StatsResponse, error) {
	v, err, _ := m.statsGroup.Do("stats:"+req.Assignee, func() (any, error) {
		return m.computeStats(ctx, req.Assignee)
	})
	if err != nil {
		return nil, err
	}
	return v.(*StatsResponse), nil
}

func (m *Module) computeStats(ctx context.Context, assignee string) (*StatsResponse, error) {
	stats := &StatsResponse{ByStatus: make(map[string]int, len(domain.Statuses))}
	for _, s := range domain.Statuses {
		stats.ByStatus[string(s)] = 0
	}

	var startKey store.Key
	for {
		var page store.Page
		var err error
		if assignee != "" {
			page, err = m.store.QueryIndex(ctx, store.IndexAssignee, assignee, statsPageSize, startKey)
		} else {
			page, err = m.store.Scan(ctx, statsPageSize, startKey)
		}
		if err != nil {
			return nil, err
		}

		for _, t := range page.Tasks {
			stats.Total++
			stats.ByStatus[string(t.Status)]++
		}

		if page.NextKey == nil {
			return stats, nil
		}
		startKey = page.NextKey
	}
}

// optionalString converts a decoded JSON value into an optional field:
// null and the empty string normalize to nil.
func optionalString(v any) *string {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

func toStringSlice(v any) []string {
	switch vv := v.(type) {
	case []string:
		out := make([]string, len(vv))
		copy(out, vv)
		return out
	case []any:
		out := make([]string, 0, len(vv))
		for _, e := range vv {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}

func (m *Module) publishCreated(t *domain.Task) {
	m.publish(func(bus eventPublisher) error {
		e := events.TaskCreatedEvent{
			TaskID:      t.ID,
			Description: t.Description,
			Priority:    string(t.Priority),
			CreatedAt:   time.Now(),
		}
		if t.Assignee != nil {
			e.Assignee = *t.Assignee
		}
		return events.TaskCreatedV1.Publish(bus, e, nil)
	}, "TaskCreated", t.ID)
}

// publish emits an event when a bus is wired. Publishing is best-effort;
// failures are logged and never fail the operation.
func (m *Module) publish(fn func(eventPublisher) error, name, subject string) {
	if m.eventBus == nil {
		return
	}
	if err := fn(m.eventBus); err != nil {
		log.Printf("[task] Warning: failed to publish %s event for %s: %v", name, subject, err)
	}
}
