package task

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in-progress"
	StatusBlocked    Status = "blocked"
	StatusDone       Status = "done"
	StatusArchived   Status = "archived"
)

// Statuses lists every valid status in a stable order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusBlocked, StatusDone, StatusArchived}

// Valid reports whether s is a member of the status enum.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusBlocked, StatusDone, StatusArchived:
		return true
	}
	return false
}

// Settable reports whether s may be assigned through a generic create or
// update. The archived state is only reachable through the dedicated
// archive operation.
func (s Status) Settable() bool {
	return s.Valid() && s != StatusArchived
}

// Priority represents the urgency of a task.
type Priority string

const (
	PriorityP0 Priority = "P0"
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
	PriorityP3 Priority = "P3"
	PriorityP4 Priority = "P4"
)

// DefaultPriority is assigned when a task is created without one.
const DefaultPriority = PriorityP2

// Valid reports whether p is a member of the priority enum.
func (p Priority) Valid() bool {
	switch p {
	case PriorityP0, PriorityP1, PriorityP2, PriorityP3, PriorityP4:
		return true
	}
	return false
}

// Task is the core domain entity representing a unit of engineering work.
// ID and CreatedAt are immutable once assigned; UpdatedAt is refreshed on
// every mutation. Timestamps are RFC 3339 strings so records round-trip
// through the store without losing their external representation.
type Task struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Assignee    *string  `json:"assignee"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
	DueDate     *string  `json:"dueDate"`
	Tags        []string `json:"tags"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	if t.Assignee != nil {
		v := *t.Assignee
		c.Assignee = &v
	}
	if t.DueDate != nil {
		v := *t.DueDate
		c.DueDate = &v
	}
	c.Tags = make([]string, len(t.Tags))
	copy(c.Tags, t.Tags)
	return &c
}
