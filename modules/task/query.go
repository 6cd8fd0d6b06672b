package task

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	domain "github.com/example/task-service/domain/task"
	"github.com/example/task-service/modules/store"
)

// Pagination limits for list queries.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// filters holds the validated list predicates.
type filters struct {
	assignee      string
	status        string
	priority      string
	dueDateBefore string
	tag           string
}

// List returns one page of tasks matching the request's filters.
//
// The strategy depends on filter cardinality. A single index-backed filter
// is served directly by its secondary index with the store enforcing the
// limit. With multiple predicates, the most selective index available
// (assignee, then status, then priority, falling back to a full scan) feeds
// an accumulation loop that post-filters each page until the limit is
// reached or the source runs out. Tag filtering is always a post-filter;
// no index exists for tags.
func (m *Module) List(ctx context.Context, req ListRequest) (*ListResponse, error) {
	f, limit, startKey, err := m.validateListRequest(req)
	if err != nil {
		return nil, err
	}

	field, value := pickIndex(f)
	residual := residualPredicates(f, field)

	fetch := func(key store.Key) (store.Page, error) {
		if field != "" {
			return m.store.QueryIndex(ctx, field, value, limit, key)
		}
		return m.store.Scan(ctx, limit, key)
	}

	if len(residual) == 0 {
		page, err := fetch(startKey)
		if err != nil {
			return nil, err
		}
		return toListResponse(page.Tasks, page.NextKey), nil
	}

	// Post-filter accumulation: pull pages from the source and keep the
	// matches until a full page is gathered or the source is exhausted.
	var matches []*domain.Task
	lastKey := startKey
	for {
		page, err := fetch(lastKey)
		if err != nil {
			return nil, err
		}
		for _, t := range page.Tasks {
			if matchesAll(t, residual) {
				matches = append(matches, t)
			}
		}
		lastKey = page.NextKey
		if len(matches) >= limit || lastKey == nil {
			break
		}
	}

	// The continuation token tracks the source's position as of the last
	// page consumed, and is only surfaced when a full page of matches came
	// back; a short page signals exhaustion even if the source technically
	// has further unfiltered pages.
	var nextKey store.Key
	if len(matches) >= limit {
		matches = matches[:limit]
		nextKey = lastKey
	}
	return toListResponse(matches, nextKey), nil
}

func toListResponse(tasks []*domain.Task, nextKey store.Key) *ListResponse {
	resp := &ListResponse{Tasks: make([]domain.Task, 0, len(tasks))}
	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, *t)
	}
	if nextKey != nil {
		resp.NextToken = store.EncodeToken(nextKey)
	}
	return resp
}

// validateListRequest checks every filter and pagination parameter,
// collecting schema failures the same way task validation does. Token
// failures deliberately collapse into one generic message.
func (m *Module) validateListRequest(req ListRequest) (filters, int, store.Key, error) {
	var msgs []string

	f := filters{
		assignee:      strings.TrimSpace(req.Assignee),
		status:        strings.TrimSpace(req.Status),
		priority:      strings.TrimSpace(req.Priority),
		dueDateBefore: strings.TrimSpace(req.DueDateBefore),
		tag:           strings.TrimSpace(req.Tag),
	}

	if f.status != "" && !domain.Status(f.status).Valid() {
		msgs = append(msgs, "Status filter must be one of: open, in-progress, blocked, done, archived")
	}
	if f.priority != "" && !domain.Priority(f.priority).Valid() {
		msgs = append(msgs, "Priority filter must be one of: P0, P1, P2, P3, P4")
	}
	if f.dueDateBefore != "" {
		if msg := domain.ValidateDueDate(f.dueDateBefore); msg != "" {
			msgs = append(msgs, "dueDateBefore must be a valid date")
		}
	}

	limit := DefaultListLimit
	if raw := strings.TrimSpace(req.Limit); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxListLimit {
			msgs = append(msgs, "Limit must be an integer between 1 and 100")
		} else {
			limit = n
		}
	}

	var startKey store.Key
	if req.NextToken != "" {
		if strings.TrimSpace(req.NextToken) == "" || !store.WellFormedToken(req.NextToken) {
			msgs = append(msgs, "Invalid nextToken parameter")
		} else {
			startKey, _ = store.DecodeToken(req.NextToken)
		}
	}

	if len(msgs) > 0 {
		return filters{}, 0, nil, domain.NewValidationError(msgs...)
	}
	return f, limit, startKey, nil
}

// pickIndex selects the most selective secondary index serving the filters,
// preferring assignee over status over priority. An empty field means no
// index applies and the planner falls back to a full scan.
func pickIndex(f filters) (store.IndexField, string) {
	switch {
	case f.assignee != "":
		return store.IndexAssignee, f.assignee
	case f.status != "":
		return store.IndexStatus, f.status
	case f.priority != "":
		return store.IndexPriority, f.priority
	}
	return "", ""
}

type predicate func(*domain.Task) bool

// residualPredicates returns the predicates not served by the chosen index.
func residualPredicates(f filters, indexed store.IndexField) []predicate {
	var preds []predicate
	if f.status != "" && indexed != store.IndexStatus {
		status := domain.Status(f.status)
		preds = append(preds, func(t *domain.Task) bool { return t.Status == status })
	}
	if f.priority != "" && indexed != store.IndexPriority {
		priority := domain.Priority(f.priority)
		preds = append(preds, func(t *domain.Task) bool { return t.Priority == priority })
	}
	if f.dueDateBefore != "" {
		bound := parseWhen(f.dueDateBefore)
		preds = append(preds, func(t *domain.Task) bool {
			if t.DueDate == nil {
				return false
			}
			return !parseWhen(*t.DueDate).After(bound)
		})
	}
	if f.tag != "" {
		tag := f.tag
		preds = append(preds, func(t *domain.Task) bool { return slices.Contains(t.Tags, tag) })
	}
	return preds
}

func matchesAll(t *domain.Task, preds []predicate) bool {
	for _, p := range preds {
		if !p(t) {
			return false
		}
	}
	return true
}

// parseWhen interprets a stored or filter date. A date-only value means
// midnight UTC; a timestamp is taken as written. Inputs reach this point
// already validated, so unparseable values collapse to the zero time.
func parseWhen(s string) time.Time {
	if len(s) == 10 {
		t, _ := time.Parse("2006-01-02", s)
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if len(s) >= 10 {
		t, _ := time.Parse("2006-01-02", s[:10])
		return t
	}
	return time.Time{}
}
