package api

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	domain "github.com/example/task-service/domain/task"
	taskmod "github.com/example/task-service/modules/task"
	"github.com/example/task-service/sanitize"
)

// setupRoutes configures all HTTP routes. The health endpoint is public;
// everything under /tasks sits behind rate limiting and API-key auth.
func (m *Module) setupRoutes(rateLimit fiber.Handler) {
	m.app.Get("/health", m.health)

	tasks := m.app.Group("/tasks", rateLimit, APIKeyMiddleware(m.apiKey))
	tasks.Post("/batch-status", m.batchUpdateStatus)
	tasks.Get("/stats", m.stats)
	tasks.Post("/", m.createTask)
	tasks.Get("/", m.listTasks)
	tasks.Get("/:id", m.getTask)
	tasks.Put("/:id", m.updateTask)
	tasks.Delete("/:id", m.deleteTask)
	tasks.Post("/:id/archive", m.archiveTask)
	tasks.Post("/:id/restore", m.restoreTask)
}

// health handles GET /health.
func (m *Module) health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Body guard errors. parseBody returns these instead of writing a response
// so handlers keep a single response-writing path; respondBodyError maps
// them to statuses.
var (
	errBodyTooLarge  = errors.New("request body exceeds the size limit")
	errForbiddenKeys = errors.New("request body contains forbidden keys")
	errMalformedBody = errors.New("request body is not valid JSON")
)

// parseBody guards and decodes a raw request body: size limit, pre-parse
// pollution scan, JSON decode, post-parse pollution walk, then
// control-character sanitization over every string value. The raw scan
// rejects forbidden keys before they are ever decoded; the walk after the
// decode catches spellings the raw scan cannot see, such as unicode-escaped
// key names.
func (m *Module) parseBody(c *fiber.Ctx) (map[string]any, error) {
	body := c.Body()

	if !sanitize.ValidBodySize(body) {
		return nil, errBodyTooLarge
	}
	if sanitize.ContainsPrototypePollutionKeys(string(body)) {
		return nil, errForbiddenKeys
	}

	if len(body) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, errMalformedBody
	}
	if sanitize.HasPollutedKeys(fields) {
		return nil, errForbiddenKeys
	}

	cleaned, _ := sanitize.StringFields(fields).(map[string]any)
	if cleaned == nil {
		cleaned = map[string]any{}
	}
	return cleaned, nil
}

// respondBodyError writes the response for a parseBody failure.
func respondBodyError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errBodyTooLarge):
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(ErrorResponse{
			Error:   "payload_too_large",
			Message: "Request body exceeds the maximum allowed size",
		})
	case errors.Is(err, errForbiddenKeys):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "Request body contains forbidden keys",
		})
	default:
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid JSON in request body",
		})
	}
}

// createTask handles POST /tasks.
func (m *Module) createTask(c *fiber.Ctx) error {
	fields, err := m.parseBody(c)
	if err != nil {
		return respondBodyError(c, err)
	}

	t, err := m.tasks.Create(c.UserContext(), taskmod.CreateRequest{Fields: fields})
	if err != nil {
		return m.respondError(c, err, false)
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

// getTask handles GET /tasks/:id.
func (m *Module) getTask(c *fiber.Ctx) error {
	taskID := c.Params("id")
	if taskID == "" {
		return missingTaskID(c)
	}

	t, err := m.tasks.Get(c.UserContext(), taskID)
	if err != nil {
		return m.respondError(c, err, true)
	}
	return c.JSON(t)
}

// listTasks handles GET /tasks.
func (m *Module) listTasks(c *fiber.Ctx) error {
	resp, err := m.tasks.List(c.UserContext(), taskmod.ListRequest{
		Assignee:      c.Query("assignee"),
		Status:        c.Query("status"),
		Priority:      c.Query("priority"),
		DueDateBefore: c.Query("dueDateBefore"),
		Tag:           c.Query("tag"),
		Limit:         c.Query("limit"),
		NextToken:     c.Query("nextToken"),
	})
	if err != nil {
		return m.respondError(c, err, true)
	}

	return c.JSON(ListTasksResponse{
		Tasks:     resp.Tasks,
		NextToken: resp.NextToken,
	})
}

// updateTask handles PUT /tasks/:id.
func (m *Module) updateTask(c *fiber.Ctx) error {
	taskID := c.Params("id")
	if taskID == "" {
		return missingTaskID(c)
	}

	fields, err := m.parseBody(c)
	if err != nil {
		return respondBodyError(c, err)
	}

	t, err := m.tasks.Update(c.UserContext(), taskmod.UpdateRequest{TaskID: taskID, Fields: fields})
	if err != nil {
		return m.respondError(c, err, false)
	}
	return c.JSON(t)
}

// deleteTask handles DELETE /tasks/:id.
func (m *Module) deleteTask(c *fiber.Ctx) error {
	taskID := c.Params("id")
	if taskID == "" {
		return missingTaskID(c)
	}

	if err := m.tasks.Delete(c.UserContext(), taskID); err != nil {
		return m.respondError(c, err, false)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// archiveTask handles POST /tasks/:id/archive.
func (m *Module) archiveTask(c *fiber.Ctx) error {
	taskID := c.Params("id")
	if taskID == "" {
		return missingTaskID(c)
	}

	t, err := m.tasks.Archive(c.UserContext(), taskID)
	if err != nil {
		return m.respondError(c, err, false)
	}
	return c.JSON(t)
}

// restoreTask handles POST /tasks/:id/restore.
func (m *Module) restoreTask(c *fiber.Ctx) error {
	taskID := c.Params("id")
	if taskID == "" {
		return missingTaskID(c)
	}

	t, err := m.tasks.Restore(c.UserContext(), taskID)
	if err != nil {
		return m.respondError(c, err, false)
	}
	return c.JSON(t)
}

// batchUpdateStatus handles POST /tasks/batch-status.
func (m *Module) batchUpdateStatus(c *fiber.Ctx) error {
	fields, err := m.parseBody(c)
	if err != nil {
		return respondBodyError(c, err)
	}

	req := taskmod.BatchStatusRequest{Status: fields["status"]}
	if ids, ok := fields["taskIds"].([]any); ok {
		req.TaskIDs = ids
	}

	resp, err := m.tasks.BatchUpdateStatus(c.UserContext(), req)
	if err != nil {
		return m.respondError(c, err, false)
	}
	return c.JSON(BatchStatusResponse{
		Updated: resp.Updated,
		Tasks:   resp.Tasks,
	})
}

// stats handles GET /tasks/stats.
func (m *Module) stats(c *fiber.Ctx) error {
	resp, err := m.tasks.Stats(c.UserContext(), taskmod.StatsRequest{
		Assignee: c.Query("assignee"),
	})
	if err != nil {
		return m.respondError(c, err, true)
	}
	return c.JSON(StatsResponse{
		Total:    resp.Total,
		ByStatus: resp.ByStatus,
	})
}

func missingTaskID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "validation_error",
		Message: "Task ID is required",
	})
}

// respondError maps domain errors onto HTTP statuses. Store failures on
// read paths report 503 so callers can retry; on mutations they surface as
// a generic server error. No internal detail leaks to the client.
func (m *Module) respondError(c *fiber.Ctx, err error, readOnly bool) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: verr.Error(),
		})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Task not found",
		})
	case errors.Is(err, domain.ErrAlreadyArchived):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "conflict",
			Message: "Task is already archived",
		})
	case errors.Is(err, domain.ErrNotArchived):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "conflict",
			Message: "Task is not archived",
		})
	case errors.Is(err, domain.ErrStoreUnavailable):
		if readOnly {
			return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
				Error:   "upstream_unavailable",
				Message: "The task store is temporarily unavailable",
			})
		}
		log.Printf("[api] Store error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "server_error",
			Message: "An unexpected error occurred",
		})
	default:
		log.Printf("[api] Unexpected error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "server_error",
			Message: "An unexpected error occurred",
		})
	}
}
