package api

import (
	domain "github.com/example/task-service/domain/task"
)

// ErrorResponse is the HTTP response for errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the HTTP response for health checks.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ListTasksResponse is the HTTP response for listing tasks.
type ListTasksResponse struct {
	Tasks     []domain.Task `json:"tasks"`
	NextToken string        `json:"nextToken,omitempty"`
}

// BatchStatusResponse is the HTTP response for batch status updates.
type BatchStatusResponse struct {
	Updated int           `json:"updated"`
	Tasks   []domain.Task `json:"tasks"`
}

// StatsResponse is the HTTP response for aggregate statistics.
type StatsResponse struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
}
