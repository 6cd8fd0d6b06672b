package task

import (
	"strings"
	"testing"
)

func TestValidateDescription(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		present bool
		want    string
	}{
		{"valid description", "Fix the login bug", true, ""},
		{"absent field", nil, false, "Description is required"},
		{"explicit null", nil, true, "Description is required"},
		{"wrong type", float64(5), true, "Description must be a string"},
		{"empty string", "", true, "Description must not be empty"},
		{"whitespace only", "   \n  ", true, "Description must not be empty"},
		{"at the limit", strings.Repeat("a", MaxDescriptionLength), true, ""},
		{"over the limit", strings.Repeat("a", MaxDescriptionLength+1), true, "Description must be 1000 characters or less"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateDescription(tt.value, tt.present); got != tt.want {
				t.Errorf("ValidateDescription(%v, %v) = %q, want %q", tt.value, tt.present, got, tt.want)
			}
		})
	}
}

func TestValidateDescription_RuneCount(t *testing.T) {
	// Multibyte runes count as one character each.
	s := strings.Repeat("é", MaxDescriptionLength)
	if got := ValidateDescription(s, true); got != "" {
		t.Errorf("multibyte description at limit rejected: %q", got)
	}
}

func TestValidatePriority(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil is optional", nil, ""},
		{"P0", "P0", ""},
		{"P4", "P4", ""},
		{"unknown value", "P5", "Priority must be one of: P0, P1, P2, P3, P4"},
		{"lowercase rejected", "p1", "Priority must be one of: P0, P1, P2, P3, P4"},
		{"wrong type", float64(1), "Priority must be one of: P0, P1, P2, P3, P4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidatePriority(tt.value); got != tt.want {
				t.Errorf("ValidatePriority(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestValidateStatus(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil is optional", nil, ""},
		{"open", "open", ""},
		{"in-progress", "in-progress", ""},
		{"blocked", "blocked", ""},
		{"done", "done", ""},
		{"archived not settable", "archived", "Status must be one of: open, in-progress, blocked, done"},
		{"unknown value", "pending", "Status must be one of: open, in-progress, blocked, done"},
		{"wrong type", true, "Status must be one of: open, in-progress, blocked, done"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateStatus(tt.value); got != tt.want {
				t.Errorf("ValidateStatus(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestValidateDueDate(t *testing.T) {
	const formatMsg = "Due date must be in YYYY-MM-DD or ISO-8601 format"

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil is optional", nil, ""},
		{"date only", "2026-09-15", ""},
		{"full timestamp", "2026-09-15T10:30:00Z", ""},
		{"timestamp with offset", "2026-09-15T10:30:00+02:00", ""},
		{"timestamp with fraction", "2026-09-15T10:30:00.123Z", ""},
		{"leap day in leap year", "2024-02-29", ""},
		{"leap day outside leap year", "2023-02-29", "Invalid date value"},
		{"month overflow", "2024-02-30", "Invalid date value"},
		{"day zero", "2024-01-00", "Invalid date value"},
		{"month thirteen", "2024-13-01", "Invalid date value"},
		{"wrong format", "15/09/2026", formatMsg},
		{"partial date", "2026-09", formatMsg},
		{"wrong type", float64(20260915), formatMsg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateDueDate(tt.value); got != tt.want {
				t.Errorf("ValidateDueDate(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestValidateAssignee(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil is optional", nil, ""},
		{"empty string normalizes to null", "", ""},
		{"valid email", "dev@example.com", ""},
		{"missing at sign", "dev.example.com", "Assignee must be a valid email address"},
		{"missing domain dot", "dev@example", "Assignee must be a valid email address"},
		{"contains whitespace", "de v@example.com", "Assignee must be a valid email address"},
		{"wrong type", float64(1), "Assignee must be a string"},
		{"over length limit", strings.Repeat("a", MaxAssigneeLength) + "@example.com", "Assignee must be 255 characters or less"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateAssignee(tt.value); got != tt.want {
				t.Errorf("ValidateAssignee(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestValidateTags(t *testing.T) {
	const tagMsg = "Each tag must be lowercase alphanumeric (hyphens allowed) and at most 50 characters"

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil is optional", nil, ""},
		{"empty array", []any{}, ""},
		{"valid tags", []any{"backend", "api-v2", "p0"}, ""},
		{"typed string slice", []string{"backend"}, ""},
		{"too many tags", []any{"a", "b", "c", "d", "e", "f"}, "A maximum of 5 tags is allowed"},
		{"uppercase tag", []any{"Backend"}, tagMsg},
		{"tag with space", []any{"back end"}, tagMsg},
		{"tag with underscore", []any{"back_end"}, tagMsg},
		{"tag too long", []any{strings.Repeat("a", MaxTagLength+1)}, tagMsg},
		{"non-string element", []any{float64(1)}, tagMsg},
		{"not an array", "backend", "Tags must be an array"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateTags(tt.value); got != tt.want {
				t.Errorf("ValidateTags(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestValidateInput_CollectsAllErrors(t *testing.T) {
	fields := map[string]any{
		"priority": "P9",
		"status":   "archived",
		"dueDate":  "2024-02-30",
		"assignee": "not-an-email",
		"tags":     "backend",
	}

	errs := ValidateInput(fields)

	want := []string{
		"Description is required",
		"Priority must be one of: P0, P1, P2, P3, P4",
		"Status must be one of: open, in-progress, blocked, done",
		"Invalid date value",
		"Assignee must be a valid email address",
		"Tags must be an array",
	}
	if len(errs) != len(want) {
		t.Fatalf("got %d errors %v, want %d", len(errs), errs, len(want))
	}
	for i, msg := range want {
		if errs[i] != msg {
			t.Errorf("errs[%d] = %q, want %q", i, errs[i], msg)
		}
	}
}

func TestValidateInput_ValidBody(t *testing.T) {
	fields := map[string]any{
		"description": "Ship the release",
		"priority":    "P1",
		"status":      "in-progress",
		"dueDate":     "2026-12-01",
		"assignee":    "dev@example.com",
		"tags":        []any{"release"},
	}

	if errs := ValidateInput(fields); len(errs) != 0 {
		t.Errorf("valid input produced errors: %v", errs)
	}
}

func TestStatusSettable(t *testing.T) {
	if StatusArchived.Settable() {
		t.Error("archived must not be settable through input")
	}
	if !StatusArchived.Valid() {
		t.Error("archived is still a valid stored status")
	}
	for _, s := range []Status{StatusOpen, StatusInProgress, StatusBlocked, StatusDone} {
		if !s.Settable() {
			t.Errorf("%s should be settable", s)
		}
	}
}
