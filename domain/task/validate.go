package task

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Field limits.
const (
	MaxDescriptionLength = 1000
	MaxAssigneeLength    = 255
	MaxTags              = 5
	MaxTagLength         = 50
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	tagPattern   = regexp.MustCompile(`^[a-z0-9-]+$`)
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})?)?$`)
)

// ValidateInput runs every field validator over a parsed request body and
// collects all failures in a stable order. It never short-circuits: a client
// sees every problem in one response. Field presence matters, so the input
// is the raw decoded JSON object rather than a typed struct.
func ValidateInput(fields map[string]any) []string {
	desc, descPresent := fields["description"]

	checks := []string{
		ValidateDescription(desc, descPresent),
		ValidatePriority(fields["priority"]),
		ValidateStatus(fields["status"]),
		ValidateDueDate(fields["dueDate"]),
		ValidateAssignee(fields["assignee"]),
		ValidateTags(fields["tags"]),
	}

	var errs []string
	for _, msg := range checks {
		if msg != "" {
			errs = append(errs, msg)
		}
	}
	return errs
}

// ValidateDescription checks the required description field. present is false
// when the field was absent from the request body entirely.
func ValidateDescription(v any, present bool) string {
	if !present || v == nil {
		return "Description is required"
	}
	s, ok := v.(string)
	if !ok {
		return "Description must be a string"
	}
	if strings.TrimSpace(s) == "" {
		return "Description must not be empty"
	}
	if utf8.RuneCountInString(s) > MaxDescriptionLength {
		return fmt.Sprintf("Description must be %d characters or less", MaxDescriptionLength)
	}
	return ""
}

// ValidatePriority checks an optional priority value against the enum.
func ValidatePriority(v any) string {
	if v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok || !Priority(s).Valid() {
		return "Priority must be one of: P0, P1, P2, P3, P4"
	}
	return ""
}

// ValidateStatus checks an optional status value against the input-settable
// enum. Archived is deliberately excluded; it is only reachable through the
// archive operation.
func ValidateStatus(v any) string {
	if v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok || !Status(s).Settable() {
		return "Status must be one of: open, in-progress, blocked, done"
	}
	return ""
}

// ValidateDueDate checks an optional due date. The value must match
// YYYY-MM-DD or a full ISO-8601 timestamp and denote a real calendar date.
func ValidateDueDate(v any) string {
	if v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok || !datePattern.MatchString(s) {
		return "Due date must be in YYYY-MM-DD or ISO-8601 format"
	}
	if !realCalendarDate(s) {
		return "Invalid date value"
	}
	return ""
}

// realCalendarDate rejects month/day overflow such as 2024-02-30 by
// round-tripping the date portion through time.Parse and comparing it back.
func realCalendarDate(s string) bool {
	datePart := s
	if len(datePart) > 10 {
		datePart = datePart[:10]
	}
	t, err := time.Parse("2006-01-02", datePart)
	if err != nil {
		return false
	}
	return t.Format("2006-01-02") == datePart
}

// ValidateAssignee checks an optional assignee value. The empty string is
// accepted here because it normalizes to null before persistence.
func ValidateAssignee(v any) string {
	if v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return "Assignee must be a string"
	}
	if s == "" {
		return ""
	}
	if utf8.RuneCountInString(s) > MaxAssigneeLength {
		return fmt.Sprintf("Assignee must be %d characters or less", MaxAssigneeLength)
	}
	if !emailPattern.MatchString(s) {
		return "Assignee must be a valid email address"
	}
	return ""
}

// ValidateTags checks an optional tags value: at most MaxTags entries, each
// a lowercase alphanumeric (hyphens allowed) string within MaxTagLength.
func ValidateTags(v any) string {
	if v == nil {
		return ""
	}

	var tags []any
	switch vv := v.(type) {
	case []any:
		tags = vv
	case []string:
		tags = make([]any, len(vv))
		for i, s := range vv {
			tags[i] = s
		}
	default:
		return "Tags must be an array"
	}

	if len(tags) > MaxTags {
		return fmt.Sprintf("A maximum of %d tags is allowed", MaxTags)
	}
	for _, tag := range tags {
		s, ok := tag.(string)
		if !ok || len(s) > MaxTagLength || !tagPattern.MatchString(s) {
			return fmt.Sprintf("Each tag must be lowercase alphanumeric (hyphens allowed) and at most %d characters", MaxTagLength)
		}
	}
	return ""
}
