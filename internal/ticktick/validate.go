package ticktick

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Field length limits enforced before any mutating API call.
const (
	MaxTitleLength       = 500
	MaxContentLength     = 10000
	MaxProjectNameLength = 200
)

// isoLayouts are the ISO-8601 shapes accepted for start and due dates:
// plain date, date-time, and date-time with 'Z' or a numeric offset,
// optionally with millisecond precision. The API itself emits the
// last form (e.g. "2025-01-15T08:00:00.000+0000").
var isoLayouts = []string{
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseISOTime parses s against the accepted ISO-8601 layouts. Layouts
// without an offset are interpreted as UTC.
func ParseISOTime(s string) (time.Time, bool) {
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// notBlank rejects strings that are empty after trimming whitespace.
func notBlank(field string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}
}

// isoDate accepts the empty string or any of the accepted ISO layouts.
func isoDate(field string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		if _, ok := ParseISOTime(s); !ok {
			return fmt.Errorf("%s must be in ISO format ('YYYY-MM-DD', 'YYYY-MM-DDTHH:mm:ss', with 'Z' or a numeric offset), got %q", field, s)
		}
		return nil
	}
}

// asValidationError converts an ozzo validation failure into a typed
// *Error with the validation kind. nil stays nil.
func asValidationError(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindValidation, Message: err.Error()}
}

// ValidateTitle checks a task title: non-blank, at most MaxTitleLength
// characters.
func ValidateTitle(title string) error {
	return asValidationError(validation.Validate(title,
		validation.By(notBlank("task title")),
		validation.RuneLength(0, MaxTitleLength).Error(
			fmt.Sprintf("task title must be %d characters or less", MaxTitleLength)),
	))
}

// ValidateProjectName checks a project name: non-blank, at most
// MaxProjectNameLength characters.
func ValidateProjectName(name string) error {
	return asValidationError(validation.Validate(name,
		validation.By(notBlank("project name")),
		validation.RuneLength(0, MaxProjectNameLength).Error(
			fmt.Sprintf("project name must be %d characters or less", MaxProjectNameLength)),
	))
}

// ValidateContent checks optional task content. The empty string is
// valid.
func ValidateContent(content string) error {
	return asValidationError(validation.Validate(content,
		validation.RuneLength(0, MaxContentLength).Error(
			fmt.Sprintf("content must be %d characters or less", MaxContentLength)),
	))
}

// ValidatePriority checks that priority is one of the values TickTick
// accepts: 0 (None), 1 (Low), 3 (Medium) or 5 (High).
func ValidatePriority(priority int) error {
	return asValidationError(validation.Validate(priority,
		validation.In(PriorityNone, PriorityLow, PriorityMedium, PriorityHigh).Error(
			fmt.Sprintf("priority must be 0 (None), 1 (Low), 3 (Medium) or 5 (High), got %d", priority)),
	))
}

// ValidateDate checks an optional ISO-8601 date string. field names the
// offending field in the error message.
func ValidateDate(date, field string) error {
	return asValidationError(validation.Validate(date, validation.By(isoDate(field))))
}

// ValidateViewMode checks an optional project view mode.
func ValidateViewMode(viewMode string) error {
	if viewMode == "" {
		return nil
	}
	return asValidationError(validation.Validate(viewMode,
		validation.In(ViewModeList, ViewModeKanban, ViewModeTimeline).Error(
			fmt.Sprintf("view mode must be one of %s, %s or %s", ViewModeList, ViewModeKanban, ViewModeTimeline)),
	))
}

// validateTaskInput runs all field checks for a task creation payload.
// The first failing check wins; no network call happens on failure.
func validateTaskInput(input TaskInput) error {
	if err := ValidateTitle(input.Title); err != nil {
		return err
	}
	if err := ValidateContent(input.Content); err != nil {
		return err
	}
	if err := ValidatePriority(input.Priority); err != nil {
		return err
	}
	if err := ValidateDate(input.StartDate, "start date"); err != nil {
		return err
	}
	return ValidateDate(input.DueDate, "due date")
}
