package workflow

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/chepyr/taskflow/internal/models"
	"github.com/chepyr/taskflow/internal/shared"
)

const (
	MinTitleLen       = 1
	MaxTitleLen       = 100
	MinDescriptionLen = 1
	MaxDescriptionLen = 250
)

// TaskInput is the full set of user-editable task fields. A nil DueDate
// means the field was not supplied.
type TaskInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Status      models.TaskStatus
}

// ValidateFields checks every field of in and reports all problems together
// as shared.ValidationErrors. Due dates are compared by calendar day against today.
func ValidateFields(in TaskInput, today time.Time) error {
	var errs shared.ValidationErrors

	if fe := checkLength("title", in.Title, MinTitleLen, MaxTitleLen); fe != nil {
		errs = append(errs, fe)
	}
	if fe := checkLength("description", in.Description, MinDescriptionLen, MaxDescriptionLen); fe != nil {
		errs = append(errs, fe)
	}
	if !in.Status.IsValid() {
		errs = append(errs, &shared.FieldError{Field: "status", Err: shared.ErrInvalidStatus})
	}

	switch {
	case in.DueDate == nil:
		errs = append(errs, &shared.FieldError{Field: "due_date", Err: shared.ErrMissingField})
	case models.TruncateDate(*in.DueDate).Before(models.TruncateDate(today)):
		errs = append(errs, &shared.FieldError{Field: "due_date", Err: shared.ErrPastDueDate})
	}

	return errs.OrNil()
}

// checkLength counts characters, not bytes. A value made only of
// whitespace is treated as empty.
func checkLength(field, value string, minLen, maxLen int) *shared.FieldError {
	if strings.TrimSpace(value) == "" {
		return &shared.FieldError{Field: field, Err: shared.ErrFieldTooShort, Limit: minLen}
	}
	n := utf8.RuneCountInString(value)
	switch {
	case n < minLen:
		return &shared.FieldError{Field: field, Err: shared.ErrFieldTooShort, Limit: minLen}
	case n > maxLen:
		return &shared.FieldError{Field: field, Err: shared.ErrFieldTooLong, Limit: maxLen}
	}
	return nil
}
