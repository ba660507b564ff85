package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError is returned when input is rejected before anything is written.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// TaskInput carries the user-editable fields of a task.
type TaskInput struct {
	Name        string  `json:"name" validate:"required,max=200"`
	StartDate   Date    `json:"start_date"`
	EndDate     Date    `json:"end_date"`
	Responsible string  `json:"responsible" validate:"required,max=200"`
	Status      Status  `json:"status" validate:"omitempty,oneof=ToDo InProgress Done"`
	Phase       *string `json:"phase"`
}

// Normalize trims text fields, defaults the status to ToDo and drops a blank phase.
func (in TaskInput) Normalize() TaskInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Responsible = strings.TrimSpace(in.Responsible)
	if in.Status == "" {
		in.Status = StatusToDo
	}
	if in.Phase != nil {
		phase := strings.TrimSpace(*in.Phase)
		if phase == "" {
			in.Phase = nil
		} else {
			in.Phase = &phase
		}
	}
	return in
}

// Validate normalizes the input and checks required fields and date order.
// The returned input is the normalized one.
func (in TaskInput) Validate() (TaskInput, error) {
	in = in.Normalize()

	if err := validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			switch fe.Tag() {
			case "required":
				return in, &ValidationError{Field: fe.Field(), Reason: "All fields are required."}
			case "oneof":
				return in, &ValidationError{Field: fe.Field(), Reason: fmt.Sprintf("Unknown status %q.", fe.Value())}
			default:
				return in, &ValidationError{Field: fe.Field(), Reason: fmt.Sprintf("Invalid value for %s.", fe.Field())}
			}
		}
		return in, &ValidationError{Reason: err.Error()}
	}

	if in.StartDate.IsZero() {
		return in, &ValidationError{Field: "start_date", Reason: "All fields are required."}
	}
	if in.EndDate.IsZero() {
		return in, &ValidationError{Field: "end_date", Reason: "All fields are required."}
	}
	if !inYearRange(in.StartDate) {
		return in, &ValidationError{Field: "start_date", Reason: yearRangeReason}
	}
	if !inYearRange(in.EndDate) {
		return in, &ValidationError{Field: "end_date", Reason: yearRangeReason}
	}
	if in.StartDate.After(in.EndDate.Time) {
		return in, &ValidationError{Field: "start_date", Reason: "Start date cannot be after end date."}
	}
	return in, nil
}

var yearRangeReason = fmt.Sprintf("Dates must be between %d and %d.", MinYear, MaxYear)

func inYearRange(d Date) bool {
	return d.Year() >= MinYear && d.Year() <= MaxYear
}

// Apply copies the input onto t, replacing every editable field.
func (in TaskInput) Apply(t *Task) {
	t.Name = in.Name
	t.StartDate = in.StartDate
	t.EndDate = in.EndDate
	t.Responsible = in.Responsible
	t.Status = in.Status
	t.Phase = in.Phase
}

// ValidateProjectName trims name and rejects an empty result.
func ValidateProjectName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &ValidationError{Field: "name", Reason: "Project name cannot be empty."}
	}
	return name, nil
}

// NormalizeShareCode trims and upper-cases a join code.
func NormalizeShareCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", &ValidationError{Field: "code", Reason: "Code cannot be empty."}
	}
	return code, nil
}

// ValidateStatus rejects anything outside the three board columns.
func ValidateStatus(s Status) error {
	if !s.Valid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("Unknown status %q.", s)}
	}
	return nil
}
