package api

import (
	"fmt"
	"math"
	"time"
	"unicode/utf8"
)

// MaxDescriptionLength is the longest description accepted, in characters.
const MaxDescriptionLength = 191

// dateLayouts are the accepted textual forms of an expense date.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ValidateCreateExpense checks a CreateExpenseRequest. All fields are
// required. It returns the parsed input, or an *APIError listing every
// failed field.
func ValidateCreateExpense(req *CreateExpenseRequest, now time.Time) (ExpenseInput, *APIError) {
	var in ExpenseInput
	var errs []FieldError

	if req.Description == nil {
		errs = append(errs, FieldError{Field: "description", Message: "description is required"})
	} else if d, fe := validateDescription(req.Description); fe != nil {
		errs = append(errs, *fe)
	} else {
		in.Description = d
	}

	if req.Value == nil {
		errs = append(errs, FieldError{Field: "value", Message: "value is required"})
	} else if v, fe := validateValue(req.Value); fe != nil {
		errs = append(errs, *fe)
	} else {
		in.Value = v
	}

	if req.Date == nil {
		errs = append(errs, FieldError{Field: "date", Message: "date is required"})
	} else if d, fe := validateDate(req.Date, now); fe != nil {
		errs = append(errs, *fe)
	} else {
		in.Date = d
	}

	if len(errs) > 0 {
		return ExpenseInput{}, NewValidationError(errs...)
	}
	return in, nil
}

// ValidateUpdateExpense checks an UpdateExpenseRequest. Absent fields are
// skipped; present fields follow the same rules as on create.
func ValidateUpdateExpense(req *UpdateExpenseRequest, now time.Time) (ExpensePatch, *APIError) {
	var p ExpensePatch
	var errs []FieldError

	if req.Description != nil {
		if d, fe := validateDescription(req.Description); fe != nil {
			errs = append(errs, *fe)
		} else {
			p.Description = &d
		}
	}

	if req.Value != nil {
		if v, fe := validateValue(req.Value); fe != nil {
			errs = append(errs, *fe)
		} else {
			p.Value = &v
		}
	}

	if req.Date != nil {
		if d, fe := validateDate(req.Date, now); fe != nil {
			errs = append(errs, *fe)
		} else {
			p.Date = &d
		}
	}

	if len(errs) > 0 {
		return ExpensePatch{}, NewValidationError(errs...)
	}
	return p, nil
}

func validateDescription(raw any) (string, *FieldError) {
	s, ok := raw.(string)
	if !ok {
		return "", &FieldError{Field: "description", Message: "description must be a string"}
	}
	if n := utf8.RuneCountInString(s); n < 1 || n > MaxDescriptionLength {
		return "", &FieldError{
			Field:   "description",
			Message: fmt.Sprintf("description must be between 1 and %d characters", MaxDescriptionLength),
		}
	}
	return s, nil
}

func validateValue(raw any) (float64, *FieldError) {
	v, ok := raw.(float64)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &FieldError{Field: "value", Message: "value must be a number"}
	}
	if v <= 0 {
		return 0, &FieldError{Field: "value", Message: "value must be a positive number"}
	}
	return v, nil
}

// validateDate accepts a date string in one of dateLayouts or a number of
// milliseconds since the Unix epoch. Dates after now are rejected.
func validateDate(raw any, now time.Time) (time.Time, *FieldError) {
	var d time.Time
	switch v := raw.(type) {
	case string:
		parsed, ok := parseDate(v)
		if !ok {
			return time.Time{}, &FieldError{Field: "date", Message: "date must be a valid date"}
		}
		d = parsed
	case float64:
		d = time.UnixMilli(int64(v)).UTC()
	default:
		return time.Time{}, &FieldError{Field: "date", Message: "date must be a valid date"}
	}

	if d.After(now) {
		return time.Time{}, &FieldError{Field: "date", Message: "date must not be in the future"}
	}
	return d, nil
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
