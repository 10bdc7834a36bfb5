package api

import (
	"fmt"
	"strings"
)

// ErrorType represents the category of an API error. It drives the HTTP
// status code and is not serialized.
type ErrorType string

const (
	ErrorTypeServerError     ErrorType = "server_error"
	ErrorTypeInvalidRequest  ErrorType = "invalid_request"
	ErrorTypeUnauthenticated ErrorType = "unauthenticated"
	ErrorTypeNotFound        ErrorType = "not_found"
	ErrorTypeTooManyRequests ErrorType = "too_many_requests"
)

// Numeric error codes carried in the "code" field of error bodies.
// Codes below 1000 mirror the HTTP status they are returned with.
const (
	CodeInvalidRequest  = 422
	CodeUnauthorized    = 401
	CodeTooManyRequests = 429
	CodeServerError     = 500

	CodeMissingEnvs     = 1001
	CodeExpenseNotFound = 3001
	CodeUserNotFound    = 4001
)

// Canonical messages for the coded errors.
const (
	MessageMissingEnvs     = "Missing some environment variables"
	MessageExpenseNotFound = "Expense not found"
	MessageUserNotFound    = "User not found"
	MessageUnauthorized    = "Unauthorized"
	MessageValidation      = "Validation failed"
)

// FieldError describes a single failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError represents a structured API error with a numeric code and message.
// Validation failures additionally list the offending fields.
type APIError struct {
	Type    ErrorType    `json:"-"`
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		fields := make([]string, 0, len(e.Errors))
		for _, fe := range e.Errors {
			fields = append(fields, fe.Field)
		}
		return fmt.Sprintf("%s: %s (fields: %s)", e.Type, e.Message, strings.Join(fields, ", "))
	}
	return fmt.Sprintf("%s: %s (code %d)", e.Type, e.Message, e.Code)
}

// NewValidationError creates an APIError for a request body that failed one
// or more validation rules.
func NewValidationError(errs ...FieldError) *APIError {
	return &APIError{
		Type:    ErrorTypeInvalidRequest,
		Code:    CodeInvalidRequest,
		Message: MessageValidation,
		Errors:  errs,
	}
}

// NewInvalidRequestError creates an APIError for a single invalid parameter.
func NewInvalidRequestError(field, message string) *APIError {
	return NewValidationError(FieldError{Field: field, Message: message})
}

// NewUserNotFoundError is returned for every failed login, whichever half of
// the credential was wrong.
func NewUserNotFoundError() *APIError {
	return &APIError{
		Type:    ErrorTypeUnauthenticated,
		Code:    CodeUserNotFound,
		Message: MessageUserNotFound,
	}
}

// NewUnauthorizedError creates an APIError for a missing or invalid token.
func NewUnauthorizedError() *APIError {
	return &APIError{
		Type:    ErrorTypeUnauthenticated,
		Code:    CodeUnauthorized,
		Message: MessageUnauthorized,
	}
}

// NewExpenseNotFoundError creates an APIError for an expense that does not
// exist or is not owned by the caller.
func NewExpenseNotFoundError() *APIError {
	return &APIError{
		Type:    ErrorTypeNotFound,
		Code:    CodeExpenseNotFound,
		Message: MessageExpenseNotFound,
	}
}

// NewServerError creates an APIError for internal server errors. The message
// is generic; details belong in the server log.
func NewServerError() *APIError {
	return &APIError{
		Type:    ErrorTypeServerError,
		Code:    CodeServerError,
		Message: "Internal server error",
	}
}

// NewTooManyRequestsError creates an APIError for rate limiting.
func NewTooManyRequestsError() *APIError {
	return &APIError{
		Type:    ErrorTypeTooManyRequests,
		Code:    CodeTooManyRequests,
		Message: "Rate limit exceeded",
	}
}
