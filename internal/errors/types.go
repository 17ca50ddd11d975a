package errors

import (
	"fmt"
	"log/slog"
	"sort"
)

// ErrorType is the category an AppError falls into. Transports map it to
// exit codes and HTTP statuses.
type ErrorType int

const (
	ErrorTypeValidation ErrorType = iota
	ErrorTypeNotFound
	ErrorTypeDatabase
	ErrorTypeInvalidInput
	ErrorTypeTimeout
	ErrorTypePermission
	ErrorTypeConflict
)

var errorTypeNames = [...]string{
	ErrorTypeValidation:   "validation",
	ErrorTypeNotFound:     "not_found",
	ErrorTypeDatabase:     "database",
	ErrorTypeInvalidInput: "invalid_input",
	ErrorTypeTimeout:      "timeout",
	ErrorTypePermission:   "permission",
	ErrorTypeConflict:     "conflict",
}

// String returns the wire name of the type, "unknown" outside the set.
func (et ErrorType) String() string {
	if et < 0 || int(et) >= len(errorTypeNames) {
		return "unknown"
	}
	return errorTypeNames[et]
}

// AppError is the structured error returned across package boundaries.
// Context carries identifiers (entry id, field, resource) for logs.
type AppError struct {
	Type    ErrorType
	Message string
	Code    string
	Cause   error
	Context map[string]interface{}
}

func (e *AppError) Error() string {
	msg := e.Type.String() + ": " + e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (caused by: %v)", msg, e.Cause)
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another *AppError with the same type and code, so callers can
// test against a template value with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && e.Type == t.Type && e.Code == t.Code
}

// IsType reports whether the error belongs to errorType.
func (e *AppError) IsType(errorType ErrorType) bool {
	return e.Type == errorType
}

// WithContext attaches a key/value and returns e for chaining.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// GetContext looks up a value set with WithContext.
func (e *AppError) GetContext(key string) (interface{}, bool) {
	value, ok := e.Context[key]
	return value, ok
}

// LogValue renders the error as a slog group so slog.Any("error", err)
// keeps type, code and context as separate attributes.
func (e *AppError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("type", e.Type.String()),
		slog.String("code", e.Code),
		slog.String("message", e.Message),
	}
	if e.Cause != nil {
		attrs = append(attrs, slog.String("cause", e.Cause.Error()))
	}
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, e.Context[k]))
	}
	return slog.GroupValue(attrs...)
}
