package cli

import (
	"fmt"
	"log/slog"

	"task-tracker/internal/errors"
	"task-tracker/internal/logging"
	"task-tracker/internal/validation"
)

// Exit codes by error category
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitValidation = 2
	ExitNotFound   = 3
	ExitConflict   = 4
)

// ErrorHandler turns service errors into messages fit for a terminal and
// logs the ones that are not the user's fault.
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &ErrorHandler{logger: logger}
}

// Handle prefixes the user message with the failed operation.
func (eh *ErrorHandler) Handle(operation string, err error) error {
	if err == nil {
		return nil
	}
	err = validation.AsAppError(err)
	eh.log(operation, err)

	if _, ok := errors.AsAppError(err); ok {
		return &commandError{cause: err, msg: fmt.Sprintf("failed to %s: %s", operation, errors.GetUserMessage(err))}
	}
	return &commandError{cause: err, msg: fmt.Sprintf("failed to %s: %v", operation, err)}
}

// HandleSimple returns just the user message.
func (eh *ErrorHandler) HandleSimple(err error) error {
	if err == nil {
		return nil
	}
	err = validation.AsAppError(err)
	eh.log("", err)
	return &commandError{cause: err, msg: errors.GetUserMessage(err)}
}

func (eh *ErrorHandler) log(operation string, err error) {
	if !errors.ShouldLogError(err) {
		return
	}
	eh.logger.Error("command failed", slog.String("operation", operation), slog.Any("error", err))
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.IsValidation(err):
		return ExitValidation
	case errors.IsNotFound(err):
		return ExitNotFound
	case errors.IsConflict(err):
		return ExitConflict
	default:
		return ExitFailure
	}
}

// commandError keeps the typed cause reachable for ExitCode while
// printing the friendly message.
type commandError struct {
	cause error
	msg   string
}

func (e *commandError) Error() string { return e.msg }

func (e *commandError) Unwrap() error { return e.cause }
