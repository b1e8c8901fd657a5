package services

import (
	"errors"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// stageError tags a failure with a sentinel marker and stage context while
// keeping the operator-facing message recoverable on its own.
type stageError struct {
	marker  error
	detail  string
	message string
	err     error
}

func (e *stageError) Error() string {
	text := e.marker.Error() + ": " + e.detail
	if e.err != nil {
		text += ": " + e.err.Error()
	}
	return text
}

func (e *stageError) Unwrap() []error {
	if e.err != nil {
		return []error{e.marker, e.err}
	}
	return []error{e.marker}
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above. The message is what an operator or end user
// should see; stage and operation are diagnostic context.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	return &stageError{
		marker:  marker,
		detail:  buildDetail(stage, operation, message),
		message: strings.TrimSpace(message),
		err:     err,
	}
}

// UserMessage extracts the operator-facing message from a wrapped stage error.
// Falls back to the full error text when the error was not produced by Wrap or
// carried no message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var stageErr *stageError
	if errors.As(err, &stageErr) && stageErr.message != "" {
		return stageErr.message
	}
	return strings.TrimSpace(err.Error())
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
