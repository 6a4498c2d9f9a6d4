package query

import (
	"errors"
	"fmt"
)

// ValidationError reports a structurally invalid filter value. Terminal
// errors describe impossibilities no regeneration can fix (out-of-range
// coordinates, mismatched geo variants); they stop the generation retry loop
// immediately. All other validation errors are eligible for retry.
type ValidationError struct {
	Field    string
	Message  string
	Terminal bool
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func errorf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func terminalf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Terminal: true}
}

// IsTerminal reports whether err carries a terminal validation failure.
func IsTerminal(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr) && verr.Terminal
}

// TerminalMessage returns the message of the terminal validation failure in
// err's chain, or "" if there is none.
func TerminalMessage(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) && verr.Terminal {
		return verr.Error()
	}
	return ""
}
