package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrGenerationFailed signals that the language model could not produce valid search parameters.
	ErrGenerationFailed = errors.New("parameter generation failed")
	// ErrInvalidQuery signals a structurally invalid filter object.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrUpstreamAPI signals a non-success response from the iDigBio search API.
	ErrUpstreamAPI = errors.New("iDigBio API error")
	// ErrUnknownEntrypoint signals a request for an operation the agent does not provide.
	ErrUnknownEntrypoint = errors.New("unknown entrypoint")
)

// GenerationError wraps ErrGenerationFailed with the retry outcome. Terminal
// failures carry the validation message that stopped the retry loop; exhausted
// runs carry a generic message naming the attempt count.
type GenerationError struct {
	Message  string
	Terminal bool
	Attempts int
}

func (e *GenerationError) Error() string { return e.Message }

func (e *GenerationError) Unwrap() error { return ErrGenerationFailed }

// NewTerminalGeneration creates a generation error for a terminal validation failure.
func NewTerminalGeneration(msg string, attempts int) error {
	return &GenerationError{Message: msg, Terminal: true, Attempts: attempts}
}

// NewExhaustedGeneration creates a generation error for an exhausted retry loop.
func NewExhaustedGeneration(attempts int) error {
	return &GenerationError{
		Message:  fmt.Sprintf("Error: AI failed to generate valid output after %d attempts.", attempts),
		Attempts: attempts,
	}
}

// GenerationMessage extracts the user-facing message from a generation
// failure. Classified failures carry their own message; anything else gets a
// generic one.
func GenerationMessage(err error) string {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Message
	}
	return "Error: AI failed to generate valid output."
}

// UpstreamError wraps ErrUpstreamAPI with the HTTP outcome of an iDigBio call.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Status     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s returned %s", ErrUpstreamAPI.Error(), e.Endpoint, e.Status)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstreamAPI }
