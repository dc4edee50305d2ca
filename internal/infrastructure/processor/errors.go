package processor

import (
	"errors"
	"fmt"
)

// ProcessorError is a non-2xx answer from the processor API.
type ProcessorError struct {
	Code       string
	Message    string
	StatusCode int
}

type errorResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("processor error [%s]: %s (status: %d)", e.Code, e.Message, e.StatusCode)
}

// IsServerSide reports whether the processor failed rather than rejected the request.
func (e *ProcessorError) IsServerSide() bool {
	return e.StatusCode >= 500
}

func IsProcessorError(err error) (*ProcessorError, bool) {
	var pErr *ProcessorError
	ok := errors.As(err, &pErr)
	return pErr, ok
}
