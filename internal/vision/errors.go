package vision

import (
	"errors"
	"fmt"
)

// ErrEmptyImage is returned when Analyze is called without image bytes.
var ErrEmptyImage = errors.New("empty image")

// ServiceError is a non-success response from the vision service.
type ServiceError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *ServiceError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("vision service returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("vision service returned %d (%s): %s", e.StatusCode, e.Code, e.Message)
}
