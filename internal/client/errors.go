package client

import (
	"fmt"

	"github.com/pkg/errors"
)

// Failure kinds; every error returned by Client matches exactly one of these
// with errors.Is.
var (
	ErrTransport = errors.New("transport failure")
	ErrStatus    = errors.New("unexpected status")
	ErrDecode    = errors.New("decode failure")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	ErrorCode  string //from the backend's error body, if it sent one
	Body       string
}

func (e *StatusError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("status code: %d; %s", e.StatusCode, e.ErrorCode)
	}
	return fmt.Sprintf("status code: %d; %s", e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}
