package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrPrecondition marks failures detected before any remote call is made
	ErrPrecondition = errors.New("precondition not met")

	// ErrReleaseCreation marks a rejected create-release call
	ErrReleaseCreation = errors.New("release creation failed")

	// ErrAssetUpload marks a rejected asset upload call
	ErrAssetUpload = errors.New("asset upload failed")
)

// PreconditionError reports a missing file, token or malformed input
type PreconditionError struct {
	Reason string
}

func NewPreconditionError(reason string) *PreconditionError {
	return &PreconditionError{Reason: reason}
}

func (e *PreconditionError) Error() string {
	return e.Reason
}

func (e *PreconditionError) Unwrap() error {
	return ErrPrecondition
}

// RemoteError reports a non-success response from the release host.
// Body is the raw response body.
type RemoteError struct {
	Op         error
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %d - %s", e.Op, e.StatusCode, e.Body)
}

func (e *RemoteError) Unwrap() error {
	return e.Op
}
