package domain

import (
	"errors"
	"fmt"
)

// InputErrorKind names the specific local-input violation.
type InputErrorKind string

const (
	ContentFileMissing     InputErrorKind = "content_file_missing"
	ContentFileEmpty       InputErrorKind = "content_file_empty"
	ContentFileNotUTF8     InputErrorKind = "content_file_not_utf8"
	ImageFileMissing       InputErrorKind = "image_file_missing"
	ImageFileEmpty         InputErrorKind = "image_file_empty"
	UnsupportedImageFormat InputErrorKind = "unsupported_image_format"
)

// LocalInputError reports a pre-flight validation failure. It is always raised
// before any network call is made.
type LocalInputError struct {
	Kind InputErrorKind
	Path string
}

func (e *LocalInputError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Path, e.Kind)
}

// ErrSessionExpired signals that the platform answered with a login page
// instead of a structured response. The caller must refresh session material;
// nothing is retried automatically.
var ErrSessionExpired = errors.New("session expired: refresh authentication material")

// ErrAlreadyPublished signals a publish attempt against a draft that is
// already live. The pipeline never publishes twice.
var ErrAlreadyPublished = errors.New("draft already published")

// HTTPError covers transport failures, timeouts, and non-2xx statuses.
type HTTPError struct {
	Op      string
	Status  int
	Timeout bool
	Err     error
}

func (e *HTTPError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("%s: request timed out", e.Op)
	case e.Status != 0:
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *HTTPError) Unwrap() error { return e.Err }

// RemoteValidationError means the platform understood the request and rejected
// its content (non-zero envelope code).
type RemoteValidationError struct {
	Op      string
	Code    int
	Message string
}

func (e *RemoteValidationError) Error() string {
	return fmt.Sprintf("%s: platform rejected request (code %d): %s", e.Op, e.Code, e.Message)
}

// StateError is a programming-contract violation: a service was invoked with a
// draft whose state does not match the service precondition. No network call
// is made when it is returned.
type StateError struct {
	Op   string
	Have DraftState
	Want DraftState
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: draft in state %q, want %q", e.Op, e.Have, e.Want)
}
