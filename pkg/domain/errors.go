package domain

import (
	"errors"
	"fmt"
)

// ErrNoSession is returned when an operation needs an open modal and none is open.
var ErrNoSession = errors.New("no modal session is open")

// ErrUnknownField is returned when an edit targets a field the active view does not declare.
var ErrUnknownField = errors.New("unknown form field")

// ErrValidation marks a local validation failure detected before dispatch.
var ErrValidation = errors.New("validation failed")

// ErrMissingContext marks a submission whose opener did not attach the required context.
var ErrMissingContext = errors.New("missing context data")

// ErrNotConfirmed is returned when the backend answered without confirming the mutation.
var ErrNotConfirmed = errors.New("mutation not confirmed by server")

// ErrBalanceMissing is returned when a donation succeeded without reporting the new balance.
var ErrBalanceMissing = errors.New("balance missing from response")

// ErrDuplicateID is returned when inserting an entity whose ID is already cached.
var ErrDuplicateID = errors.New("duplicate entity id")

// ErrNoCurrentUser is returned when patching the current user before one was loaded.
var ErrNoCurrentUser = errors.New("no current user")

// ErrAttemptNotFound is returned when a fallback attempt cannot be found.
var ErrAttemptNotFound = errors.New("attempt not found")

// ServerMessage returns the message the backend attached to a rejection, if any.
func ServerMessage(err error) string {
	var m interface{ ServerMessage() string }
	if errors.As(err, &m) {
		return m.ServerMessage()
	}
	return ""
}

// Noticer is implemented by errors that carry their own user-facing message.
type Noticer interface {
	Notice() string
}

// NoticeOf returns the user-facing message of err, or fallback.
func NoticeOf(err error, fallback string) string {
	var n Noticer
	if errors.As(err, &n) {
		if msg := n.Notice(); msg != "" {
			return msg
		}
	}
	return fallback
}

// ValidationError reports the first rule a form violated.
type ValidationError struct {
	Field   string
	Message string
	Missing bool // Context data rather than a form field.
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Notice implements Noticer.
func (e *ValidationError) Notice() string {
	return e.Message
}

// Is lets errors.Is match ErrValidation, and ErrMissingContext for context failures.
func (e *ValidationError) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	return e.Missing && target == ErrMissingContext
}

// Invalid builds a ValidationError for a form field.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Missing builds a ValidationError for absent context data.
func Missing(key, message string) error {
	return &ValidationError{Field: key, Message: message, Missing: true}
}

// UserFacingError pairs an underlying error with the message shown to the user.
type UserFacingError struct {
	Err     error
	Message string
}

func (e *UserFacingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *UserFacingError) Unwrap() error { return e.Err }

// Notice implements Noticer.
func (e *UserFacingError) Notice() string { return e.Message }
