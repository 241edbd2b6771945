package assessment

import (
	"errors"
	"fmt"
)

var (
	// ErrTestNotFound is returned for an unknown or unpublished test id.
	ErrTestNotFound = errors.New("test not found")

	// ErrQuestionNotFound is returned for a question id that does not exist
	// or does not belong to the session's test.
	ErrQuestionNotFound = errors.New("question not found")

	// ErrSessionNotFound is returned for an unknown session id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionTerminal is returned when answering a finished session.
	ErrSessionTerminal = errors.New("test already finished")

	// ErrConflict is returned by repositories when a conditional update
	// found the session no longer in progress.
	ErrConflict = errors.New("session was modified concurrently")
)

// AlreadyAttemptedError is returned by Start when the student already has a
// finished session for the test. Prior lets callers redirect to the result.
type AlreadyAttemptedError struct {
	Prior *Session
}

func (e *AlreadyAttemptedError) Error() string {
	return fmt.Sprintf("test %d already attempted (session %s, %s)", e.Prior.TestID, e.Prior.ID, e.Prior.Status)
}

// IsAlreadyAttempted reports whether err is an *AlreadyAttemptedError and
// returns the prior session.
func IsAlreadyAttempted(err error) (*Session, bool) {
	var ae *AlreadyAttemptedError
	if errors.As(err, &ae) {
		return ae.Prior, true
	}
	return nil, false
}
