package service

import (
	"errors"
	"fmt"
)

var (
	// ErrAssessmentNotFound indicates the requested assessment does not exist.
	ErrAssessmentNotFound = errors.New("assessment not found")
	// ErrSubmissionNotFound indicates a submission could not be found.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrAssessmentLocked rejects edits once any student has attempted the
	// assessment; scores must keep matching what students were actually shown.
	ErrAssessmentLocked = errors.New("assessment has submissions and can no longer be edited")
	// ErrRoleMismatch rejects a login whose pre-selected role differs from
	// the role recorded at first signup.
	ErrRoleMismatch = errors.New("account already registered with a different role")
	// ErrRoleNotSelected rejects an identity-provider callback when no role
	// was stashed before delegating.
	ErrRoleNotSelected = errors.New("role selection is required before login")
	// ErrEmailTaken indicates the verified email is already bound to another
	// account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidIDToken indicates the Google ID token failed verification.
	ErrInvalidIDToken = errors.New("invalid identity token")
)

// AlreadyAttemptedError is the conflict raised when a student already has a
// submission for an assessment. It carries the existing submission's id so
// clients can redirect to the result view instead of dead-ending.
type AlreadyAttemptedError struct {
	SubmissionID uint
}

func (e *AlreadyAttemptedError) Error() string {
	return fmt.Sprintf("assessment already attempted (submission %d)", e.SubmissionID)
}

// DraftValidationError reports the first invalid question found in an
// assessment draft, in question order. Question is -1 for draft-level
// violations.
type DraftValidationError struct {
	Question int
	Reason   string
}

func (e *DraftValidationError) Error() string {
	if e.Question < 0 {
		return e.Reason
	}
	return fmt.Sprintf("question %d: %s", e.Question+1, e.Reason)
}
