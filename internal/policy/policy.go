// Package policy holds the capability checks gating every assessment and
// submission operation. Each check is a pure predicate over an explicit
// principal value; nothing here reads ambient request state.
package policy

import (
	"errors"

	"github.com/acadex/acadex-api/internal/models"
)

// Principal is the authenticated actor behind a request.
type Principal struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
}

var (
	// ErrUnauthenticated signals the absence of a valid session (401-class).
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrForbidden signals a valid session with the wrong role or no
	// ownership of the target resource (403-class).
	ErrForbidden = errors.New("forbidden")
)

// IsAuthenticated reports whether the principal carries a verified identity.
func IsAuthenticated(p Principal) bool {
	return p.UserID != 0 && models.ValidRole(p.Role)
}

// RequireAuthenticated returns ErrUnauthenticated for an empty principal.
func RequireAuthenticated(p Principal) error {
	if !IsAuthenticated(p) {
		return ErrUnauthenticated
	}
	return nil
}

// RequireRole distinguishes a missing session from a role mismatch so callers
// can map the two to different HTTP statuses.
func RequireRole(p Principal, role string) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	if p.Role != role {
		return ErrForbidden
	}
	return nil
}

// RequireAssessmentOwner checks that the principal is the teacher who created
// the assessment.
func RequireAssessmentOwner(p Principal, assessment models.Assessment) error {
	if err := RequireRole(p, models.RoleTeacher); err != nil {
		return err
	}
	if !assessment.IsOwnedBy(p.UserID) {
		return ErrForbidden
	}
	return nil
}

// RequireSubmissionOwner checks that the principal is the student who made the
// submission.
func RequireSubmissionOwner(p Principal, submission models.Submission) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	if submission.StudentID != p.UserID {
		return ErrForbidden
	}
	return nil
}
