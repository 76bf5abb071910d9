package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Question is a multiple-choice question embedded in an assessment. Questions
// are not standalone entities; their identity is the positional index inside
// Assessment.Questions, which is fixed once submissions exist.
type Question struct {
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// HasOption reports whether answer byte-for-byte matches one of the options.
func (q Question) HasOption(answer string) bool {
	for _, option := range q.Options {
		if option == answer {
			return true
		}
	}
	return false
}

// DistinctOptions reports whether all options are pairwise distinct after
// trimming surrounding whitespace.
func (q Question) DistinctOptions() bool {
	seen := make(map[string]struct{}, len(q.Options))
	for _, option := range q.Options {
		trimmed := strings.TrimSpace(option)
		if _, dup := seen[trimmed]; dup {
			return false
		}
		seen[trimmed] = struct{}{}
	}
	return true
}

// Assessment is a timed multiple-choice quiz owned by exactly one teacher.
// The question list is stored as a JSONB document; questions have no rows of
// their own.
type Assessment struct {
	ID           uint                          `gorm:"primaryKey" json:"id"`
	Title        string                        `gorm:"size:255;not null" json:"title"`
	Description  string                        `gorm:"type:text" json:"description"`
	Questions    datatypes.JSONSlice[Question] `gorm:"type:jsonb;not null" json:"questions"`
	TimerMinutes int                           `gorm:"not null" json:"timer_minutes"`
	CreatedByID  uint                          `gorm:"not null;index" json:"created_by_id"`
	CreatedBy    User                          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time                     `json:"created_at"`
	UpdatedAt    time.Time                     `json:"updated_at"`
}

// IsOwnedBy reports whether the assessment belongs to the given user.
func (a Assessment) IsOwnedBy(userID uint) bool {
	return a.CreatedByID == userID
}

// AttemptDuration converts the configured timer into a duration.
func (a Assessment) AttemptDuration() time.Duration {
	return time.Duration(a.TimerMinutes) * time.Minute
}
