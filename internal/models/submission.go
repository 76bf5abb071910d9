package models

import (
	"time"

	"gorm.io/datatypes"
)

// Answer records the option a student picked for one question, keyed by the
// question's positional index. SelectedOption is nil when the question was
// left unanswered (e.g. padded in by a forced timeout submit).
type Answer struct {
	QuestionIndex  int     `json:"question_index"`
	SelectedOption *string `json:"selected_option"`
}

// Submission is a student's single graded attempt at an assessment. The
// composite unique index on (assessment_id, student_id) is what enforces the
// one-attempt rule; the insert either succeeds or fails with a duplicate-key
// error, there is no separate check-then-act window.
type Submission struct {
	ID             uint                        `gorm:"primaryKey" json:"id"`
	AssessmentID   uint                        `gorm:"not null;uniqueIndex:idx_submissions_assessment_student" json:"assessment_id"`
	StudentID      uint                        `gorm:"not null;uniqueIndex:idx_submissions_assessment_student" json:"student_id"`
	Answers        datatypes.JSONSlice[Answer] `gorm:"type:jsonb;not null" json:"answers"`
	Score          int                         `gorm:"not null" json:"score"`
	TotalQuestions int                         `gorm:"not null" json:"total_questions"`
	SubmittedAt    time.Time                   `gorm:"autoCreateTime" json:"submitted_at"`
	Assessment     Assessment                  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Student        User                        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// AnswerFor returns the recorded answer for the question at index, if any.
func (s Submission) AnswerFor(index int) (Answer, bool) {
	for _, answer := range s.Answers {
		if answer.QuestionIndex == index {
			return answer, true
		}
	}
	return Answer{}, false
}
