package dto

import (
	"time"

	"github.com/acadex/acadex-api/internal/models"
)

// QuestionDraft is one authored question inside an assessment draft.
type QuestionDraft struct {
	Text          string   `json:"text" validate:"required"`
	Options       []string `json:"options" validate:"required,min=2,dive,required"`
	CorrectAnswer string   `json:"correct_answer" validate:"required"`
}

// AssessmentDraft is the full-replace payload shared by create and update.
// There are no partial-field semantics: the draft either replaces the whole
// assessment or the operation fails.
type AssessmentDraft struct {
	Title        string          `json:"title" validate:"required"`
	Description  string          `json:"description"`
	Questions    []QuestionDraft `json:"questions" validate:"required,min=1,dive"`
	TimerMinutes int             `json:"timer_minutes" validate:"required,min=1"`
}

// TeacherQuestionView includes the correct answer; it is only ever produced
// for the owning teacher.
type TeacherQuestionView struct {
	Index         int      `json:"index"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// StudentQuestionView deliberately has no correct-answer field at all. The
// redaction lives in the type, not in call-site field clearing, so a partial
// serialization bug cannot leak grading data.
type StudentQuestionView struct {
	Index   int      `json:"index"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// TeacherAssessmentView is the owner-facing projection of an assessment.
type TeacherAssessmentView struct {
	ID           uint                  `json:"id"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Questions    []TeacherQuestionView `json:"questions"`
	TimerMinutes int                   `json:"timer_minutes"`
	CreatedByID  uint                  `json:"created_by_id"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// StudentAssessmentView is the attempt-facing projection of an assessment.
type StudentAssessmentView struct {
	ID           uint                  `json:"id"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Questions    []StudentQuestionView `json:"questions"`
	TimerMinutes int                   `json:"timer_minutes"`
}

// NewTeacherAssessmentView projects an assessment for its owning teacher.
func NewTeacherAssessmentView(model models.Assessment) TeacherAssessmentView {
	questions := make([]TeacherQuestionView, 0, len(model.Questions))
	for i, question := range model.Questions {
		questions = append(questions, TeacherQuestionView{
			Index:         i,
			Text:          question.Text,
			Options:       question.Options,
			CorrectAnswer: question.CorrectAnswer,
		})
	}

	return TeacherAssessmentView{
		ID:           model.ID,
		Title:        model.Title,
		Description:  model.Description,
		Questions:    questions,
		TimerMinutes: model.TimerMinutes,
		CreatedByID:  model.CreatedByID,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

// NewStudentAssessmentView projects an assessment for an attempting student.
func NewStudentAssessmentView(model models.Assessment) StudentAssessmentView {
	questions := make([]StudentQuestionView, 0, len(model.Questions))
	for i, question := range model.Questions {
		questions = append(questions, StudentQuestionView{
			Index:   i,
			Text:    question.Text,
			Options: question.Options,
		})
	}

	return StudentAssessmentView{
		ID:           model.ID,
		Title:        model.Title,
		Description:  model.Description,
		Questions:    questions,
		TimerMinutes: model.TimerMinutes,
	}
}

// NewTeacherAssessmentViewSlice converts a slice of models into owner views.
func NewTeacherAssessmentViewSlice(assessments []models.Assessment) []TeacherAssessmentView {
	views := make([]TeacherAssessmentView, 0, len(assessments))
	for _, assessment := range assessments {
		views = append(views, NewTeacherAssessmentView(assessment))
	}

	return views
}
