package dto

import (
	"time"

	"github.com/acadex/acadex-api/internal/models"
)

// AnswerInput is one (question index, selected option) pair from the attempt
// client. SelectedOption is nil for questions the student never answered; the
// forced timeout submit pads every unvisited index this way.
type AnswerInput struct {
	QuestionIndex  int     `json:"question_index"`
	SelectedOption *string `json:"selected_option"`
}

// SubmitRequest is the one-shot answer payload for an assessment.
type SubmitRequest struct {
	Answers []AnswerInput `json:"answers" validate:"required"`
}

// SubmitResponse reports the graded outcome of a submission.
type SubmitResponse struct {
	SubmissionID   uint `json:"submission_id"`
	Score          int  `json:"score"`
	TotalQuestions int  `json:"total_questions"`
}

// AssessmentLite summarizes an assessment inside submission listings.
type AssessmentLite struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	TimerMinutes int    `json:"timer_minutes"`
}

// MySubmissionResponse is one row of a student's own results listing.
type MySubmissionResponse struct {
	ID             uint           `json:"id"`
	Assessment     AssessmentLite `json:"assessment"`
	Score          int            `json:"score"`
	TotalQuestions int            `json:"total_questions"`
	SubmittedAt    time.Time      `json:"submitted_at"`
}

// QuestionResult joins one question with the student's selection after
// grading. This response is the only place a student ever sees correct
// answers, and only for their own submission.
type QuestionResult struct {
	QuestionIndex  int      `json:"question_index"`
	Text           string   `json:"text"`
	Options        []string `json:"options"`
	CorrectAnswer  string   `json:"correct_answer"`
	SelectedOption *string  `json:"selected_option"`
	IsCorrect      bool     `json:"is_correct"`
}

// SubmissionDetailResponse is the fully joined result view of one submission.
type SubmissionDetailResponse struct {
	SubmissionID   uint             `json:"submission_id"`
	AssessmentID   uint             `json:"assessment_id"`
	Title          string           `json:"title"`
	Score          int              `json:"score"`
	TotalQuestions int              `json:"total_questions"`
	SubmittedAt    time.Time        `json:"submitted_at"`
	Questions      []QuestionResult `json:"questions"`
}

// NewMySubmissionResponse converts a submission with its preloaded assessment.
func NewMySubmissionResponse(model models.Submission) MySubmissionResponse {
	return MySubmissionResponse{
		ID: model.ID,
		Assessment: AssessmentLite{
			ID:           model.Assessment.ID,
			Title:        model.Assessment.Title,
			Description:  model.Assessment.Description,
			TimerMinutes: model.Assessment.TimerMinutes,
		},
		Score:          model.Score,
		TotalQuestions: model.TotalQuestions,
		SubmittedAt:    model.SubmittedAt,
	}
}

// NewMySubmissionResponseSlice converts a slice of submissions into DTOs.
func NewMySubmissionResponseSlice(submissions []models.Submission) []MySubmissionResponse {
	responses := make([]MySubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewMySubmissionResponse(submission))
	}

	return responses
}

// NewSubmissionDetailResponse joins a submission with its assessment's full
// question data, marking each position correct or not.
func NewSubmissionDetailResponse(model models.Submission) SubmissionDetailResponse {
	questions := make([]QuestionResult, 0, len(model.Assessment.Questions))
	for i, question := range model.Assessment.Questions {
		result := QuestionResult{
			QuestionIndex: i,
			Text:          question.Text,
			Options:       question.Options,
			CorrectAnswer: question.CorrectAnswer,
		}
		if answer, ok := model.AnswerFor(i); ok && answer.SelectedOption != nil {
			result.SelectedOption = answer.SelectedOption
			result.IsCorrect = *answer.SelectedOption == question.CorrectAnswer
		}
		questions = append(questions, result)
	}

	return SubmissionDetailResponse{
		SubmissionID:   model.ID,
		AssessmentID:   model.AssessmentID,
		Title:          model.Assessment.Title,
		Score:          model.Score,
		TotalQuestions: model.TotalQuestions,
		SubmittedAt:    model.SubmittedAt,
		Questions:      questions,
	}
}
