package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/acadex/acadex-api/internal/dto"
	"github.com/acadex/acadex-api/internal/models"
	"github.com/acadex/acadex-api/internal/policy"
	"github.com/acadex/acadex-api/internal/repository"
)

// AssessmentView is the closed role-shaped projection of one assessment.
// Exactly one of the two fields is set, depending on who asked.
type AssessmentView struct {
	Teacher *dto.TeacherAssessmentView
	Student *dto.StudentAssessmentView
}

// AssessmentService covers authoring and role-filtered reads of assessments.
type AssessmentService interface {
	Create(ctx context.Context, principal policy.Principal, draft dto.AssessmentDraft) (dto.TeacherAssessmentView, error)
	Update(ctx context.Context, principal policy.Principal, id uint, draft dto.AssessmentDraft) (dto.TeacherAssessmentView, error)
	Delete(ctx context.Context, principal policy.Principal, id uint) error
	ListOwned(ctx context.Context, principal policy.Principal) ([]dto.TeacherAssessmentView, error)
	GetForPrincipal(ctx context.Context, principal policy.Principal, id uint) (AssessmentView, error)
}

type assessmentService struct {
	assessments repository.AssessmentRepository
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
}

// NewAssessmentService builds a new assessment service.
func NewAssessmentService(assessments repository.AssessmentRepository, submissions repository.SubmissionRepository, validate *validator.Validate, logger zerolog.Logger) AssessmentService {
	return &assessmentService{
		assessments: assessments,
		submissions: submissions,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "assessment_service").Logger(),
	}
}

func (s *assessmentService) Create(ctx context.Context, principal policy.Principal, draft dto.AssessmentDraft) (dto.TeacherAssessmentView, error) {
	if err := policy.RequireRole(principal, models.RoleTeacher); err != nil {
		return dto.TeacherAssessmentView{}, err
	}

	questions, err := s.validateDraft(&draft)
	if err != nil {
		return dto.TeacherAssessmentView{}, err
	}

	assessment := models.Assessment{
		Title:        draft.Title,
		Description:  draft.Description,
		Questions:    questions,
		TimerMinutes: draft.TimerMinutes,
		CreatedByID:  principal.UserID,
	}

	if err := s.assessments.Create(ctx, &assessment); err != nil {
		return dto.TeacherAssessmentView{}, err
	}

	s.logger.Info().Uint("assessment_id", assessment.ID).Uint("teacher_id", principal.UserID).Msg("assessment created")

	return dto.NewTeacherAssessmentView(assessment), nil
}

func (s *assessmentService) Update(ctx context.Context, principal policy.Principal, id uint, draft dto.AssessmentDraft) (dto.TeacherAssessmentView, error) {
	assessment, err := s.loadOwned(ctx, principal, id)
	if err != nil {
		return dto.TeacherAssessmentView{}, err
	}

	questions, err := s.validateDraft(&draft)
	if err != nil {
		return dto.TeacherAssessmentView{}, err
	}

	count, err := s.submissions.CountByAssessment(ctx, id)
	if err != nil {
		return dto.TeacherAssessmentView{}, err
	}
	if count > 0 {
		return dto.TeacherAssessmentView{}, ErrAssessmentLocked
	}

	// Replace-all semantics: the draft is the new assessment, no field merge.
	assessment.Title = draft.Title
	assessment.Description = draft.Description
	assessment.Questions = questions
	assessment.TimerMinutes = draft.TimerMinutes

	if err := s.assessments.Update(ctx, &assessment); err != nil {
		return dto.TeacherAssessmentView{}, err
	}

	s.logger.Info().Uint("assessment_id", assessment.ID).Msg("assessment updated")

	return dto.NewTeacherAssessmentView(assessment), nil
}

func (s *assessmentService) Delete(ctx context.Context, principal policy.Principal, id uint) error {
	if _, err := s.loadOwned(ctx, principal, id); err != nil {
		return err
	}

	if err := s.assessments.DeleteCascade(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssessmentNotFound
		}
		return err
	}

	s.logger.Info().Uint("assessment_id", id).Msg("assessment and submissions deleted")
	return nil
}

func (s *assessmentService) ListOwned(ctx context.Context, principal policy.Principal) ([]dto.TeacherAssessmentView, error) {
	if err := policy.RequireRole(principal, models.RoleTeacher); err != nil {
		return nil, err
	}

	assessments, err := s.assessments.ListByTeacher(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	return dto.NewTeacherAssessmentViewSlice(assessments), nil
}

func (s *assessmentService) GetForPrincipal(ctx context.Context, principal policy.Principal, id uint) (AssessmentView, error) {
	if err := policy.RequireAuthenticated(principal); err != nil {
		return AssessmentView{}, err
	}

	assessment, err := s.assessments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AssessmentView{}, ErrAssessmentNotFound
		}
		return AssessmentView{}, err
	}

	if principal.Role == models.RoleTeacher {
		if !assessment.IsOwnedBy(principal.UserID) {
			return AssessmentView{}, policy.ErrForbidden
		}
		view := dto.NewTeacherAssessmentView(assessment)
		return AssessmentView{Teacher: &view}, nil
	}

	// The read-time existence check is a UX hint so the client can redirect
	// to results; the write-time unique constraint remains the actual guard.
	existing, err := s.submissions.GetByAssessmentAndStudent(ctx, id, principal.UserID)
	if err == nil {
		return AssessmentView{}, &AlreadyAttemptedError{SubmissionID: existing.ID}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return AssessmentView{}, err
	}

	view := dto.NewStudentAssessmentView(assessment)
	return AssessmentView{Student: &view}, nil
}

func (s *assessmentService) loadOwned(ctx context.Context, principal policy.Principal, id uint) (models.Assessment, error) {
	if err := policy.RequireRole(principal, models.RoleTeacher); err != nil {
		return models.Assessment{}, err
	}

	assessment, err := s.assessments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assessment{}, ErrAssessmentNotFound
		}
		return models.Assessment{}, err
	}

	if err := policy.RequireAssessmentOwner(principal, assessment); err != nil {
		return models.Assessment{}, err
	}

	return assessment, nil
}

// validateDraft runs struct-tag validation, then per-question checks in
// question order, reporting the first violation. Authored text passes through
// the HTML sanitizer; options and the correct answer are sanitized with the
// same policy so equality between them is preserved.
func (s *assessmentService) validateDraft(draft *dto.AssessmentDraft) ([]models.Question, error) {
	if err := s.validator.Struct(*draft); err != nil {
		return nil, err
	}

	if strings.TrimSpace(draft.Title) == "" {
		return nil, &DraftValidationError{Question: -1, Reason: "title must not be blank"}
	}

	draft.Title = s.sanitizer.Sanitize(draft.Title)
	draft.Description = s.sanitizer.Sanitize(draft.Description)

	questions := make([]models.Question, 0, len(draft.Questions))
	for i, q := range draft.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return nil, &DraftValidationError{Question: i, Reason: "question text must not be blank"}
		}

		options := make([]string, 0, len(q.Options))
		for _, option := range q.Options {
			options = append(options, s.sanitizer.Sanitize(option))
		}

		question := models.Question{
			Text:          s.sanitizer.Sanitize(q.Text),
			Options:       options,
			CorrectAnswer: s.sanitizer.Sanitize(q.CorrectAnswer),
		}

		if !question.DistinctOptions() {
			return nil, &DraftValidationError{Question: i, Reason: "options must be distinct"}
		}
		if !question.HasOption(question.CorrectAnswer) {
			return nil, &DraftValidationError{Question: i, Reason: "correct answer must match one of the options"}
		}

		questions = append(questions, question)
	}

	return questions, nil
}
