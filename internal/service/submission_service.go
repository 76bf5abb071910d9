package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/acadex/acadex-api/internal/dto"
	"github.com/acadex/acadex-api/internal/models"
	"github.com/acadex/acadex-api/internal/observability"
	"github.com/acadex/acadex-api/internal/policy"
	"github.com/acadex/acadex-api/internal/repository"
)

// SubmissionService accepts, grades and serves student submissions.
type SubmissionService interface {
	Submit(ctx context.Context, principal policy.Principal, assessmentID uint, payload dto.SubmitRequest) (dto.SubmitResponse, error)
	ListMine(ctx context.Context, principal policy.Principal) ([]dto.MySubmissionResponse, error)
	GetDetail(ctx context.Context, principal policy.Principal, submissionID uint) (dto.SubmissionDetailResponse, error)
}

// submissionCreatedEvent is the payload published when an attempt is graded.
type submissionCreatedEvent struct {
	SubmissionID   uint      `json:"submission_id"`
	AssessmentID   uint      `json:"assessment_id"`
	StudentID      uint      `json:"student_id"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assessments repository.AssessmentRepository
	validator   *validator.Validate
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance. natsConn may
// be nil, in which case no events are published.
func NewSubmissionService(subRepo repository.SubmissionRepository, assessmentRepo repository.AssessmentRepository, validate *validator.Validate, natsConn *nats.Conn, natsSubject string, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: subRepo,
		assessments: assessmentRepo,
		validator:   validate,
		nats:        natsConn,
		natsSubject: natsSubject,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) Submit(ctx context.Context, principal policy.Principal, assessmentID uint, payload dto.SubmitRequest) (dto.SubmitResponse, error) {
	if err := policy.RequireRole(principal, models.RoleStudent); err != nil {
		return dto.SubmitResponse{}, err
	}

	if err := s.validator.Struct(payload); err != nil {
		observability.Submissions().WithLabelValues("rejected").Inc()
		return dto.SubmitResponse{}, err
	}

	// The unredacted assessment, correct answers included.
	assessment, err := s.assessments.GetByID(ctx, assessmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmitResponse{}, ErrAssessmentNotFound
		}
		return dto.SubmitResponse{}, err
	}

	score, answers := s.grade(assessment, payload.Answers)

	submission := models.Submission{
		AssessmentID:   assessmentID,
		StudentID:      principal.UserID,
		Answers:        answers,
		Score:          score,
		TotalQuestions: len(assessment.Questions),
		SubmittedAt:    s.now(),
	}

	// No existence pre-check: the insert and the one-attempt rule are the
	// same atomic operation, backed by the unique (assessment, student)
	// index. Two racing submits cannot both land.
	if err := s.submissions.Create(ctx, &submission); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			observability.Submissions().WithLabelValues("conflict").Inc()
			return dto.SubmitResponse{}, s.alreadyAttempted(ctx, assessmentID, principal.UserID)
		}
		return dto.SubmitResponse{}, err
	}

	observability.Submissions().WithLabelValues("scored").Inc()
	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("assessment_id", assessmentID).
		Uint("student_id", principal.UserID).
		Int("score", score).
		Int("total_questions", submission.TotalQuestions).
		Msg("submission graded")

	s.publishCreated(submission)

	return dto.SubmitResponse{
		SubmissionID:   submission.ID,
		Score:          submission.Score,
		TotalQuestions: submission.TotalQuestions,
	}, nil
}

func (s *submissionService) ListMine(ctx context.Context, principal policy.Principal) ([]dto.MySubmissionResponse, error) {
	if err := policy.RequireRole(principal, models.RoleStudent); err != nil {
		return nil, err
	}

	submissions, err := s.submissions.ListByStudent(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}

	return dto.NewMySubmissionResponseSlice(submissions), nil
}

func (s *submissionService) GetDetail(ctx context.Context, principal policy.Principal, submissionID uint) (dto.SubmissionDetailResponse, error) {
	if err := policy.RequireAuthenticated(principal); err != nil {
		return dto.SubmissionDetailResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionDetailResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionDetailResponse{}, err
	}

	if err := policy.RequireSubmissionOwner(principal, submission); err != nil {
		return dto.SubmissionDetailResponse{}, err
	}

	return dto.NewSubmissionDetailResponse(submission), nil
}

// grade walks the assessment's questions in order and counts exact matches
// against the correct answer. Out-of-range or repeated indices in the payload
// are logged and ignored; a stale or malformed client must not fail grading.
func (s *submissionService) grade(assessment models.Assessment, inputs []dto.AnswerInput) (int, []models.Answer) {
	start := time.Now()
	defer func() {
		observability.ScoringLatency().Observe(time.Since(start).Seconds())
	}()

	total := len(assessment.Questions)
	selected := make(map[int]*string, total)
	for _, input := range inputs {
		if input.QuestionIndex < 0 || input.QuestionIndex >= total {
			s.logger.Warn().
				Int("question_index", input.QuestionIndex).
				Uint("assessment_id", assessment.ID).
				Msg("ignoring answer for out-of-range question index")
			continue
		}
		if _, dup := selected[input.QuestionIndex]; dup {
			s.logger.Warn().
				Int("question_index", input.QuestionIndex).
				Uint("assessment_id", assessment.ID).
				Msg("ignoring duplicate answer for question index")
			continue
		}
		selected[input.QuestionIndex] = input.SelectedOption
	}

	score := 0
	answers := make([]models.Answer, 0, total)
	for i, question := range assessment.Questions {
		option := selected[i]
		answers = append(answers, models.Answer{QuestionIndex: i, SelectedOption: option})
		if option != nil && *option == question.CorrectAnswer {
			score++
		}
	}

	return score, answers
}

// alreadyAttempted resolves the existing submission id so the conflict can
// point the client at the result view.
func (s *submissionService) alreadyAttempted(ctx context.Context, assessmentID, studentID uint) error {
	existing, err := s.submissions.GetByAssessmentAndStudent(ctx, assessmentID, studentID)
	if err != nil {
		// The duplicate row exists; failing to read it back leaves the
		// conflict intact, just without the redirect hint.
		s.logger.Warn().Err(err).Msg("failed to load existing submission after duplicate insert")
		return &AlreadyAttemptedError{}
	}

	return &AlreadyAttemptedError{SubmissionID: existing.ID}
}

func (s *submissionService) publishCreated(submission models.Submission) {
	if s.nats == nil || s.natsSubject == "" {
		return
	}

	payload, err := json.Marshal(submissionCreatedEvent{
		SubmissionID:   submission.ID,
		AssessmentID:   submission.AssessmentID,
		StudentID:      submission.StudentID,
		Score:          submission.Score,
		TotalQuestions: submission.TotalQuestions,
		SubmittedAt:    submission.SubmittedAt,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode submission event")
		return
	}

	if err := s.nats.Publish(s.natsSubject, payload); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish submission event")
	}
}
