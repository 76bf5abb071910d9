// Package attempt drives a single timed pass through an assessment: question
// navigation, a per-second countdown, local answer buffering and exactly-once
// submission. The submission fires either when the student confirms on the
// last question or when the countdown reaches zero, whichever comes first;
// the two triggers share one guard so they can never both fire.
package attempt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/acadex/acadex-api/internal/dto"
)

// State names the phases of an attempt. Submitted is terminal.
type State string

const (
	StateLoading    State = "loading"
	StateInProgress State = "in_progress"
	StateSubmitting State = "submitting"
	StateSubmitted  State = "submitted"
	StateTimedOut   State = "timed_out"
)

var (
	// ErrNotInProgress rejects interactions outside the InProgress state.
	ErrNotInProgress = errors.New("attempt is not in progress")
	// ErrNotLastQuestion rejects a manual submit before the last question.
	ErrNotLastQuestion = errors.New("manual submit is only available on the last question")
	// ErrConfirmationRequired rejects a manual submit without explicit
	// confirmation.
	ErrConfirmationRequired = errors.New("submission requires confirmation")
	// ErrAlreadySubmitting signals the single-fire guard is held; the first
	// trigger wins and later ones are no-ops.
	ErrAlreadySubmitting = errors.New("submission already in flight")
)

// Submitter delivers the buffered answers. Implemented by the submission
// service; faked in tests.
type Submitter interface {
	Submit(ctx context.Context, assessmentID uint, payload dto.SubmitRequest) (dto.SubmitResponse, error)
}

// Runner is the attempt state machine. All methods are safe for concurrent
// use; the countdown goroutine and the student's actions share one lock.
type Runner struct {
	mu         sync.Mutex
	state      State
	assessment dto.StudentAssessmentView
	submitter  Submitter
	logger     zerolog.Logger

	remaining int // seconds, never negative
	current   int
	answers   map[int]string

	inFlight bool
	stop     chan struct{}
	stopped  bool
	result   *dto.SubmitResponse
}

// New prepares a runner for the given redacted assessment view.
func New(assessment dto.StudentAssessmentView, submitter Submitter, logger zerolog.Logger) *Runner {
	return &Runner{
		state:      StateLoading,
		assessment: assessment,
		submitter:  submitter,
		logger:     logger.With().Str("component", "attempt_runner").Uint("assessment_id", assessment.ID).Logger(),
		answers:    make(map[int]string),
		stop:       make(chan struct{}),
	}
}

// Begin transitions Loading → InProgress and arms the countdown at
// timer × 60 seconds. It does not start a ticker; pair it with Run for
// wall-clock ticking or call Tick directly under a test clock.
func (r *Runner) Begin() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateLoading {
		return
	}

	r.state = StateInProgress
	r.remaining = r.assessment.TimerMinutes * 60
}

// Run begins the attempt and ticks once per second until the attempt reaches
// a terminal state, the context is cancelled, or Stop is called.
func (r *Runner) Run(ctx context.Context) {
	r.Begin()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stop:
			return
		case <-ticker.C:
			if done := r.Tick(ctx); done {
				return
			}
		}
	}
}

// Tick is the single countdown transition: one invocation per elapsed second.
// It reports true once the attempt no longer needs ticking. When the
// countdown hits zero it fires the forced submission exactly once, padding
// every unanswered index with a nil selection.
func (r *Runner) Tick(ctx context.Context) bool {
	r.mu.Lock()

	if r.state != StateInProgress {
		r.mu.Unlock()
		return true
	}

	if r.remaining > 0 {
		r.remaining--
	}
	if r.remaining > 0 {
		r.mu.Unlock()
		return false
	}

	r.state = StateTimedOut
	r.logger.Info().Msg("attempt timed out, forcing submission")
	r.mu.Unlock()

	// Best effort: a timeout submission that fails leaves the buffer intact
	// and the guard released, like any other failed submit.
	_ = r.submit(ctx)
	return true
}

// Stop cancels the countdown. Safe to call any number of times; a stopped
// runner can never fire a stale timeout against a dismissed assessment.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.stopped {
		r.stopped = true
		close(r.stop)
	}
}

// Select buffers an option for the current question. Only explicit selection
// mutates the buffer; navigation never does.
func (r *Runner) Select(option string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateInProgress {
		return ErrNotInProgress
	}

	r.answers[r.current] = option
	return nil
}

// Next advances to the following question, clamped to the last index.
func (r *Runner) Next() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateInProgress && r.current < len(r.assessment.Questions)-1 {
		r.current++
	}
}

// Previous moves back one question, clamped to zero.
func (r *Runner) Previous() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateInProgress && r.current > 0 {
		r.current--
	}
}

// Submit is the manual path: last question only, and only with explicit
// confirmation. It shares the single-fire guard with the timeout path.
func (r *Runner) Submit(ctx context.Context, confirmed bool) error {
	r.mu.Lock()
	if r.state != StateInProgress {
		r.mu.Unlock()
		return ErrNotInProgress
	}
	if r.current != len(r.assessment.Questions)-1 {
		r.mu.Unlock()
		return ErrNotLastQuestion
	}
	if !confirmed {
		r.mu.Unlock()
		return ErrConfirmationRequired
	}
	r.mu.Unlock()

	return r.submit(ctx)
}

// submit performs the guarded single-fire submission for both trigger paths.
func (r *Runner) submit(ctx context.Context) error {
	r.mu.Lock()
	if r.inFlight || r.state == StateSubmitted {
		r.mu.Unlock()
		return ErrAlreadySubmitting
	}
	r.inFlight = true
	priorState := r.state
	r.state = StateSubmitting
	payload := r.buildPayload()
	r.mu.Unlock()

	result, err := r.submitter.Submit(ctx, r.assessment.ID, payload)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		// Release the guard and keep the buffer so the student can retry.
		r.inFlight = false
		r.state = priorState
		if priorState == StateTimedOut {
			r.state = StateInProgress
		}
		r.logger.Error().Err(err).Msg("submission failed")
		return fmt.Errorf("failed to submit attempt: %w", err)
	}

	r.state = StateSubmitted
	r.result = &result
	r.logger.Info().
		Uint("submission_id", result.SubmissionID).
		Int("score", result.Score).
		Msg("attempt submitted")

	if !r.stopped {
		r.stopped = true
		close(r.stop)
	}

	return nil
}

// buildPayload snapshots the buffer, padding unanswered indices with nil.
// Caller holds the lock.
func (r *Runner) buildPayload() dto.SubmitRequest {
	answers := make([]dto.AnswerInput, 0, len(r.assessment.Questions))
	for i := range r.assessment.Questions {
		input := dto.AnswerInput{QuestionIndex: i}
		if option, ok := r.answers[i]; ok {
			value := option
			input.SelectedOption = &value
		}
		answers = append(answers, input)
	}

	return dto.SubmitRequest{Answers: answers}
}

// State returns the current phase.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Remaining returns the seconds left on the countdown.
func (r *Runner) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}

// Current returns the index of the question in view.
func (r *Runner) Current() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Answer returns the buffered selection for a question index, if any.
func (r *Runner) Answer(index int) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	option, ok := r.answers[index]
	return option, ok
}

// Result returns the graded outcome once the attempt is Submitted.
func (r *Runner) Result() (dto.SubmitResponse, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.result == nil {
		return dto.SubmitResponse{}, false
	}
	return *r.result, true
}

// LeaveWarning reports whether navigating away should warn about lost
// progress. Advisory only; it cannot block a forced timeout submission.
func (r *Runner) LeaveWarning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == StateInProgress || r.state == StateSubmitting || r.state == StateTimedOut
}
