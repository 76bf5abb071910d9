package attempt

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/acadex/acadex-api/internal/dto"
)

type fakeSubmitter struct {
	mu       sync.Mutex
	calls    int
	payloads []dto.SubmitRequest
	response dto.SubmitResponse
	err      error
}

func (f *fakeSubmitter) Submit(_ context.Context, _ uint, payload dto.SubmitRequest) (dto.SubmitResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.payloads = append(f.payloads, payload)
	if f.err != nil {
		return dto.SubmitResponse{}, f.err
	}
	return f.response, nil
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func threeQuestionView() dto.StudentAssessmentView {
	return dto.StudentAssessmentView{
		ID:    1,
		Title: "Unit 3 Checkpoint",
		Questions: []dto.StudentQuestionView{
			{Index: 0, Text: "2 + 2?", Options: []string{"3", "4"}},
			{Index: 1, Text: "Capital of France?", Options: []string{"Paris", "Lyon"}},
			{Index: 2, Text: "Largest planet?", Options: []string{"Mars", "Jupiter"}},
		},
		TimerMinutes: 1,
	}
}

func TestBeginArmsCountdown(t *testing.T) {
	runner := New(threeQuestionView(), &fakeSubmitter{}, zerolog.Nop())
	require.Equal(t, StateLoading, runner.State())

	runner.Begin()
	require.Equal(t, StateInProgress, runner.State())
	require.Equal(t, 60, runner.Remaining())

	// Begin is idempotent once the attempt started.
	runner.Select("4")
	runner.Begin()
	_, ok := runner.Answer(0)
	require.True(t, ok)
}

func TestNavigationClampsAtBounds(t *testing.T) {
	runner := New(threeQuestionView(), &fakeSubmitter{}, zerolog.Nop())
	runner.Begin()

	runner.Previous()
	require.Equal(t, 0, runner.Current())

	runner.Next()
	runner.Next()
	runner.Next()
	require.Equal(t, 2, runner.Current())
}

func TestNavigationKeepsBufferedAnswers(t *testing.T) {
	runner := New(threeQuestionView(), &fakeSubmitter{}, zerolog.Nop())
	runner.Begin()

	require.NoError(t, runner.Select("4"))
	runner.Next()
	require.NoError(t, runner.Select("Lyon"))
	runner.Previous()

	option, ok := runner.Answer(0)
	require.True(t, ok)
	require.Equal(t, "4", option)

	option, ok = runner.Answer(1)
	require.True(t, ok)
	require.Equal(t, "Lyon", option)
}

func TestManualSubmitOnlyOnLastQuestionWithConfirmation(t *testing.T) {
	submitter := &fakeSubmitter{response: dto.SubmitResponse{SubmissionID: 5, Score: 1, TotalQuestions: 3}}
	runner := New(threeQuestionView(), submitter, zerolog.Nop())
	runner.Begin()

	require.ErrorIs(t, runner.Submit(context.Background(), true), ErrNotLastQuestion)

	runner.Next()
	runner.Next()
	require.ErrorIs(t, runner.Submit(context.Background(), false), ErrConfirmationRequired)

	require.NoError(t, runner.Submit(context.Background(), true))
	require.Equal(t, StateSubmitted, runner.State())

	result, ok := runner.Result()
	require.True(t, ok)
	require.Equal(t, uint(5), result.SubmissionID)
	require.Equal(t, 1, submitter.callCount())

	require.ErrorIs(t, runner.Submit(context.Background(), true), ErrNotInProgress)
}

func TestTimeoutForcesSubmissionWithPaddedAnswers(t *testing.T) {
	submitter := &fakeSubmitter{response: dto.SubmitResponse{SubmissionID: 9, TotalQuestions: 3}}
	runner := New(threeQuestionView(), submitter, zerolog.Nop())
	runner.Begin()

	require.NoError(t, runner.Select("4"))

	for i := 0; i < 59; i++ {
		require.False(t, runner.Tick(context.Background()))
	}
	require.Equal(t, 1, runner.Remaining())
	require.True(t, runner.Tick(context.Background()))

	require.Equal(t, StateSubmitted, runner.State())
	require.Equal(t, 1, submitter.callCount())

	payload := submitter.payloads[0]
	require.Len(t, payload.Answers, 3)
	require.Equal(t, "4", *payload.Answers[0].SelectedOption)
	require.Nil(t, payload.Answers[1].SelectedOption)
	require.Nil(t, payload.Answers[2].SelectedOption)
}

func TestFailedSubmitReleasesGuardAndKeepsBuffer(t *testing.T) {
	submitter := &fakeSubmitter{err: errors.New("connection reset")}
	runner := New(threeQuestionView(), submitter, zerolog.Nop())
	runner.Begin()

	require.NoError(t, runner.Select("4"))
	runner.Next()
	runner.Next()

	err := runner.Submit(context.Background(), true)
	require.Error(t, err)
	require.Equal(t, StateInProgress, runner.State())

	option, ok := runner.Answer(0)
	require.True(t, ok)
	require.Equal(t, "4", option)

	// Retry succeeds once the transport recovers.
	submitter.mu.Lock()
	submitter.err = nil
	submitter.response = dto.SubmitResponse{SubmissionID: 11}
	submitter.mu.Unlock()

	require.NoError(t, runner.Submit(context.Background(), true))
	require.Equal(t, StateSubmitted, runner.State())
	require.Equal(t, 2, submitter.callCount())
}

func TestFailedTimeoutSubmitRetriesOnNextTick(t *testing.T) {
	submitter := &fakeSubmitter{err: errors.New("connection reset")}
	runner := New(threeQuestionView(), submitter, zerolog.Nop())
	runner.Begin()

	for i := 0; i < 60; i++ {
		runner.Tick(context.Background())
	}
	require.Equal(t, StateInProgress, runner.State())
	require.Equal(t, 1, submitter.callCount())

	submitter.mu.Lock()
	submitter.err = nil
	submitter.response = dto.SubmitResponse{SubmissionID: 3}
	submitter.mu.Unlock()

	require.True(t, runner.Tick(context.Background()))
	require.Equal(t, StateSubmitted, runner.State())
	require.Equal(t, 2, submitter.callCount())
}

func TestConcurrentTriggersSubmitExactlyOnce(t *testing.T) {
	submitter := &fakeSubmitter{response: dto.SubmitResponse{SubmissionID: 5}}
	runner := New(threeQuestionView(), submitter, zerolog.Nop())
	runner.Begin()
	runner.Next()
	runner.Next()

	// Drain the countdown so the next tick and a manual confirm race.
	for i := 0; i < 59; i++ {
		runner.Tick(context.Background())
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		runner.Tick(context.Background())
	}()
	go func() {
		defer wg.Done()
		_ = runner.Submit(context.Background(), true)
	}()
	wg.Wait()

	require.Equal(t, 1, submitter.callCount())
	require.Equal(t, StateSubmitted, runner.State())
}

func TestInteractionRejectedOutsideInProgress(t *testing.T) {
	runner := New(threeQuestionView(), &fakeSubmitter{}, zerolog.Nop())

	require.ErrorIs(t, runner.Select("4"), ErrNotInProgress)
	require.ErrorIs(t, runner.Submit(context.Background(), true), ErrNotInProgress)
	require.True(t, runner.Tick(context.Background()))
}

func TestStopIsIdempotent(t *testing.T) {
	runner := New(threeQuestionView(), &fakeSubmitter{}, zerolog.Nop())
	runner.Begin()

	runner.Stop()
	runner.Stop()
}

func TestLeaveWarningTracksLiveStates(t *testing.T) {
	submitter := &fakeSubmitter{response: dto.SubmitResponse{SubmissionID: 5}}
	runner := New(threeQuestionView(), submitter, zerolog.Nop())
	require.False(t, runner.LeaveWarning())

	runner.Begin()
	require.True(t, runner.LeaveWarning())

	runner.Next()
	runner.Next()
	require.NoError(t, runner.Submit(context.Background(), true))
	require.False(t, runner.LeaveWarning())
}
