package service

import (
	"context"
	"testing"
	"time"

	"github.com/lshigami/prepbank/internal/model"
	"github.com/lshigami/prepbank/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

type engineFixture struct {
	store    *memStore
	attempts *fakeAttemptRepo
	svc      *attemptService
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }

// newEngine builds an attempt service over a store holding user u1 and test
// t1 with four questions q1..q4, all answered correctly by option B.
func newEngine(t *testing.T) *engineFixture {
	t.Helper()
	store := newMemStore()
	store.addUser("u1")
	var qs []*model.Question
	for _, id := range []string{"q1", "q2", "q3", "q4"} {
		qs = append(qs, store.addQuestion(id, "Question "+id, strPtr("B")))
	}
	store.addTest("t1", qs...)
	store.addTest("empty")

	attempts := &fakeAttemptRepo{store: store}
	svc := NewAttemptService(attempts, &fakeResponseRepo{store: store}, &fakeTestRepo{store: store}, &fakeUserRepo{store: store}).(*attemptService)
	svc.now = func() time.Time { return fixedNow }
	return &engineFixture{store: store, attempts: attempts, svc: svc}
}

func selectOption(id string) ResponsePatch {
	return ResponsePatch{SetSelection: true, SelectedOptionID: &id}
}

func TestStartAttemptCreatesOneBlankResponsePerQuestion(t *testing.T) {
	f := newEngine(t)

	attempt, err := f.svc.StartAttempt(context.Background(), "u1", "t1")
	require.NoError(t, err)

	assert.Equal(t, string(model.AttemptInProgress), attempt.Status)
	assert.Equal(t, fixedNow, attempt.StartedAt)
	assert.Nil(t, attempt.Score)
	assert.Nil(t, attempt.FinishedAt)
	require.Len(t, attempt.Responses, 4)
	for i, r := range attempt.Responses {
		assert.Equal(t, i, r.Position)
		assert.Equal(t, []string{"q1", "q2", "q3", "q4"}[i], r.QuestionID)
		assert.Nil(t, r.SelectedOptionID)
		assert.Nil(t, r.IsCorrect)
		assert.Zero(t, r.TimeSpent)
		assert.Zero(t, r.SwitchCount)
		assert.False(t, r.Flagged)
		require.NotNil(t, r.Question)
		assert.Len(t, r.Question.Options, 3)
	}
	require.NotNil(t, attempt.Test)
	assert.Len(t, attempt.Test.Questions, 4)
}

func TestStartAttemptNotFound(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()

	_, err := f.svc.StartAttempt(ctx, "u1", "missing")
	assert.True(t, repository.IsNotFound(err))

	_, err = f.svc.StartAttempt(ctx, "u1", "empty")
	assert.True(t, repository.IsNotFound(err), "a test without questions cannot be attempted")

	_, err = f.svc.StartAttempt(ctx, "nobody", "t1")
	assert.True(t, repository.IsNotFound(err))

	assert.Empty(t, f.store.attempts)
	assert.Empty(t, f.store.responses)
}

func TestUpdateResponseReselectingSameOptionDoesNotCountSwitch(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()
	attempt, err := f.svc.StartAttempt(ctx, "u1", "t1")
	require.NoError(t, err)

	r, err := f.svc.UpdateResponse(ctx, attempt.ID, "q1", selectOption("q1-A"))
	require.NoError(t, err)
	assert.Equal(t, 1, r.SwitchCount)

	r, err = f.svc.UpdateResponse(ctx, attempt.ID, "q1", selectOption("q1-A"))
	require.NoError(t, err)
	assert.Equal(t, 1, r.SwitchCount)
}

func TestUpdateResponseCountsEverySelectionChange(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()
	attempt, err := f.svc.StartAttempt(ctx, "u1", "t1")
	require.NoError(t, err)

	for _, option := range []string{"q1-A", "q1-B", "q1-A"} {
		_, err := f.svc.UpdateResponse(ctx, attempt.ID, "q1", selectOption(option))
		require.NoError(t, err)
	}
	r, err := f.svc.GetResponse(ctx, attempt.ID, "q1")
	require.NoError(t, err)
	assert.Equal(t, 3, r.SwitchCount)

	r, err = f.svc.UpdateResponse(ctx, attempt.ID, "q1", ResponsePatch{SetSelection: true})
	require.NoError(t, err)
	assert.Equal(t, 4, r.SwitchCount, "clearing the selection is a change too")
}

func TestUpdateResponseAccumulatesTime(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()
	attempt, err := f.svc.StartAttempt(ctx, "u1", "t1")
	require.NoError(t, err)

	_, err = f.svc.UpdateResponse(ctx, attempt.ID, "q2", ResponsePatch{TimeSpent: intPtr(10)})
	require.NoError(t, err)
	r, err := f.svc.UpdateResponse(ctx, attempt.ID, "q2", ResponsePatch{TimeSpent: intPtr(5)})
	require.NoError(t, err)
	assert.Equal(t, 15, r.TimeSpent)

	writes := f.store.writes
	r, err = f.svc.UpdateResponse(ctx, attempt.ID, "q2", ResponsePatch{TimeSpent: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, 15, r.TimeSpent)
	assert.Equal(t, writes, f.store.writes, "a zero delta must not write")
}

func TestUpdateResponseComputesCorrectness(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()
	attempt, err := f.svc.StartAttempt(ctx, "u1", "t1")
	require.NoError(t, err)

	r, err := f.svc.UpdateResponse(ctx, attempt.ID, "q3", selectOption("q3-B"))
	require.NoError(t, err)
	require.NotNil(t, r.IsCorrect)
	assert.True(t, *r.IsCorrect)
	require.NotNil(t, r.SelectedOption)
	assert.Equal(t, "B", r.SelectedOption.Label)

	r, err = f.svc.UpdateResponse(ctx, attempt.ID, "q3", selectOption("q3-A"))
	require.NoError(t, err)
	require.NotNil(t, r.IsCorrect)
	assert.False(t, *r.IsCorrect)

	r, err = f.svc.UpdateResponse(ctx, attempt.ID, "q3", ResponsePatch{SetSelection: true, SelectedOptionID: nil})
	require.NoError(t, err)
	assert.Nil(t, r.IsCorrect)
	assert.Nil(t, r.SelectedOptionID)
}

func TestUpdateResponseFlagAndExplicitSwitches(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()
	attempt, err := f.svc.StartAttempt(ctx, "u1", "t1")
	require.NoError(t, err)

	r, err := f.svc.UpdateResponse(ctx, attempt.ID, "q4", ResponsePatch{Flagged: boolPtr(true), SwitchCount: intPtr(2)})
	require.NoError(t, err)
	assert.True(t, r.Flagged)
	assert.Equal(t, 2, r.SwitchCount)

	r, err = f.svc.UpdateResponse(ctx, attempt.ID, "q4", ResponsePatch{Flagged: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, r.Flagged)
	assert.Equal(t, 2, r.SwitchCount)
}

func TestUpdateResponseErrors(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()
	attempt, err := f.svc.StartAttempt(ctx, "u1", "t1")
	require.NoError(t, err)

	_, err = f.svc.UpdateResponse(ctx, attempt.ID, "nope", selectOption("q1-A"))
	assert.True(t, repository.IsNotFound(err))

	_, err = f.svc.UpdateResponse(ctx, "missing", "q1", selectOption("q1-A"))
	assert.True(t, repository.IsNotFound(err))

	_, err = f.svc.UpdateResponse(ctx, attempt.ID, "q1", selectOption("q2-A"))
	assert.True(t, repository.IsNotFound(err), "option of another question")
}

func TestFinishAttemptScoresEndToEnd(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()
	attempt, err := f.svc.StartAttempt(ctx, "u1", "t1")
	require.NoError(t, err)

	answers := map[string]string{"q1": "q1-B", "q2": "q2-B", "q3": "q3-B", "q4": "q4-C"}
	for q, option := range answers {
		_, err := f.svc.UpdateResponse(ctx, attempt.ID, q, selectOption(option))
		require.NoError(t, err)
	}

	finished, err := f.svc.FinishAttempt(ctx, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, string(model.AttemptCompleted), finished.Status)
	require.NotNil(t, finished.Score)
	assert.InDelta(t, 75.0, *finished.Score, 1e-9)
	require.NotNil(t, finished.FinishedAt)
	assert.Equal(t, fixedNow, *finished.FinishedAt)
	for _, r := range finished.Responses {
		require.NotNil(t, r.IsCorrect, r.QuestionID)
		assert.Equal(t, r.QuestionID != "q4", *r.IsCorrect, r.QuestionID)
	}
}

func TestFinishAttemptWithNothingAnswered(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()
	attempt, err := f.svc.StartAttempt(ctx, "u1", "t1")
	require.NoError(t, err)

	finished, err := f.svc.FinishAttempt(ctx, attempt.ID)
	require.NoError(t, err)
	require.NotNil(t, finished.Score)
	assert.Zero(t, *finished.Score)
	for _, r := range finished.Responses {
		assert.Nil(t, r.IsCorrect)
	}
}

func TestFinishAttemptWithoutResponses(t *testing.T) {
	f := newEngine(t)
	f.store.attempts["bare"] = &model.TestAttempt{ID: "bare", UserID: "u1", TestID: "t1", Status: model.AttemptInProgress, StartedAt: fixedNow}

	finished, err := f.svc.FinishAttempt(context.Background(), "bare")
	require.NoError(t, err)
	require.NotNil(t, finished.Score)
	assert.Zero(t, *finished.Score)
}

func TestFinishAttemptTwiceKeepsFirstResult(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()
	attempt, err := f.svc.StartAttempt(ctx, "u1", "t1")
	require.NoError(t, err)
	_, err = f.svc.UpdateResponse(ctx, attempt.ID, "q1", selectOption("q1-B"))
	require.NoError(t, err)

	first, err := f.svc.FinishAttempt(ctx, attempt.ID)
	require.NoError(t, err)

	f.svc.now = func() time.Time { return fixedNow.Add(time.Hour) }
	second, err := f.svc.FinishAttempt(ctx, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, *first.Score, *second.Score)
	assert.Equal(t, *first.FinishedAt, *second.FinishedAt)

	_, err = f.svc.UpdateResponse(ctx, attempt.ID, "q2", selectOption("q2-B"))
	assert.ErrorIs(t, err, ErrAttemptClosed)
}

func TestFinishAttemptErrors(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()

	_, err := f.svc.FinishAttempt(ctx, "missing")
	assert.True(t, repository.IsNotFound(err))

	attempt, err := f.svc.StartAttempt(ctx, "u1", "t1")
	require.NoError(t, err)
	f.store.attempts[attempt.ID].Status = model.AttemptAbandoned
	_, err = f.svc.FinishAttempt(ctx, attempt.ID)
	assert.ErrorIs(t, err, ErrAttemptClosed)
}

func TestAbandonStale(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()
	old, err := f.svc.StartAttempt(ctx, "u1", "t1")
	require.NoError(t, err)
	f.store.attempts[old.ID].StartedAt = fixedNow.Add(-48 * time.Hour)
	fresh, err := f.svc.StartAttempt(ctx, "u1", "t1")
	require.NoError(t, err)

	n, err := f.svc.AbandonStale(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, fixedNow.Add(-24*time.Hour), f.attempts.cutoff)
	assert.Equal(t, model.AttemptAbandoned, f.store.attempts[old.ID].Status)
	assert.Equal(t, model.AttemptInProgress, f.store.attempts[fresh.ID].Status)
}

func TestListUserAttemptsSummaries(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()
	attempt, err := f.svc.StartAttempt(ctx, "u1", "t1")
	require.NoError(t, err)
	_, err = f.svc.UpdateResponse(ctx, attempt.ID, "q1", selectOption("q1-B"))
	require.NoError(t, err)

	summaries, err := f.svc.ListUserAttempts(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "test t1", summaries[0].TestName)
	assert.Equal(t, 4, summaries[0].ResponseCount)
	assert.Equal(t, 1, summaries[0].AnsweredCount)

	_, err = f.svc.ListUserAttempts(ctx, "nobody")
	assert.True(t, repository.IsNotFound(err))
}

func TestListAttemptResponses(t *testing.T) {
	f := newEngine(t)
	ctx := context.Background()
	attempt, err := f.svc.StartAttempt(ctx, "u1", "t1")
	require.NoError(t, err)
	_, err = f.svc.UpdateResponse(ctx, attempt.ID, "q2", selectOption("q2-A"))
	require.NoError(t, err)

	responses, err := f.svc.ListAttemptResponses(ctx, attempt.ID)
	require.NoError(t, err)
	require.Len(t, responses, 4)
	for i, r := range responses {
		assert.Equal(t, i, r.Position)
	}
	assert.Equal(t, "q2-A", *responses[1].SelectedOptionID)
	assert.Zero(t, f.attempts.responseLoads, "existence check must not load the responses")

	_, err = f.svc.ListAttemptResponses(ctx, "missing")
	assert.True(t, repository.IsNotFound(err))
}
