package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/lshigami/prepbank/database"
	"github.com/lshigami/prepbank/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// The sqlite dialect drops FOR UPDATE / FOR SHARE, so row locks are checked
// on the statements gorm builds rather than on the database.

var storeNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type storeFixture struct {
	db        *gorm.DB
	attempts  TestAttemptRepository
	responses QuestionResponseRepository
	user      model.User
	test      model.Test
	questions []model.Question
	locks     []string
	updates   map[string]int
}

func newStore(t *testing.T) *storeFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  gormlogger.Discard,
		NowFunc: func() time.Time { return storeNow },
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	f := &storeFixture{
		db:        db,
		attempts:  NewTestAttemptRepository(db),
		responses: NewQuestionResponseRepository(db),
		updates:   map[string]int{},
	}
	require.NoError(t, db.Callback().Query().Before("gorm:query").Register("test:record_locks", func(tx *gorm.DB) {
		if c, ok := tx.Statement.Clauses["FOR"]; ok {
			if l, ok := c.Expression.(clause.Locking); ok {
				f.locks = append(f.locks, tx.Statement.Table+" "+l.Strength)
			}
		}
	}))
	require.NoError(t, db.Callback().Update().After("gorm:update").Register("test:count_updates", func(tx *gorm.DB) {
		if tx.Error == nil {
			f.updates[tx.Statement.Table]++
		}
	}))
	f.seed(t)
	return f
}

func (f *storeFixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	section := model.Section{Code: "MATH", Name: "Mathematics"}
	require.NoError(t, f.db.Create(&section).Error)
	course := model.Course{Code: "ALG", Name: "Algebra", SectionID: section.ID}
	require.NoError(t, f.db.Create(&course).Error)

	correct := "B"
	ids := []string{}
	for i, title := range []string{"Q1 Linear", "Q2 Quadratic", "Q3 Cubic"} {
		q := model.Question{
			UniqueCode:   "ALG-" + string(rune('1'+i)),
			Title:        title,
			Content:      "Solve it",
			Period:       "2024-1",
			Type:         "MCQ",
			CorrectLabel: &correct,
			CourseID:     course.ID,
			Options: []model.Option{
				{Label: "A", Text: "first"},
				{Label: "B", Text: "second"},
			},
		}
		require.NoError(t, f.db.Create(&q).Error)
		f.questions = append(f.questions, q)
		ids = append(ids, q.ID)
	}

	f.user = model.User{Email: "student@example.com", Role: model.RoleStudent}
	require.NoError(t, f.db.Create(&f.user).Error)
	f.test = model.Test{Name: "Algebra mock"}
	require.NoError(t, NewTestRepository(f.db).CreateWithQuestions(ctx, &f.test, ids))
}

func (f *storeFixture) newAttempt(status model.AttemptStatus, startedAt time.Time) *model.TestAttempt {
	a := &model.TestAttempt{UserID: f.user.ID, TestID: f.test.ID, Status: status, StartedAt: startedAt}
	for i, q := range f.questions {
		a.Responses = append(a.Responses, model.QuestionResponse{QuestionID: q.ID, Position: i})
	}
	return a
}

func (f *storeFixture) start(t *testing.T) *model.TestAttempt {
	t.Helper()
	a := f.newAttempt(model.AttemptInProgress, storeNow)
	require.NoError(t, f.attempts.CreateWithResponses(context.Background(), a))
	return a
}

func (f *storeFixture) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(m).Count(&n).Error)
	return n
}

func (f *storeFixture) option(q int, label string) string {
	for _, o := range f.questions[q].Options {
		if o.Label == label {
			return o.ID
		}
	}
	return ""
}

func selectColumn(optionID string) ResponseMutation {
	return func(current *model.QuestionResponse) (map[string]interface{}, error) {
		return map[string]interface{}{"selected_option_id": optionID}, nil
	}
}

func TestCreateWithResponsesWritesAttemptAndResponses(t *testing.T) {
	f := newStore(t)
	a := f.start(t)

	loaded, err := f.attempts.FindByIDWithResponses(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptInProgress, loaded.Status)
	assert.Nil(t, loaded.Score)
	assert.Nil(t, loaded.FinishedAt)
	require.Len(t, loaded.Responses, 3)
	for i, r := range loaded.Responses {
		assert.Equal(t, i, r.Position)
		assert.Equal(t, f.questions[i].ID, r.QuestionID)
		assert.Nil(t, r.SelectedOptionID)
		assert.Nil(t, r.IsCorrect)
		assert.Zero(t, r.TimeSpent)
		assert.Zero(t, r.SwitchCount)
		assert.False(t, r.Flagged)
		require.NotNil(t, r.Question)
	}
}

func TestCreateWithResponsesRollsBackOnFailure(t *testing.T) {
	f := newStore(t)
	a := f.newAttempt(model.AttemptInProgress, storeNow)
	// a second response for the first question breaks the (attempt, question) index
	a.Responses = append(a.Responses, model.QuestionResponse{QuestionID: f.questions[0].ID, Position: 3})

	err := f.attempts.CreateWithResponses(context.Background(), a)

	require.Error(t, err)
	var storageErr *StorageError
	assert.ErrorAs(t, err, &storageErr)
	assert.Zero(t, f.count(t, &model.TestAttempt{}), "attempt row must not survive")
	assert.Zero(t, f.count(t, &model.QuestionResponse{}))
}

func TestModifyWritesUnderLocks(t *testing.T) {
	f := newStore(t)
	a := f.start(t)
	ctx := context.Background()
	f.locks = nil

	var seen *model.QuestionResponse
	updated, err := f.responses.Modify(ctx, a.ID, f.questions[0].ID, func(current *model.QuestionResponse) (map[string]interface{}, error) {
		seen = current
		return map[string]interface{}{
			"selected_option_id": f.option(0, "B"),
			"is_correct":         true,
			"time_spent":         current.TimeSpent + 12,
			"switch_count":       current.SwitchCount + 1,
		}, nil
	})
	require.NoError(t, err)

	require.NotNil(t, seen.Attempt)
	assert.Equal(t, model.AttemptInProgress, seen.Attempt.Status)
	require.NotNil(t, seen.Question)
	assert.Len(t, seen.Question.Options, 2)

	assert.Equal(t, []string{"test_attempts SHARE", "question_responses UPDATE"}, f.locks)
	assert.Equal(t, 1, f.updates["question_responses"])

	require.NotNil(t, updated.SelectedOption)
	assert.Equal(t, "B", updated.SelectedOption.Label)
	require.NotNil(t, updated.IsCorrect)
	assert.True(t, *updated.IsCorrect)
	assert.Equal(t, 12, updated.TimeSpent)
	assert.Equal(t, 1, updated.SwitchCount)
	require.NotNil(t, updated.Question)
	assert.Len(t, updated.Question.Options, 2)
}

func TestModifyWithoutChangesIssuesNoUpdate(t *testing.T) {
	f := newStore(t)
	a := f.start(t)
	ctx := context.Background()
	before, err := f.responses.FindByAttemptAndQuestion(ctx, a.ID, f.questions[1].ID)
	require.NoError(t, err)

	after, err := f.responses.Modify(ctx, a.ID, f.questions[1].ID, func(*model.QuestionResponse) (map[string]interface{}, error) {
		return map[string]interface{}{}, nil
	})
	require.NoError(t, err)

	assert.Zero(t, f.updates["question_responses"])
	assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt))
}

func TestModifyErrors(t *testing.T) {
	f := newStore(t)
	a := f.start(t)
	ctx := context.Background()

	closed := errors.New("closed")
	_, err := f.responses.Modify(ctx, a.ID, f.questions[0].ID, func(*model.QuestionResponse) (map[string]interface{}, error) {
		return nil, closed
	})
	assert.ErrorIs(t, err, closed)
	assert.Zero(t, f.updates["question_responses"])

	_, err = f.responses.Modify(ctx, a.ID, "00000000-0000-0000-0000-000000000000", selectColumn(f.option(0, "A")))
	assert.True(t, IsNotFound(err))

	_, err = f.responses.Modify(ctx, "00000000-0000-0000-0000-000000000000", f.questions[0].ID, selectColumn(f.option(0, "A")))
	assert.True(t, IsNotFound(err))
}

func gradeAll(score float64, grade *bool) AttemptGrader {
	return func(attempt *model.TestAttempt) (*AttemptCompletion, error) {
		c := &AttemptCompletion{FinishedAt: storeNow.Add(time.Hour), Score: score, Grades: map[string]*bool{}}
		for _, r := range attempt.Responses {
			c.Grades[r.ID] = grade
		}
		return c, nil
	}
}

func TestFinishWritesCompletionOnce(t *testing.T) {
	f := newStore(t)
	a := f.start(t)
	ctx := context.Background()
	_, err := f.responses.Modify(ctx, a.ID, f.questions[0].ID, selectColumn(f.option(0, "B")))
	require.NoError(t, err)
	f.locks = nil

	yes, no := true, false
	var graded *model.TestAttempt
	err = f.attempts.Finish(ctx, a.ID, func(attempt *model.TestAttempt) (*AttemptCompletion, error) {
		graded = attempt
		return gradeAll(50, &yes)(attempt)
	})
	require.NoError(t, err)

	assert.Equal(t, "test_attempts UPDATE", f.locks[0])
	require.Len(t, graded.Responses, 3)
	require.NotNil(t, graded.Responses[0].SelectedOption)
	assert.Equal(t, "B", graded.Responses[0].SelectedOption.Label)
	require.NotNil(t, graded.Responses[0].Question)

	first, err := f.attempts.FindByIDWithResponses(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptCompleted, first.Status)
	require.NotNil(t, first.Score)
	assert.Equal(t, 50.0, *first.Score)
	require.NotNil(t, first.FinishedAt)
	assert.True(t, first.FinishedAt.Equal(storeNow.Add(time.Hour)))
	for _, r := range first.Responses {
		require.NotNil(t, r.IsCorrect)
		assert.True(t, *r.IsCorrect)
	}

	// a grader that ignores the status cannot overwrite a completed attempt
	require.NoError(t, f.attempts.Finish(ctx, a.ID, gradeAll(99, &no)))
	second, err := f.attempts.FindByIDWithResponses(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, *second.Score)
	for _, r := range second.Responses {
		require.NotNil(t, r.IsCorrect)
		assert.True(t, *r.IsCorrect)
	}
}

func TestFinishLeavesAttemptOnGraderErrorOrNoCompletion(t *testing.T) {
	f := newStore(t)
	a := f.start(t)
	ctx := context.Background()

	refused := errors.New("refused")
	err := f.attempts.Finish(ctx, a.ID, func(*model.TestAttempt) (*AttemptCompletion, error) { return nil, refused })
	assert.ErrorIs(t, err, refused)

	require.NoError(t, f.attempts.Finish(ctx, a.ID, func(*model.TestAttempt) (*AttemptCompletion, error) { return nil, nil }))

	loaded, err := f.attempts.FindByIDWithResponses(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptInProgress, loaded.Status)
	assert.Nil(t, loaded.Score)
	assert.Zero(t, f.updates["test_attempts"])

	err = f.attempts.Finish(ctx, "00000000-0000-0000-0000-000000000000", gradeAll(0, nil))
	assert.True(t, IsNotFound(err))
}

func TestAbandonStartedBefore(t *testing.T) {
	f := newStore(t)
	ctx := context.Background()
	stale := f.newAttempt(model.AttemptInProgress, storeNow.Add(-48*time.Hour))
	fresh := f.newAttempt(model.AttemptInProgress, storeNow.Add(-time.Hour))
	done := f.newAttempt(model.AttemptCompleted, storeNow.Add(-72*time.Hour))
	for _, a := range []*model.TestAttempt{stale, fresh, done} {
		require.NoError(t, f.attempts.CreateWithResponses(ctx, a))
	}

	n, err := f.attempts.AbandonStartedBefore(ctx, storeNow.Add(-24*time.Hour), storeNow)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := f.attempts.FindByIDWithResponses(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptAbandoned, got.Status)
	require.NotNil(t, got.FinishedAt)
	assert.True(t, got.FinishedAt.Equal(storeNow))
	assert.Nil(t, got.Score)

	got, err = f.attempts.FindByIDWithResponses(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptInProgress, got.Status)

	got, err = f.attempts.FindByIDWithResponses(ctx, done.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AttemptCompleted, got.Status)
	assert.Nil(t, got.FinishedAt)
}
