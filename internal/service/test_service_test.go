package service

import (
	"context"
	"testing"

	"github.com/lshigami/prepbank/internal/dto"
	"github.com/lshigami/prepbank/internal/model"
	"github.com/lshigami/prepbank/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titledQuestion(id, title string) model.Question {
	q := setQuestion(id, "MATH", "ALG", "MCQ", "2024-1")
	q.Title = title
	return q
}

func TestCreateTestFromFiltersUsesTitleOrder(t *testing.T) {
	questions := &stubQuestionRepo{forSets: []model.Question{
		titledQuestion("q3", "Quadratics"),
		titledQuestion("q1", "Limits"),
		titledQuestion("q2", "Limits"),
		titledQuestion("q4", "Derivatives"),
	}}
	tests := &stubTestRepo{}
	svc := NewTestService(tests, questions)

	created, err := svc.CreateTestFromFilters(context.Background(), dto.TestFromFiltersDTO{
		Name:    " Algebra 2024-1 ",
		Filters: dto.QuestionSetQuery{Section: "MATH", Course: "ALG", Period: "2024-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Algebra 2024-1", created.Name)
	assert.Equal(t, []string{"q4", "q1", "q2", "q3"}, tests.createdWith)
	assert.Equal(t, repository.QuestionSetFilter{Section: "MATH", Course: "ALG", Period: "2024-1"}, questions.filter)
}

func TestCreateTestFromFiltersRejectsEmptyMatch(t *testing.T) {
	tests := &stubTestRepo{}
	svc := NewTestService(tests, &stubQuestionRepo{})

	_, err := svc.CreateTestFromFilters(context.Background(), dto.TestFromFiltersDTO{
		Name:    "Empty",
		Filters: dto.QuestionSetQuery{Type: "ESSAY"},
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "filters")
	assert.Nil(t, tests.created, "no test is written when nothing matches")
}

func TestCreateTestFromFiltersRequiresName(t *testing.T) {
	questions := &stubQuestionRepo{forSets: []model.Question{titledQuestion("q1", "Limits")}}
	svc := NewTestService(&stubTestRepo{}, questions)

	_, err := svc.CreateTestFromFilters(context.Background(), dto.TestFromFiltersDTO{Name: "  "})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
}

func TestPreviewTestQuestions(t *testing.T) {
	questions := &stubQuestionRepo{forSets: []model.Question{
		titledQuestion("q2", "Series"),
		titledQuestion("q1", "Integrals"),
	}}
	svc := NewTestService(&stubTestRepo{}, questions)

	preview, err := svc.PreviewTestQuestions(context.Background(), dto.QuestionSetQuery{Course: "ALG"})
	require.NoError(t, err)

	require.Len(t, preview, 2)
	assert.Equal(t, "Integrals", preview[0].Title)
	assert.Equal(t, "Series", preview[1].Title)
	assert.NotNil(t, preview[0].Options)
	assert.Equal(t, "ALG", questions.filter.Course)

	empty, err := NewTestService(&stubTestRepo{}, &stubQuestionRepo{}).PreviewTestQuestions(context.Background(), dto.QuestionSetQuery{})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
