package service

import (
	"context"
	"sort"
	"strings"

	"github.com/lshigami/prepbank/internal/dto"
	"github.com/lshigami/prepbank/internal/model"
	"github.com/lshigami/prepbank/internal/repository"
	"github.com/rs/zerolog/log"
)

type TestService interface {
	CreateTest(ctx context.Context, req dto.TestCreateDTO) (*dto.TestDTO, error)
	PreviewTestQuestions(ctx context.Context, query dto.QuestionSetQuery) ([]dto.QuestionDTO, error)
	CreateTestFromFilters(ctx context.Context, req dto.TestFromFiltersDTO) (*dto.TestDTO, error)
	GetTestDetails(ctx context.Context, id string) (*dto.TestDTO, error)
	ListTests(ctx context.Context, filters map[string]interface{}, opts repository.QueryOptions) ([]dto.TestSummaryDTO, error)
	RenameTest(ctx context.Context, id string, req dto.TestUpdateDTO) (*dto.TestDTO, error)
	DeleteTest(ctx context.Context, id string) error
	AddQuestions(ctx context.Context, id string, questionIDs []string) (*dto.TestDTO, error)
	RemoveQuestions(ctx context.Context, id string, questionIDs []string) (*dto.TestDTO, error)
}

type testService struct {
	testRepo     repository.TestRepository
	questionRepo repository.QuestionRepository
}

func NewTestService(testRepo repository.TestRepository, questionRepo repository.QuestionRepository) TestService {
	return &testService{testRepo: testRepo, questionRepo: questionRepo}
}

func (s *testService) CreateTest(ctx context.Context, req dto.TestCreateDTO) (*dto.TestDTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, newValidationError("name", "must not be blank")
	}
	ids, err := s.existingQuestionIDs(ctx, req.QuestionIDs)
	if err != nil {
		return nil, err
	}
	test := model.Test{Name: name}
	if err := s.testRepo.CreateWithQuestions(ctx, &test, ids); err != nil {
		log.Error().Err(err).Str("name", name).Msg("Failed to create test")
		return nil, err
	}
	log.Info().Str("testID", test.ID).Int("questions", len(ids)).Msg("Test created")
	return s.GetTestDetails(ctx, test.ID)
}

// PreviewTestQuestions lists, in title order, the questions a test created
// from query would hold.
func (s *testService) PreviewTestQuestions(ctx context.Context, query dto.QuestionSetQuery) ([]dto.QuestionDTO, error) {
	questions, err := s.matchingQuestions(ctx, query)
	if err != nil {
		return nil, err
	}
	out := make([]dto.QuestionDTO, 0, len(questions))
	for i := range questions {
		q, err := toQuestionDTO(&questions[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	return out, nil
}

// CreateTestFromFilters creates a test from every question matching the
// filters. A filter that matches nothing is rejected.
func (s *testService) CreateTestFromFilters(ctx context.Context, req dto.TestFromFiltersDTO) (*dto.TestDTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, newValidationError("name", "must not be blank")
	}
	questions, err := s.matchingQuestions(ctx, req.Filters)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		log.Warn().Interface("filters", req.Filters).Msg("CreateTestFromFilters: no question matches")
		return nil, newValidationError("filters", "no question matches the given filters")
	}
	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	test := model.Test{Name: name}
	if err := s.testRepo.CreateWithQuestions(ctx, &test, ids); err != nil {
		log.Error().Err(err).Str("name", name).Msg("Failed to create test from filters")
		return nil, err
	}
	log.Info().Str("testID", test.ID).Int("questions", len(ids)).Msg("Test created from filters")
	return s.GetTestDetails(ctx, test.ID)
}

func (s *testService) matchingQuestions(ctx context.Context, query dto.QuestionSetQuery) ([]model.Question, error) {
	questions, err := s.questionRepo.FindForSets(ctx, repository.QuestionSetFilter{
		Section: query.Section,
		Course:  query.Course,
		Type:    query.Type,
		Period:  query.Period,
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(questions, func(i, j int) bool {
		if questions[i].Title != questions[j].Title {
			return questions[i].Title < questions[j].Title
		}
		return questions[i].ID < questions[j].ID
	})
	return questions, nil
}

// existingQuestionIDs deduplicates ids and checks that each names a live question.
func (s *testService) existingQuestionIDs(ctx context.Context, ids []string) ([]string, error) {
	seen := make(map[string]bool, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return unique, nil
	}
	found, err := s.questionRepo.FindByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(found))
	for _, q := range found {
		present[q.ID] = true
	}
	for _, id := range unique {
		if !present[id] {
			return nil, repository.NewNotFound("Question", id)
		}
	}
	return unique, nil
}

func (s *testService) GetTestDetails(ctx context.Context, id string) (*dto.TestDTO, error) {
	test, err := s.testRepo.FindByIDWithQuestions(ctx, id)
	if err != nil {
		return nil, err
	}
	var out dto.TestDTO
	if err := mapInto(&out, test, "test"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *testService) ListTests(ctx context.Context, filters map[string]interface{}, opts repository.QueryOptions) ([]dto.TestSummaryDTO, error) {
	rows, err := s.testRepo.FindAllWithCounts(ctx, filters, opts)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TestSummaryDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.TestSummaryDTO{
			ID:            r.ID,
			Name:          r.Name,
			QuestionCount: r.QuestionCount,
			AttemptCount:  r.AttemptCount,
			CreatedAt:     r.CreatedAt,
		})
	}
	return out, nil
}

func (s *testService) RenameTest(ctx context.Context, id string, req dto.TestUpdateDTO) (*dto.TestDTO, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, newValidationError("name", "must not be blank")
	}
	if _, err := s.testRepo.Update(ctx, id, map[string]interface{}{"name": name}); err != nil {
		return nil, err
	}
	return s.GetTestDetails(ctx, id)
}

func (s *testService) DeleteTest(ctx context.Context, id string) error {
	_, err := s.testRepo.Delete(ctx, id, true)
	return err
}

func (s *testService) AddQuestions(ctx context.Context, id string, questionIDs []string) (*dto.TestDTO, error) {
	ids, err := s.existingQuestionIDs(ctx, questionIDs)
	if err != nil {
		return nil, err
	}
	if err := s.testRepo.AddQuestions(ctx, id, ids); err != nil {
		return nil, err
	}
	return s.GetTestDetails(ctx, id)
}

func (s *testService) RemoveQuestions(ctx context.Context, id string, questionIDs []string) (*dto.TestDTO, error) {
	if err := s.testRepo.RemoveQuestions(ctx, id, questionIDs); err != nil {
		return nil, err
	}
	return s.GetTestDetails(ctx, id)
}
