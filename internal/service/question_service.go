package service

import (
	"context"
	"strings"

	"github.com/lshigami/prepbank/internal/dto"
	"github.com/lshigami/prepbank/internal/model"
	"github.com/lshigami/prepbank/internal/repository"
	"github.com/rs/zerolog/log"
)

type QuestionService interface {
	CreateQuestion(ctx context.Context, req dto.QuestionCreateDTO) (*dto.QuestionDTO, error)
	GetQuestion(ctx context.Context, id string) (*dto.QuestionDTO, error)
	GetQuestionByCode(ctx context.Context, code string) (*dto.QuestionDTO, error)
	ListQuestions(ctx context.Context, filters map[string]interface{}, opts repository.QueryOptions) ([]dto.QuestionDTO, error)
	UpdateQuestion(ctx context.Context, id string, req dto.QuestionUpdateDTO) (*dto.QuestionDTO, error)
	DeleteQuestion(ctx context.Context, id string) error
	QuestionSets(ctx context.Context, query dto.QuestionSetQuery) ([]dto.QuestionSetDTO, error)
	AvailableFilters(ctx context.Context) (*dto.QuestionFiltersDTO, error)
}

type questionService struct {
	repo       repository.QuestionRepository
	courseRepo repository.CourseRepository
}

func NewQuestionService(repo repository.QuestionRepository, courseRepo repository.CourseRepository) QuestionService {
	return &questionService{repo: repo, courseRepo: courseRepo}
}

func (s *questionService) CreateQuestion(ctx context.Context, req dto.QuestionCreateDTO) (*dto.QuestionDTO, error) {
	course, err := s.courseRepo.FindByCode(ctx, req.CourseCode)
	if err != nil {
		return nil, err
	}
	if req.CorrectLabel != nil && strings.TrimSpace(*req.CorrectLabel) == "" {
		return nil, newValidationError("correct_label", "must not be blank")
	}

	question := model.Question{}
	if err := mapInto(&question, &req, "question"); err != nil {
		return nil, err
	}
	question.CourseID = course.ID

	if err := s.repo.Create(ctx, &question); err != nil {
		log.Error().Err(err).Str("uniqueCode", req.UniqueCode).Msg("Failed to create question")
		return nil, err
	}
	return s.GetQuestion(ctx, question.ID)
}

func (s *questionService) GetQuestion(ctx context.Context, id string) (*dto.QuestionDTO, error) {
	question, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toQuestionDTO(question)
}

func (s *questionService) GetQuestionByCode(ctx context.Context, code string) (*dto.QuestionDTO, error) {
	question, err := s.repo.FindByUniqueCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return toQuestionDTO(question)
}

// ListQuestions runs filters through the generic filter builder, so plain
// text fields match case-insensitively and field__op keys select operators.
func (s *questionService) ListQuestions(ctx context.Context, filters map[string]interface{}, opts repository.QueryOptions) ([]dto.QuestionDTO, error) {
	questions, err := s.repo.GetAll(ctx, filters, opts)
	if err != nil {
		return nil, err
	}
	out := []dto.QuestionDTO{}
	if err := mapInto(&out, &questions, "questions"); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *questionService) UpdateQuestion(ctx context.Context, id string, req dto.QuestionUpdateDTO) (*dto.QuestionDTO, error) {
	fields := patchFields{}
	fields.str("unique_code", req.UniqueCode)
	fields.str("title", req.Title)
	fields.str("content", req.Content)
	fields.str("period", req.Period)
	fields.str("type", req.Type)
	fields.nullableStr("solution", req.Solution)
	fields.nullableStr("correct_label", req.CorrectLabel)
	fields.list("image_urls", req.ImageURLs)
	if req.Content != nil || req.CorrectLabel != nil {
		// the cached explanation describes the old content
		fields["ai_explanation"] = nil
	}
	if req.CourseCode != nil {
		course, err := s.courseRepo.FindByCode(ctx, *req.CourseCode)
		if err != nil {
			return nil, err
		}
		fields["course_id"] = course.ID
	}

	if _, err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.GetQuestion(ctx, id)
}

func (s *questionService) DeleteQuestion(ctx context.Context, id string) error {
	if _, err := s.repo.Delete(ctx, id, true); err != nil {
		return err
	}
	log.Info().Str("questionID", id).Msg("Question deleted")
	return nil
}

// QuestionSets groups the matching questions by section, course, type and
// period, in that order.
func (s *questionService) QuestionSets(ctx context.Context, query dto.QuestionSetQuery) ([]dto.QuestionSetDTO, error) {
	questions, err := s.repo.FindForSets(ctx, repository.QuestionSetFilter{
		Section: query.Section,
		Course:  query.Course,
		Type:    query.Type,
		Period:  query.Period,
	})
	if err != nil {
		return nil, err
	}
	return groupQuestionSets(questions)
}

func groupQuestionSets(questions []model.Question) ([]dto.QuestionSetDTO, error) {
	sets := []dto.QuestionSetDTO{}
	index := map[[4]string]int{}
	for i := range questions {
		q := &questions[i]
		var section, course string
		if q.Course != nil {
			course = q.Course.Code
			if q.Course.Section != nil {
				section = q.Course.Section.Code
			}
		}
		key := [4]string{section, course, q.Type, q.Period}
		pos, ok := index[key]
		if !ok {
			pos = len(sets)
			index[key] = pos
			sets = append(sets, dto.QuestionSetDTO{Section: section, Course: course, Type: q.Type, Period: q.Period})
		}
		item, err := toQuestionDTO(q)
		if err != nil {
			return nil, err
		}
		sets[pos].Questions = append(sets[pos].Questions, *item)
	}
	return sets, nil
}

func (s *questionService) AvailableFilters(ctx context.Context) (*dto.QuestionFiltersDTO, error) {
	facets, err := s.repo.Facets(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.QuestionFiltersDTO{
		Sections: nonNil(facets.Sections),
		Courses:  nonNil(facets.Courses),
		Types:    nonNil(facets.Types),
		Periods:  nonNil(facets.Periods),
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func toQuestionDTO(q *model.Question) (*dto.QuestionDTO, error) {
	var out dto.QuestionDTO
	if err := mapInto(&out, q, "question"); err != nil {
		return nil, err
	}
	if out.Options == nil {
		out.Options = []dto.OptionDTO{}
	}
	return &out, nil
}
