package service

import (
	"context"

	"github.com/lshigami/prepbank/internal/dto"
	"github.com/lshigami/prepbank/internal/model"
	"github.com/lshigami/prepbank/internal/repository"
	"github.com/rs/zerolog/log"
)

type OptionService interface {
	CreateOption(ctx context.Context, req dto.OptionCreateDTO) (*dto.OptionDTO, error)
	GetOption(ctx context.Context, id string) (*dto.OptionDTO, error)
	ListByQuestionCode(ctx context.Context, questionCode string) ([]dto.OptionDTO, error)
	UpdateOption(ctx context.Context, id string, req dto.OptionUpdateDTO) (*dto.OptionDTO, error)
	DeleteOption(ctx context.Context, id string) error
}

type optionService struct {
	repo         repository.OptionRepository
	questionRepo repository.QuestionRepository
}

func NewOptionService(repo repository.OptionRepository, questionRepo repository.QuestionRepository) OptionService {
	return &optionService{repo: repo, questionRepo: questionRepo}
}

func (s *optionService) CreateOption(ctx context.Context, req dto.OptionCreateDTO) (*dto.OptionDTO, error) {
	question, err := s.questionRepo.FindByUniqueCode(ctx, req.QuestionCode)
	if err != nil {
		return nil, err
	}
	if _, exists := optionWithLabel(question, req.Label); exists {
		return nil, newValidationError("label", "option "+req.Label+" already exists on question "+req.QuestionCode)
	}
	option := model.Option{}
	if err := mapInto(&option, &req, "option"); err != nil {
		return nil, err
	}
	option.QuestionID = question.ID
	if err := s.repo.Create(ctx, &option); err != nil {
		log.Error().Err(err).Str("questionCode", req.QuestionCode).Msg("Failed to create option")
		return nil, err
	}
	return toOptionDTO(&option)
}

func optionWithLabel(q *model.Question, label string) (*model.Option, bool) {
	for i := range q.Options {
		if q.Options[i].Label == label {
			return &q.Options[i], true
		}
	}
	return nil, false
}

func (s *optionService) GetOption(ctx context.Context, id string) (*dto.OptionDTO, error) {
	option, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toOptionDTO(option)
}

func (s *optionService) ListByQuestionCode(ctx context.Context, questionCode string) ([]dto.OptionDTO, error) {
	options, err := s.repo.FindByQuestionCode(ctx, questionCode)
	if err != nil {
		return nil, err
	}
	out := []dto.OptionDTO{}
	if err := mapInto(&out, &options, "options"); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *optionService) UpdateOption(ctx context.Context, id string, req dto.OptionUpdateDTO) (*dto.OptionDTO, error) {
	fields := patchFields{}
	fields.str("label", req.Label)
	fields.str("text", req.Text)
	fields.list("image_urls", req.ImageURLs)
	if req.QuestionCode != nil {
		question, err := s.questionRepo.FindByUniqueCode(ctx, *req.QuestionCode)
		if err != nil {
			return nil, err
		}
		fields["question_id"] = question.ID
	}
	option, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	return toOptionDTO(option)
}

func (s *optionService) DeleteOption(ctx context.Context, id string) error {
	_, err := s.repo.Delete(ctx, id, true)
	return err
}

func toOptionDTO(o *model.Option) (*dto.OptionDTO, error) {
	var out dto.OptionDTO
	if err := mapInto(&out, o, "option"); err != nil {
		return nil, err
	}
	return &out, nil
}
