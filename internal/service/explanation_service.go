package service

import (
	"context"
	"strings"

	"github.com/lshigami/prepbank/internal/dto"
	"github.com/lshigami/prepbank/internal/repository"
	"github.com/rs/zerolog/log"
)

const (
	ExplanationFromSolution = "solution"
	ExplanationFromAI       = "ai"
)

type ExplanationService interface {
	ExplainQuestion(ctx context.Context, questionID string) (*dto.QuestionExplanationDTO, error)
}

type explanationService struct {
	questionRepo repository.QuestionRepository
	generator    ExplanationGenerator
}

func NewExplanationService(questionRepo repository.QuestionRepository, generator ExplanationGenerator) ExplanationService {
	return &explanationService{questionRepo: questionRepo, generator: generator}
}

// ExplainQuestion returns the authored solution when there is one, otherwise
// the cached AI explanation, generating and caching it on first request.
func (s *explanationService) ExplainQuestion(ctx context.Context, questionID string) (*dto.QuestionExplanationDTO, error) {
	question, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	out := &dto.QuestionExplanationDTO{QuestionID: question.ID}
	if question.Solution != nil && strings.TrimSpace(*question.Solution) != "" {
		out.Explanation, out.Source = *question.Solution, ExplanationFromSolution
		return out, nil
	}
	if question.AIExplanation != nil && *question.AIExplanation != "" {
		out.Explanation, out.Source = *question.AIExplanation, ExplanationFromAI
		return out, nil
	}
	if s.generator == nil || !s.generator.Available() {
		return nil, ErrExplanationUnavailable
	}

	text, err := s.generator.Explain(ctx, question)
	if err != nil {
		return nil, err
	}
	if _, err := s.questionRepo.Update(ctx, question.ID, map[string]interface{}{"ai_explanation": text}); err != nil {
		// the explanation is still usable, it just gets generated again next time
		log.Error().Err(err).Str("questionID", question.ID).Msg("Failed to cache AI explanation")
	}
	out.Explanation, out.Source = text, ExplanationFromAI
	return out, nil
}
