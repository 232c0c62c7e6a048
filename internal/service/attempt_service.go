package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"github.com/lshigami/prepbank/internal/dto"
	"github.com/lshigami/prepbank/internal/model"
	"github.com/lshigami/prepbank/internal/repository"
	"github.com/rs/zerolog/log"
)

// AttemptService runs practice attempts: it starts them, records per-question
// responses while they are in progress and grades them when they finish.
type AttemptService interface {
	StartAttempt(ctx context.Context, userID, testID string) (*dto.TestAttemptDetailDTO, error)
	UpdateResponse(ctx context.Context, attemptID, questionID string, patch ResponsePatch) (*dto.QuestionResponseDTO, error)
	FinishAttempt(ctx context.Context, attemptID string) (*dto.TestAttemptDetailDTO, error)
	GetAttempt(ctx context.Context, attemptID string) (*dto.TestAttemptDetailDTO, error)
	ListUserAttempts(ctx context.Context, userID string) ([]dto.TestAttemptSummaryDTO, error)
	ListAttempts(ctx context.Context, filters map[string]interface{}, opts repository.QueryOptions) ([]dto.TestAttemptSummaryDTO, error)
	GetResponse(ctx context.Context, attemptID, questionID string) (*dto.QuestionResponseDTO, error)
	ListAttemptResponses(ctx context.Context, attemptID string) ([]dto.QuestionResponseDTO, error)
	AbandonStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

type attemptService struct {
	attemptRepo  repository.TestAttemptRepository
	responseRepo repository.QuestionResponseRepository
	testRepo     repository.TestRepository
	userRepo     repository.UserRepository
	now          func() time.Time
}

func NewAttemptService(
	attemptRepo repository.TestAttemptRepository,
	responseRepo repository.QuestionResponseRepository,
	testRepo repository.TestRepository,
	userRepo repository.UserRepository,
) AttemptService {
	return &attemptService{
		attemptRepo:  attemptRepo,
		responseRepo: responseRepo,
		testRepo:     testRepo,
		userRepo:     userRepo,
		now:          time.Now,
	}
}

// StartAttempt creates an in-progress attempt with one blank response per
// question of the test, in the test's question order. The attempt and all of
// its responses are written in a single transaction.
func (s *attemptService) StartAttempt(ctx context.Context, userID, testID string) (*dto.TestAttemptDetailDTO, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	test, err := s.testRepo.FindByIDWithQuestions(ctx, testID)
	if err != nil {
		return nil, err
	}
	if len(test.Questions) == 0 {
		log.Warn().Str("testID", testID).Msg("StartAttempt: test has no questions")
		return nil, repository.NewNotFound("Question", fmt.Sprintf("for test %s", testID))
	}

	attempt := model.TestAttempt{
		UserID:    userID,
		TestID:    testID,
		Status:    model.AttemptInProgress,
		StartedAt: s.now(),
		Responses: make([]model.QuestionResponse, len(test.Questions)),
	}
	for i, q := range test.Questions {
		attempt.Responses[i] = model.QuestionResponse{QuestionID: q.ID, Position: i}
	}

	if err := s.attemptRepo.CreateWithResponses(ctx, &attempt); err != nil {
		log.Error().Err(err).Str("testID", testID).Str("userID", userID).Msg("StartAttempt: failed to create attempt")
		return nil, err
	}
	log.Info().Str("attemptID", attempt.ID).Str("testID", testID).Int("responses", len(attempt.Responses)).Msg("Attempt started")
	return s.GetAttempt(ctx, attempt.ID)
}

// UpdateResponse applies patch to the response of questionID within the
// attempt. The read-modify-write runs under row locks so concurrent updates
// of the same response never lose a delta.
func (s *attemptService) UpdateResponse(ctx context.Context, attemptID, questionID string, patch ResponsePatch) (*dto.QuestionResponseDTO, error) {
	updated, err := s.responseRepo.Modify(ctx, attemptID, questionID, func(current *model.QuestionResponse) (map[string]interface{}, error) {
		if current.Attempt.Status != model.AttemptInProgress {
			return nil, ErrAttemptClosed
		}
		return ApplyResponsePatch(current, patch)
	})
	if err != nil {
		return nil, err
	}
	return toResponseDTO(updated)
}

// FinishAttempt grades the attempt and marks it completed. Finishing an
// already completed attempt returns the stored result unchanged.
func (s *attemptService) FinishAttempt(ctx context.Context, attemptID string) (*dto.TestAttemptDetailDTO, error) {
	err := s.attemptRepo.Finish(ctx, attemptID, func(attempt *model.TestAttempt) (*repository.AttemptCompletion, error) {
		switch attempt.Status {
		case model.AttemptCompleted:
			log.Info().Str("attemptID", attemptID).Msg("FinishAttempt: attempt already completed")
			return nil, nil
		case model.AttemptInProgress:
			return GradeAttempt(attempt, s.now()), nil
		default:
			return nil, ErrAttemptClosed
		}
	})
	if err != nil {
		return nil, err
	}
	result, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	log.Info().Str("attemptID", attemptID).Interface("score", result.Score).Msg("Attempt finished")
	return result, nil
}

func (s *attemptService) GetAttempt(ctx context.Context, attemptID string) (*dto.TestAttemptDetailDTO, error) {
	attempt, err := s.attemptRepo.FindByIDWithDetails(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	var out dto.TestAttemptDetailDTO
	if err := copier.Copy(&out, attempt); err != nil {
		return nil, fmt.Errorf("failed to map attempt %s: %w", attemptID, err)
	}
	return &out, nil
}

func (s *attemptService) ListUserAttempts(ctx context.Context, userID string) ([]dto.TestAttemptSummaryDTO, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	attempts, err := s.attemptRepo.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toAttemptSummaries(attempts), nil
}

// ListAttempts lists attempts matching filters, built with the generic filter
// builder (e.g. status, test_id, started_at__gte).
func (s *attemptService) ListAttempts(ctx context.Context, filters map[string]interface{}, opts repository.QueryOptions) ([]dto.TestAttemptSummaryDTO, error) {
	opts.Preloads = append(opts.Preloads, "Responses")
	attempts, err := s.attemptRepo.GetAll(ctx, filters, opts)
	if err != nil {
		return nil, err
	}
	return toAttemptSummaries(attempts), nil
}

func (s *attemptService) GetResponse(ctx context.Context, attemptID, questionID string) (*dto.QuestionResponseDTO, error) {
	response, err := s.responseRepo.FindByAttemptAndQuestion(ctx, attemptID, questionID)
	if err != nil {
		return nil, err
	}
	return toResponseDTO(response)
}

func (s *attemptService) ListAttemptResponses(ctx context.Context, attemptID string) ([]dto.QuestionResponseDTO, error) {
	if _, err := s.attemptRepo.GetByID(ctx, attemptID); err != nil {
		return nil, err
	}
	responses, err := s.responseRepo.FindAllByAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	out := []dto.QuestionResponseDTO{}
	if err := copier.Copy(&out, &responses); err != nil {
		return nil, fmt.Errorf("failed to map responses of attempt %s: %w", attemptID, err)
	}
	return out, nil
}

// AbandonStale marks in-progress attempts started more than olderThan ago as
// abandoned and returns how many were closed.
func (s *attemptService) AbandonStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	now := s.now()
	n, err := s.attemptRepo.AbandonStartedBefore(ctx, now.Add(-olderThan), now)
	if err != nil {
		log.Error().Err(err).Msg("AbandonStale: failed to abandon attempts")
		return 0, err
	}
	if n > 0 {
		log.Info().Int64("count", n).Dur("olderThan", olderThan).Msg("Abandoned stale attempts")
	}
	return n, nil
}

func toResponseDTO(r *model.QuestionResponse) (*dto.QuestionResponseDTO, error) {
	var out dto.QuestionResponseDTO
	if err := copier.Copy(&out, r); err != nil {
		return nil, fmt.Errorf("failed to map response %s: %w", r.ID, err)
	}
	return &out, nil
}

func toAttemptSummaries(attempts []model.TestAttempt) []dto.TestAttemptSummaryDTO {
	out := make([]dto.TestAttemptSummaryDTO, 0, len(attempts))
	for _, a := range attempts {
		summary := dto.TestAttemptSummaryDTO{
			ID:            a.ID,
			UserID:        a.UserID,
			TestID:        a.TestID,
			Status:        string(a.Status),
			StartedAt:     a.StartedAt,
			FinishedAt:    a.FinishedAt,
			Score:         a.Score,
			ResponseCount: len(a.Responses),
		}
		if a.Test != nil {
			summary.TestName = a.Test.Name
		}
		for _, r := range a.Responses {
			if r.SelectedOptionID != nil {
				summary.AnsweredCount++
			}
		}
		out = append(out, summary)
	}
	return out
}
