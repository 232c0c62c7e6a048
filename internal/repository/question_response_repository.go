package repository

import (
	"context"
	"fmt"

	"github.com/lshigami/prepbank/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResponseMutation receives the locked response, with its attempt and its
// question (options loaded), and returns the columns to update. An empty map
// means nothing changes and no write is issued.
type ResponseMutation func(current *model.QuestionResponse) (map[string]interface{}, error)

type QuestionResponseRepository interface {
	FindByAttemptAndQuestion(ctx context.Context, attemptID, questionID string) (*model.QuestionResponse, error)
	FindAllByAttempt(ctx context.Context, attemptID string) ([]model.QuestionResponse, error)
	Modify(ctx context.Context, attemptID, questionID string, mutate ResponseMutation) (*model.QuestionResponse, error)
}

type questionResponseRepository struct {
	db *gorm.DB
}

func NewQuestionResponseRepository(db *gorm.DB) QuestionResponseRepository {
	return &questionResponseRepository{db: db}
}

const responseEntity = "QuestionResponse"

func responseKey(attemptID, questionID string) string {
	return fmt.Sprintf("attempt %s, question %s", attemptID, questionID)
}

func withResponseContext(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Question", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Question.Options", orderedOptions).
		Preload("SelectedOption", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
}

func (r *questionResponseRepository) FindByAttemptAndQuestion(ctx context.Context, attemptID, questionID string) (*model.QuestionResponse, error) {
	var response model.QuestionResponse
	err := withResponseContext(r.db.WithContext(ctx)).
		Where("attempt_id = ? AND question_id = ?", attemptID, questionID).
		First(&response).Error
	if err != nil {
		return nil, translateError(responseEntity, "retrieving", responseKey(attemptID, questionID), err)
	}
	return &response, nil
}

func (r *questionResponseRepository) FindAllByAttempt(ctx context.Context, attemptID string) ([]model.QuestionResponse, error) {
	responses := []model.QuestionResponse{}
	err := withResponseContext(r.db.WithContext(ctx)).
		Preload("Question.Course").
		Where("attempt_id = ?", attemptID).
		Order("position ASC").
		Find(&responses).Error
	if err != nil {
		return nil, translateError(responseEntity, "retrieving", attemptID, err)
	}
	return responses, nil
}

// Modify performs a read-modify-write of one response inside a transaction.
// The attempt row is share-locked and the response row is locked for update,
// so concurrent modifications of the same response serialize and cannot
// interleave with Finish on the same attempt.
func (r *questionResponseRepository) Modify(ctx context.Context, attemptID, questionID string, mutate ResponseMutation) (*model.QuestionResponse, error) {
	key := responseKey(attemptID, questionID)
	var mutateErr error
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var attempt model.TestAttempt
		if err := tx.Clauses(clause.Locking{Strength: "SHARE"}).First(&attempt, "id = ?", attemptID).Error; err != nil {
			return err
		}
		var current model.QuestionResponse
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("attempt_id = ? AND question_id = ?", attemptID, questionID).
			First(&current).Error; err != nil {
			return err
		}
		var question model.Question
		if err := tx.Unscoped().Preload("Options", orderedOptions).First(&question, "id = ?", questionID).Error; err != nil {
			return err
		}
		current.Attempt = &attempt
		current.Question = &question

		changes, err := mutate(&current)
		if err != nil {
			mutateErr = err
			return err
		}
		if len(changes) == 0 {
			return nil
		}
		return tx.Model(&model.QuestionResponse{}).Where("id = ?", current.ID).Updates(changes).Error
	})
	if mutateErr != nil {
		return nil, mutateErr
	}
	if err != nil {
		return nil, translateError(responseEntity, "updating", key, err)
	}
	return r.FindByAttemptAndQuestion(ctx, attemptID, questionID)
}
