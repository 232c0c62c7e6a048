package repository

import (
	"context"
	"time"

	"github.com/lshigami/prepbank/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AttemptCompletion is the final state written when an attempt is finished.
// Grades maps response id to its is_correct value.
type AttemptCompletion struct {
	FinishedAt time.Time
	Score      float64
	Grades     map[string]*bool
}

// AttemptGrader inspects a locked attempt (responses loaded with question and
// selected option) and returns the completion to persist, or nil to leave the
// attempt untouched.
type AttemptGrader func(attempt *model.TestAttempt) (*AttemptCompletion, error)

type TestAttemptRepository interface {
	GetByID(ctx context.Context, id string, preloads ...string) (*model.TestAttempt, error)
	GetAll(ctx context.Context, filters map[string]interface{}, opts QueryOptions) ([]model.TestAttempt, error)
	CreateWithResponses(ctx context.Context, attempt *model.TestAttempt) error
	FindByIDWithDetails(ctx context.Context, id string) (*model.TestAttempt, error)
	FindByIDWithResponses(ctx context.Context, id string) (*model.TestAttempt, error)
	FindAllByUser(ctx context.Context, userID string) ([]model.TestAttempt, error)
	Finish(ctx context.Context, id string, grade AttemptGrader) error
	AbandonStartedBefore(ctx context.Context, cutoff, now time.Time) (int64, error)
}

type testAttemptRepository struct {
	CRUDRepository[model.TestAttempt]
	db *gorm.DB
}

func NewTestAttemptRepository(db *gorm.DB) TestAttemptRepository {
	return &testAttemptRepository{
		CRUDRepository: NewCRUDRepository[model.TestAttempt](db, "TestAttempt", "Test", "User"),
		db:             db,
	}
}

func orderedResponses(db *gorm.DB) *gorm.DB {
	return db.Order("question_responses.position ASC")
}

// CreateWithResponses inserts the attempt and its responses in one transaction.
func (r *testAttemptRepository) CreateWithResponses(ctx context.Context, attempt *model.TestAttempt) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Test", "User", "Responses.Question", "Responses.SelectedOption").Create(attempt).Error
	})
	return translateError(r.Entity(), "creating", "", err)
}

func (r *testAttemptRepository) FindByIDWithDetails(ctx context.Context, id string) (*model.TestAttempt, error) {
	var attempt model.TestAttempt
	err := r.db.WithContext(ctx).
		Preload("Test").
		Preload("Test.Questions", QuestionOrder).
		Preload("Test.Questions.Options", orderedOptions).
		Preload("Test.Questions.Course").
		Preload("Responses", orderedResponses).
		Preload("Responses.Question", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Responses.Question.Options", orderedOptions).
		Preload("Responses.SelectedOption", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("User").
		First(&attempt, "id = ?", id).Error
	if err != nil {
		return nil, translateError(r.Entity(), "retrieving", id, err)
	}
	return &attempt, nil
}

func (r *testAttemptRepository) FindByIDWithResponses(ctx context.Context, id string) (*model.TestAttempt, error) {
	var attempt model.TestAttempt
	if err := loadForGrading(r.db.WithContext(ctx)).First(&attempt, "id = ?", id).Error; err != nil {
		return nil, translateError(r.Entity(), "retrieving", id, err)
	}
	return &attempt, nil
}

func loadForGrading(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Responses", orderedResponses).
		Preload("Responses.Question", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Responses.SelectedOption", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
}

func (r *testAttemptRepository) FindAllByUser(ctx context.Context, userID string) ([]model.TestAttempt, error) {
	attempts := []model.TestAttempt{}
	err := r.db.WithContext(ctx).
		Preload("Test").
		Preload("Responses").
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Find(&attempts).Error
	if err != nil {
		return nil, translateError(r.Entity(), "retrieving", userID, err)
	}
	return attempts, nil
}

// Finish locks the attempt row, hands the attempt to grade and writes the
// returned completion (per-response grades, status, finish time and score)
// in the same transaction. The completion is written only while the attempt
// is still in progress.
func (r *testAttemptRepository) Finish(ctx context.Context, id string, grade AttemptGrader) error {
	var graderErr error
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked model.TestAttempt
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&locked, "id = ?", id).Error; err != nil {
			return err
		}
		var attempt model.TestAttempt
		if err := loadForGrading(tx).First(&attempt, "id = ?", id).Error; err != nil {
			return err
		}
		completion, err := grade(&attempt)
		if err != nil {
			graderErr = err
			return err
		}
		if completion == nil {
			return nil
		}
		res := tx.Model(&model.TestAttempt{}).
			Where("id = ? AND status = ?", id, model.AttemptInProgress).
			Updates(map[string]interface{}{
				"status":      model.AttemptCompleted,
				"finished_at": completion.FinishedAt,
				"score":       completion.Score,
			})
		if res.Error != nil {
			return res.Error
		}
		// already closed: grades stay as first written
		if res.RowsAffected == 0 {
			return nil
		}
		for responseID, isCorrect := range completion.Grades {
			if err := tx.Model(&model.QuestionResponse{}).
				Where("id = ?", responseID).
				Update("is_correct", isCorrect).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if graderErr != nil {
		return graderErr
	}
	return translateError(r.Entity(), "finishing", id, err)
}

// AbandonStartedBefore closes in-progress attempts started before cutoff.
func (r *testAttemptRepository) AbandonStartedBefore(ctx context.Context, cutoff, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.TestAttempt{}).
		Where("status = ? AND started_at < ?", model.AttemptInProgress, cutoff).
		Updates(map[string]interface{}{
			"status":      model.AttemptAbandoned,
			"finished_at": now,
		})
	if res.Error != nil {
		return 0, translateError(r.Entity(), "abandoning", "", res.Error)
	}
	return res.RowsAffected, nil
}
