package repository

import (
	"context"

	"github.com/lshigami/prepbank/internal/model"
	"gorm.io/gorm"
)

// TestWithCounts is a test row plus its live question and attempt counts.
type TestWithCounts struct {
	model.Test
	QuestionCount int
	AttemptCount  int
}

type TestRepository interface {
	GetByID(ctx context.Context, id string, preloads ...string) (*model.Test, error)
	Create(ctx context.Context, test *model.Test) error
	Update(ctx context.Context, id string, fields map[string]interface{}) (*model.Test, error)
	Delete(ctx context.Context, id string, soft bool) (*model.Test, error)
	CreateWithQuestions(ctx context.Context, test *model.Test, questionIDs []string) error
	FindByIDWithQuestions(ctx context.Context, id string) (*model.Test, error)
	FindAllWithCounts(ctx context.Context, filters map[string]interface{}, opts QueryOptions) ([]TestWithCounts, error)
	AddQuestions(ctx context.Context, testID string, questionIDs []string) error
	RemoveQuestions(ctx context.Context, testID string, questionIDs []string) error
}

type testRepository struct {
	CRUDRepository[model.Test]
	db *gorm.DB
}

func NewTestRepository(db *gorm.DB) TestRepository {
	return &testRepository{CRUDRepository: NewCRUDRepository[model.Test](db, "Test"), db: db}
}

// QuestionOrder is the stable order in which a test presents its questions.
func QuestionOrder(db *gorm.DB) *gorm.DB {
	return db.Order("questions.title ASC, questions.id ASC")
}

// CreateWithQuestions inserts the test and links the given existing questions
// in one transaction.
func (r *testRepository) CreateWithQuestions(ctx context.Context, test *model.Test, questionIDs []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Questions", "Attempts").Create(test).Error; err != nil {
			return err
		}
		if len(questionIDs) == 0 {
			return nil
		}
		return tx.Model(test).Omit("Questions.*").Association("Questions").Append(questionRefs(questionIDs))
	})
	return translateError(r.Entity(), "creating", "", err)
}

func questionRefs(ids []string) []model.Question {
	questions := make([]model.Question, len(ids))
	for i, id := range ids {
		questions[i].ID = id
	}
	return questions
}

// FindByIDWithQuestions loads the test with its non-deleted questions ordered
// by title, each with its options ordered by label.
func (r *testRepository) FindByIDWithQuestions(ctx context.Context, id string) (*model.Test, error) {
	var test model.Test
	err := r.db.WithContext(ctx).
		Preload("Questions", QuestionOrder).
		Preload("Questions.Options", orderedOptions).
		Preload("Questions.Course").
		First(&test, "id = ?", id).Error
	if err != nil {
		return nil, translateError(r.Entity(), "retrieving", id, err)
	}
	return &test, nil
}

func (r *testRepository) FindAllWithCounts(ctx context.Context, filters map[string]interface{}, opts QueryOptions) ([]TestWithCounts, error) {
	var results []TestWithCounts
	q := r.db.WithContext(ctx).Model(&model.Test{}).
		Select("tests.*, " +
			"(SELECT COUNT(*) FROM test_questions JOIN questions ON questions.id = test_questions.question_id " +
			"WHERE test_questions.test_id = tests.id AND questions.deleted_at IS NULL) AS question_count, " +
			"(SELECT COUNT(*) FROM test_attempts WHERE test_attempts.test_id = tests.id AND test_attempts.deleted_at IS NULL) AS attempt_count").
		Where("tests.deleted_at IS NULL")
	q = opts.apply(ApplyConditions(q, BuildConditions(filters)), "tests.created_at DESC")
	if opts.Skip > 0 {
		q = q.Offset(opts.Skip)
	}
	if opts.Take > 0 {
		q = q.Limit(opts.Take)
	}
	if err := q.Scan(&results).Error; err != nil {
		return nil, translateError(r.Entity(), "retrieving", "", err)
	}
	return results, nil
}

func (r *testRepository) AddQuestions(ctx context.Context, testID string, questionIDs []string) error {
	return r.changeQuestions(ctx, testID, questionIDs, true)
}

func (r *testRepository) RemoveQuestions(ctx context.Context, testID string, questionIDs []string) error {
	return r.changeQuestions(ctx, testID, questionIDs, false)
}

func (r *testRepository) changeQuestions(ctx context.Context, testID string, questionIDs []string, add bool) error {
	action := "updating"
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var test model.Test
		if err := tx.First(&test, "id = ?", testID).Error; err != nil {
			return err
		}
		if len(questionIDs) == 0 {
			return nil
		}
		questions := questionRefs(questionIDs)
		assoc := tx.Model(&test).Omit("Questions.*").Association("Questions")
		if add {
			return assoc.Append(questions)
		}
		return assoc.Delete(questions)
	})
	return translateError(r.Entity(), action, testID, err)
}
