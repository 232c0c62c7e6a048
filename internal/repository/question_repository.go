package repository

import (
	"context"

	"github.com/lshigami/prepbank/internal/model"
	"gorm.io/gorm"
)

// QuestionSetFilter narrows the question bank by catalogue coordinates.
// Empty fields do not filter.
type QuestionSetFilter struct {
	Section string
	Course  string
	Type    string
	Period  string
}

// QuestionFacets lists the distinct catalogue coordinates present in the bank.
type QuestionFacets struct {
	Sections []string
	Courses  []string
	Types    []string
	Periods  []string
}

type QuestionRepository interface {
	GetAll(ctx context.Context, filters map[string]interface{}, opts QueryOptions) ([]model.Question, error)
	GetOne(ctx context.Context, filters map[string]interface{}, opts ...QueryOptions) (*model.Question, error)
	GetByID(ctx context.Context, id string, preloads ...string) (*model.Question, error)
	Create(ctx context.Context, question *model.Question) error
	Update(ctx context.Context, id string, fields map[string]interface{}) (*model.Question, error)
	Delete(ctx context.Context, id string, soft bool) (*model.Question, error)
	FindByUniqueCode(ctx context.Context, code string) (*model.Question, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Question, error)
	FindForSets(ctx context.Context, filter QuestionSetFilter) ([]model.Question, error)
	Facets(ctx context.Context) (*QuestionFacets, error)
}

type questionRepository struct {
	CRUDRepository[model.Question]
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{
		CRUDRepository: NewCRUDRepository[model.Question](db, "Question", "Options", "Course"),
		db:             db,
	}
}

// orderedOptions keeps soft-deleted options out even when the parent query
// runs unscoped.
func orderedOptions(db *gorm.DB) *gorm.DB {
	return db.Where("options.deleted_at IS NULL").Order("options.label ASC")
}

func (r *questionRepository) FindByUniqueCode(ctx context.Context, code string) (*model.Question, error) {
	var question model.Question
	err := r.db.WithContext(ctx).
		Preload("Options", orderedOptions).
		Preload("Course").
		First(&question, "unique_code = ?", code).Error
	if err != nil {
		return nil, translateError(r.Entity(), "retrieving", code, err)
	}
	return &question, nil
}

func (r *questionRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Question, error) {
	questions := []model.Question{}
	if len(ids) == 0 {
		return questions, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, translateError(r.Entity(), "retrieving", "", err)
	}
	return questions, nil
}

func (r *questionRepository) FindForSets(ctx context.Context, filter QuestionSetFilter) ([]model.Question, error) {
	q := r.db.WithContext(ctx).
		Joins("JOIN courses ON courses.id = questions.course_id AND courses.deleted_at IS NULL").
		Joins("JOIN sections ON sections.id = courses.section_id AND sections.deleted_at IS NULL").
		Preload("Options", orderedOptions).
		Preload("Course.Section")
	if filter.Section != "" {
		q = q.Where("sections.code = ?", filter.Section)
	}
	if filter.Course != "" {
		q = q.Where("courses.code = ?", filter.Course)
	}
	if filter.Type != "" {
		q = q.Where("questions.type = ?", filter.Type)
	}
	if filter.Period != "" {
		q = q.Where("questions.period = ?", filter.Period)
	}
	questions := []model.Question{}
	err := q.Order("sections.code ASC, courses.code ASC, questions.type ASC, questions.period ASC, questions.title ASC").
		Find(&questions).Error
	if err != nil {
		return nil, translateError(r.Entity(), "retrieving", "", err)
	}
	return questions, nil
}

func (r *questionRepository) Facets(ctx context.Context) (*QuestionFacets, error) {
	var facets QuestionFacets
	db := r.db.WithContext(ctx)
	steps := []struct {
		query *gorm.DB
		col   string
		dest  *[]string
	}{
		{db.Model(&model.Section{}), "code", &facets.Sections},
		{db.Model(&model.Course{}), "code", &facets.Courses},
		{db.Model(&model.Question{}), "type", &facets.Types},
		{db.Model(&model.Question{}), "period", &facets.Periods},
	}
	for _, s := range steps {
		if err := s.query.Distinct(s.col).Order(s.col+" ASC").Pluck(s.col, s.dest).Error; err != nil {
			return nil, translateError(r.Entity(), "retrieving", "", err)
		}
	}
	return &facets, nil
}
