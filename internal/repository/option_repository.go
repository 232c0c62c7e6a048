package repository

import (
	"context"

	"github.com/lshigami/prepbank/internal/model"
	"gorm.io/gorm"
)

type OptionRepository interface {
	GetAll(ctx context.Context, filters map[string]interface{}, opts QueryOptions) ([]model.Option, error)
	GetByID(ctx context.Context, id string, preloads ...string) (*model.Option, error)
	Create(ctx context.Context, option *model.Option) error
	Update(ctx context.Context, id string, fields map[string]interface{}) (*model.Option, error)
	Delete(ctx context.Context, id string, soft bool) (*model.Option, error)
	FindByQuestionCode(ctx context.Context, questionCode string) ([]model.Option, error)
}

type optionRepository struct {
	CRUDRepository[model.Option]
	db *gorm.DB
}

func NewOptionRepository(db *gorm.DB) OptionRepository {
	return &optionRepository{CRUDRepository: NewCRUDRepository[model.Option](db, "Option", "Question"), db: db}
}

func (r *optionRepository) FindByQuestionCode(ctx context.Context, questionCode string) ([]model.Option, error) {
	options := []model.Option{}
	err := r.db.WithContext(ctx).
		Joins("JOIN questions ON questions.id = options.question_id AND questions.deleted_at IS NULL").
		Where("questions.unique_code = ?", questionCode).
		Order("options.label ASC").
		Find(&options).Error
	if err != nil {
		return nil, translateError(r.Entity(), "retrieving", questionCode, err)
	}
	return options, nil
}
