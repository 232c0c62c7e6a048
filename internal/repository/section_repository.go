package repository

import (
	"context"

	"github.com/lshigami/prepbank/internal/model"
	"gorm.io/gorm"
)

type SectionRepository interface {
	GetAll(ctx context.Context, filters map[string]interface{}, opts QueryOptions) ([]model.Section, error)
	GetByID(ctx context.Context, id string, preloads ...string) (*model.Section, error)
	Create(ctx context.Context, section *model.Section) error
	Update(ctx context.Context, id string, fields map[string]interface{}) (*model.Section, error)
	Delete(ctx context.Context, id string, soft bool) (*model.Section, error)
	FindAllWithCourses(ctx context.Context) ([]model.Section, error)
	FindByCode(ctx context.Context, code string) (*model.Section, error)
}

type sectionRepository struct {
	CRUDRepository[model.Section]
	db *gorm.DB
}

func NewSectionRepository(db *gorm.DB) SectionRepository {
	return &sectionRepository{CRUDRepository: NewCRUDRepository[model.Section](db, "Section"), db: db}
}

func (r *sectionRepository) FindAllWithCourses(ctx context.Context) ([]model.Section, error) {
	sections := []model.Section{}
	err := r.db.WithContext(ctx).
		Preload("Courses", func(db *gorm.DB) *gorm.DB {
			return db.Order("courses.code ASC")
		}).
		Order("sections.code ASC").
		Find(&sections).Error
	if err != nil {
		return nil, translateError(r.Entity(), "retrieving", "", err)
	}
	return sections, nil
}

func (r *sectionRepository) FindByCode(ctx context.Context, code string) (*model.Section, error) {
	var section model.Section
	if err := r.db.WithContext(ctx).First(&section, "code = ?", code).Error; err != nil {
		return nil, translateError(r.Entity(), "retrieving", code, err)
	}
	return &section, nil
}
