package repository

import (
	"context"

	"github.com/lshigami/prepbank/internal/model"
	"gorm.io/gorm"
)

type CourseRepository interface {
	GetAll(ctx context.Context, filters map[string]interface{}, opts QueryOptions) ([]model.Course, error)
	GetByID(ctx context.Context, id string, preloads ...string) (*model.Course, error)
	Create(ctx context.Context, course *model.Course) error
	Update(ctx context.Context, id string, fields map[string]interface{}) (*model.Course, error)
	Delete(ctx context.Context, id string, soft bool) (*model.Course, error)
	FindByCode(ctx context.Context, code string) (*model.Course, error)
}

type courseRepository struct {
	CRUDRepository[model.Course]
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{CRUDRepository: NewCRUDRepository[model.Course](db, "Course", "Section"), db: db}
}

func (r *courseRepository) FindByCode(ctx context.Context, code string) (*model.Course, error) {
	var course model.Course
	if err := r.db.WithContext(ctx).Preload("Section").First(&course, "code = ?", code).Error; err != nil {
		return nil, translateError(r.Entity(), "retrieving", code, err)
	}
	return &course, nil
}
