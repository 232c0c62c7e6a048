package repository

import (
	"context"

	"github.com/lshigami/prepbank/internal/model"
	"gorm.io/gorm"
)

type UserRepository interface {
	GetAll(ctx context.Context, filters map[string]interface{}, opts QueryOptions) ([]model.User, error)
	GetByID(ctx context.Context, id string, preloads ...string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, id string, fields map[string]interface{}) (*model.User, error)
	Delete(ctx context.Context, id string, soft bool) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

type userRepository struct {
	CRUDRepository[model.User]
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{CRUDRepository: NewCRUDRepository[model.User](db, "User"), db: db}
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, translateError(r.Entity(), "retrieving", email, err)
	}
	return &user, nil
}
