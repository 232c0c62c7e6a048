package service

import (
	"context"
	"strings"

	"github.com/lshigami/prepbank/internal/dto"
	"github.com/lshigami/prepbank/internal/model"
	"github.com/lshigami/prepbank/internal/repository"
	"github.com/rs/zerolog/log"
)

type UserService interface {
	ListUsers(ctx context.Context, filters map[string]interface{}, opts repository.QueryOptions) ([]dto.UserDTO, error)
	GetUser(ctx context.Context, id string) (*dto.UserDTO, error)
	CreateUser(ctx context.Context, req dto.UserCreateDTO) (*dto.UserDTO, error)
	UpdateUser(ctx context.Context, id string, req dto.UserUpdateDTO) (*dto.UserDTO, error)
	DeleteUser(ctx context.Context, id string) error
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) ListUsers(ctx context.Context, filters map[string]interface{}, opts repository.QueryOptions) ([]dto.UserDTO, error) {
	users, err := s.repo.GetAll(ctx, filters, opts)
	if err != nil {
		return nil, err
	}
	out := []dto.UserDTO{}
	if err := mapInto(&out, &users, "users"); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*dto.UserDTO, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUserDTO(user)
}

func (s *userService) CreateUser(ctx context.Context, req dto.UserCreateDTO) (*dto.UserDTO, error) {
	role := req.Role
	if role == "" {
		role = model.RoleStudent
	}
	if !validRole(role) {
		return nil, newValidationError("role", "must be ADMIN or STUDENT")
	}
	user := model.User{Email: strings.ToLower(strings.TrimSpace(req.Email)), Name: req.Name, Role: role}
	if err := s.repo.Create(ctx, &user); err != nil {
		log.Error().Err(err).Str("email", user.Email).Msg("Failed to create user")
		return nil, err
	}
	return toUserDTO(&user)
}

func (s *userService) UpdateUser(ctx context.Context, id string, req dto.UserUpdateDTO) (*dto.UserDTO, error) {
	if req.Role != nil && !validRole(*req.Role) {
		return nil, newValidationError("role", "must be ADMIN or STUDENT")
	}
	fields := patchFields{}
	if req.Email != nil {
		fields["email"] = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	fields.nullableStr("name", req.Name)
	fields.nullableStr("image", req.Image)
	fields.str("role", req.Role)
	user, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	return toUserDTO(user)
}

func (s *userService) DeleteUser(ctx context.Context, id string) error {
	_, err := s.repo.Delete(ctx, id, true)
	return err
}

func validRole(role string) bool {
	return role == model.RoleAdmin || role == model.RoleStudent
}

func toUserDTO(u *model.User) (*dto.UserDTO, error) {
	var out dto.UserDTO
	if err := mapInto(&out, u, "user"); err != nil {
		return nil, err
	}
	return &out, nil
}
