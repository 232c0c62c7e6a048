package service

import (
	"context"
	"strings"

	"github.com/lshigami/prepbank/internal/dto"
	"github.com/lshigami/prepbank/internal/model"
	"github.com/lshigami/prepbank/internal/repository"
	"github.com/rs/zerolog/log"
)

// CatalogService manages sections and the courses filed under them.
type CatalogService interface {
	ListSections(ctx context.Context) ([]dto.SectionDTO, error)
	CreateSection(ctx context.Context, req dto.SectionCreateDTO) (*dto.SectionDTO, error)
	UpdateSection(ctx context.Context, id string, req dto.SectionUpdateDTO) (*dto.SectionDTO, error)
	DeleteSection(ctx context.Context, id string) error
	ListCourses(ctx context.Context, filters map[string]interface{}, opts repository.QueryOptions) ([]dto.CourseDTO, error)
	CreateCourse(ctx context.Context, req dto.CourseCreateDTO) (*dto.CourseDTO, error)
	UpdateCourse(ctx context.Context, id string, req dto.CourseUpdateDTO) (*dto.CourseDTO, error)
	DeleteCourse(ctx context.Context, id string) error
}

type catalogService struct {
	sectionRepo repository.SectionRepository
	courseRepo  repository.CourseRepository
}

func NewCatalogService(sectionRepo repository.SectionRepository, courseRepo repository.CourseRepository) CatalogService {
	return &catalogService{sectionRepo: sectionRepo, courseRepo: courseRepo}
}

func (s *catalogService) ListSections(ctx context.Context) ([]dto.SectionDTO, error) {
	sections, err := s.sectionRepo.FindAllWithCourses(ctx)
	if err != nil {
		return nil, err
	}
	out := []dto.SectionDTO{}
	if err := mapInto(&out, &sections, "sections"); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *catalogService) CreateSection(ctx context.Context, req dto.SectionCreateDTO) (*dto.SectionDTO, error) {
	section := model.Section{Code: strings.TrimSpace(req.Code), Name: strings.TrimSpace(req.Name)}
	if err := s.sectionRepo.Create(ctx, &section); err != nil {
		log.Error().Err(err).Str("code", section.Code).Msg("Failed to create section")
		return nil, err
	}
	var out dto.SectionDTO
	if err := mapInto(&out, &section, "section"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *catalogService) UpdateSection(ctx context.Context, id string, req dto.SectionUpdateDTO) (*dto.SectionDTO, error) {
	fields := patchFields{}
	fields.str("code", req.Code)
	fields.str("name", req.Name)
	section, err := s.sectionRepo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	var out dto.SectionDTO
	if err := mapInto(&out, section, "section"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *catalogService) DeleteSection(ctx context.Context, id string) error {
	_, err := s.sectionRepo.Delete(ctx, id, true)
	return err
}

func (s *catalogService) ListCourses(ctx context.Context, filters map[string]interface{}, opts repository.QueryOptions) ([]dto.CourseDTO, error) {
	courses, err := s.courseRepo.GetAll(ctx, filters, opts)
	if err != nil {
		return nil, err
	}
	out := []dto.CourseDTO{}
	if err := mapInto(&out, &courses, "courses"); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *catalogService) CreateCourse(ctx context.Context, req dto.CourseCreateDTO) (*dto.CourseDTO, error) {
	section, err := s.sectionRepo.FindByCode(ctx, req.SectionCode)
	if err != nil {
		return nil, err
	}
	course := model.Course{
		Code:      strings.TrimSpace(req.Code),
		Name:      strings.TrimSpace(req.Name),
		Topic:     req.Topic,
		SectionID: section.ID,
	}
	if err := s.courseRepo.Create(ctx, &course); err != nil {
		log.Error().Err(err).Str("code", course.Code).Msg("Failed to create course")
		return nil, err
	}
	var out dto.CourseDTO
	if err := mapInto(&out, &course, "course"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *catalogService) UpdateCourse(ctx context.Context, id string, req dto.CourseUpdateDTO) (*dto.CourseDTO, error) {
	fields := patchFields{}
	fields.str("code", req.Code)
	fields.str("name", req.Name)
	fields.str("topic", req.Topic)
	course, err := s.courseRepo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	var out dto.CourseDTO
	if err := mapInto(&out, course, "course"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *catalogService) DeleteCourse(ctx context.Context, id string) error {
	_, err := s.courseRepo.Delete(ctx, id, true)
	return err
}
