package entity

import (
	"context"
	"strings"

	"process-platform/internal/errors"
)

type Service interface {
	List(ctx context.Context, f ListFilter) ([]Entity, error)
	Get(ctx context.Context, id int64) (*Entity, error)
	Create(ctx context.Context, in Input) (*Entity, error)
	Update(ctx context.Context, id int64, in Input) (*Entity, error)
	Delete(ctx context.Context, id int64) (*Entity, error)
}

type DefaultService struct {
	repository Repository
}

func NewService(repository Repository) Service {
	return &DefaultService{repository: repository}
}

func (s *DefaultService) List(ctx context.Context, f ListFilter) ([]Entity, error) {
	items, err := s.repository.List(ctx, f)
	if err != nil {
		return nil, errors.FromDB(err, "Entity")
	}
	return items, nil
}

func (s *DefaultService) Get(ctx context.Context, id int64) (*Entity, error) {
	e, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, errors.FromDB(err, "Entity")
	}
	return e, nil
}

func (s *DefaultService) Create(ctx context.Context, in Input) (*Entity, error) {
	in = normalize(in)
	e := &Entity{
		Name:        in.Name,
		Type:        in.Type,
		Description: in.Description,
		ParentID:    in.ParentID,
		ManagerID:   in.ManagerID,
	}
	if err := s.repository.Create(ctx, e); err != nil {
		return nil, errors.FromDB(err, "Entity")
	}
	return e, nil
}

func (s *DefaultService) Update(ctx context.Context, id int64, in Input) (*Entity, error) {
	in = normalize(in)
	if in.ParentID != nil && *in.ParentID == id {
		return nil, errors.BadRequest("An entity cannot be its own parent", nil).WithDetails("parentId")
	}
	e, err := s.repository.Update(ctx, id, in)
	if err != nil {
		return nil, errors.FromDB(err, "Entity")
	}
	return e, nil
}

func (s *DefaultService) Delete(ctx context.Context, id int64) (*Entity, error) {
	e, err := s.repository.Delete(ctx, id)
	if err != nil {
		return nil, errors.FromDB(err, "Entity")
	}
	return e, nil
}

func normalize(in Input) Input {
	in.Name = strings.TrimSpace(in.Name)
	if in.Type == "" {
		in.Type = "department"
	}
	return in
}
