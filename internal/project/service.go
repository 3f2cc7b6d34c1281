package project

import (
	"context"
	"strings"

	"process-platform/internal/errors"
	"process-platform/internal/process"
	"process-platform/internal/query"
)

type Service interface {
	List(ctx context.Context, f ListFilter) ([]Project, error)
	Get(ctx context.Context, id int64) (*Project, error)
	Create(ctx context.Context, in Input, createdBy int64) (*Project, error)
	Update(ctx context.Context, id int64, in Input) (*Project, error)
	SetManager(ctx context.Context, id int64, managerID *int64) (*Project, error)
	Delete(ctx context.Context, id int64) (*Project, error)
}

type DefaultService struct {
	repository Repository
}

func NewService(repository Repository) Service {
	return &DefaultService{repository: repository}
}

func (s *DefaultService) List(ctx context.Context, f ListFilter) ([]Project, error) {
	items, err := s.repository.List(ctx, f)
	if err != nil {
		return nil, errors.FromDB(err, "Project")
	}
	return items, nil
}

func (s *DefaultService) Get(ctx context.Context, id int64) (*Project, error) {
	p, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, errors.FromDB(err, "Project")
	}
	return p, nil
}

func (s *DefaultService) Create(ctx context.Context, in Input, createdBy int64) (*Project, error) {
	in, err := validate(in)
	if err != nil {
		return nil, err
	}
	p, err := s.repository.Create(ctx, in, createdBy)
	if err != nil {
		return nil, errors.FromDB(err, "Project")
	}
	return p, nil
}

func (s *DefaultService) Update(ctx context.Context, id int64, in Input) (*Project, error) {
	in, err := validate(in)
	if err != nil {
		return nil, err
	}
	p, err := s.repository.Update(ctx, id, in)
	if err != nil {
		return nil, errors.FromDB(err, "Project")
	}
	return p, nil
}

func (s *DefaultService) SetManager(ctx context.Context, id int64, managerID *int64) (*Project, error) {
	p, err := s.repository.SetManager(ctx, id, managerID)
	if err != nil {
		return nil, errors.FromDB(err, "Project")
	}
	return p, nil
}

func (s *DefaultService) Delete(ctx context.Context, id int64) (*Project, error) {
	p, err := s.repository.Delete(ctx, id)
	if err != nil {
		return nil, errors.FromDB(err, "Project")
	}
	return p, nil
}

func validate(in Input) (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Status == "" {
		in.Status = "planning"
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return in, errors.BadRequest("End date must not be before start date", nil).WithDetails("startDate, endDate")
	}
	if in.Budget != nil && *in.Budget < 0 {
		return in, errors.BadRequest("Budget must not be negative", nil).WithDetails("budget")
	}
	in.Tags = process.CleanTags(in.Tags)
	in.EntityIDs = query.NonNil(in.EntityIDs)
	in.MemberIDs = uniqueIDs(in.MemberIDs)
	return in, nil
}

func uniqueIDs(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := map[int64]bool{}
	for _, id := range ids {
		if id > 0 && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
