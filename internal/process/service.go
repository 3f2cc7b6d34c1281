package process

import (
	"context"
	"slices"
	"strings"

	"process-platform/internal/errors"
	"process-platform/internal/query"
)

type Service interface {
	List(ctx context.Context, f ListFilter) ([]Process, error)
	Get(ctx context.Context, id int64) (*Process, error)
	Create(ctx context.Context, in Input, createdBy int64) (*Process, error)
	Update(ctx context.Context, id int64, in Input) (*Process, error)
	Delete(ctx context.Context, id int64) (*Process, error)
}

type DefaultService struct {
	repository Repository
}

func NewService(repository Repository) Service {
	return &DefaultService{repository: repository}
}

func (s *DefaultService) List(ctx context.Context, f ListFilter) ([]Process, error) {
	items, err := s.repository.List(ctx, f)
	if err != nil {
		return nil, errors.FromDB(err, "Process")
	}
	return items, nil
}

func (s *DefaultService) Get(ctx context.Context, id int64) (*Process, error) {
	p, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, errors.FromDB(err, "Process")
	}
	return p, nil
}

func (s *DefaultService) Create(ctx context.Context, in Input, createdBy int64) (*Process, error) {
	p, err := s.repository.Create(ctx, Normalize(in), createdBy)
	if err != nil {
		return nil, errors.FromDB(err, "Process")
	}
	return p, nil
}

func (s *DefaultService) Update(ctx context.Context, id int64, in Input) (*Process, error) {
	p, err := s.repository.Update(ctx, id, Normalize(in))
	if err != nil {
		return nil, errors.FromDB(err, "Process")
	}
	return p, nil
}

func (s *DefaultService) Delete(ctx context.Context, id int64) (*Process, error) {
	p, err := s.repository.Delete(ctx, id)
	if err != nil {
		return nil, errors.FromDB(err, "Process")
	}
	return p, nil
}

// Normalize applies column defaults and turns tag and entity lists into
// sorted, duplicate free, non-nil slices.
func Normalize(in Input) Input {
	in.Name = strings.TrimSpace(in.Name)
	if in.Status == "" {
		in.Status = "draft"
	}
	in.Tags = CleanTags(in.Tags)

	ids := make([]int64, 0, len(in.EntityIDs))
	for _, id := range in.EntityIDs {
		if id > 0 {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	in.EntityIDs = slices.Compact(ids)
	return in
}

// CleanTags trims, drops empties and removes duplicates while keeping order.
func CleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return query.NonNil(out)
}
