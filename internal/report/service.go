package report

import (
	"context"
	"encoding/json"
	"strings"

	"process-platform/internal/errors"
	"process-platform/internal/process"
)

type Service interface {
	List(ctx context.Context, f ListFilter) ([]Report, error)
	Get(ctx context.Context, id int64) (*Report, error)
	Create(ctx context.Context, in Input, createdBy int64) (*Report, error)
	Update(ctx context.Context, id int64, in Input) (*Report, error)
	Delete(ctx context.Context, id int64) (*Report, error)
}

type DefaultService struct {
	repository Repository
}

func NewService(repository Repository) Service {
	return &DefaultService{repository: repository}
}

func (s *DefaultService) List(ctx context.Context, f ListFilter) ([]Report, error) {
	items, err := s.repository.List(ctx, f)
	if err != nil {
		return nil, errors.FromDB(err, "Report")
	}
	return items, nil
}

func (s *DefaultService) Get(ctx context.Context, id int64) (*Report, error) {
	rep, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, errors.FromDB(err, "Report")
	}
	return rep, nil
}

func (s *DefaultService) Create(ctx context.Context, in Input, createdBy int64) (*Report, error) {
	in, err := validate(in)
	if err != nil {
		return nil, err
	}
	rep, err := s.repository.Create(ctx, in, createdBy)
	if err != nil {
		return nil, errors.FromDB(err, "Report")
	}
	return rep, nil
}

func (s *DefaultService) Update(ctx context.Context, id int64, in Input) (*Report, error) {
	in, err := validate(in)
	if err != nil {
		return nil, err
	}
	rep, err := s.repository.Update(ctx, id, in)
	if err != nil {
		return nil, errors.FromDB(err, "Report")
	}
	return rep, nil
}

func (s *DefaultService) Delete(ctx context.Context, id int64) (*Report, error) {
	rep, err := s.repository.Delete(ctx, id)
	if err != nil {
		return nil, errors.FromDB(err, "Report")
	}
	return rep, nil
}

// validate requires a name and a type. Filters and data must be JSON objects
// and default to {}.
func validate(in Input) (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Type = strings.TrimSpace(in.Type)
	var missing []string
	if in.Name == "" {
		missing = append(missing, "name")
	}
	if in.Type == "" {
		missing = append(missing, "type")
	}
	if len(missing) > 0 {
		return in, errors.BadRequest("Missing required fields", nil).WithDetails(strings.Join(missing, ", "))
	}

	var err error
	if in.Filters, err = object(in.Filters, "filters"); err != nil {
		return in, err
	}
	if in.Data, err = object(in.Data, "data"); err != nil {
		return in, err
	}
	in.Tags = process.CleanTags(in.Tags)
	return in, nil
}

func object(raw json.RawMessage, field string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return json.RawMessage("{}"), nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, errors.BadRequest("Invalid fields", err).WithDetails(field + " (object)")
	}
	return raw, nil
}
