package taxonomy

import (
	"context"
	stderrors "errors"
	"strings"

	"process-platform/internal/errors"
	"process-platform/internal/query"

	"gorm.io/gorm"
)

type Service interface {
	Kind() Kind
	List(ctx context.Context, kind query.Opt) ([]Item, error)
	Get(ctx context.Context, id int64) (*Item, error)
	Create(ctx context.Context, in Input) (*Item, error)
	Update(ctx context.Context, id int64, in Input) (*Item, error)
	Delete(ctx context.Context, id int64) (*Item, error)
	Reorder(ctx context.Context, kind string, ids []int64) ([]Item, error)
}

type DefaultService struct {
	kind       Kind
	repository Repository
}

func NewService(kind Kind, repository Repository) Service {
	return &DefaultService{kind: kind, repository: repository}
}

func (s *DefaultService) Kind() Kind { return s.kind }

func (s *DefaultService) List(ctx context.Context, kind query.Opt) ([]Item, error) {
	items, err := s.repository.List(ctx, kind)
	if err != nil {
		return nil, errors.FromDB(err, s.kind.Name)
	}
	return items, nil
}

func (s *DefaultService) Get(ctx context.Context, id int64) (*Item, error) {
	item, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, errors.FromDB(err, s.kind.Name)
	}
	return item, nil
}

// Create never produces system rows; those only come from the seed.
func (s *DefaultService) Create(ctx context.Context, in Input) (*Item, error) {
	in = s.normalize(in)
	item := &Item{
		Name:        in.Name,
		Description: in.Description,
		Type:        in.Type,
		Color:       in.Color,
	}
	if in.Order != nil {
		item.Order = *in.Order
	}
	if err := s.repository.Create(ctx, item); err != nil {
		return nil, errors.FromDB(err, s.kind.Name)
	}
	return item, nil
}

func (s *DefaultService) Update(ctx context.Context, id int64, in Input) (*Item, error) {
	if _, err := s.mutable(ctx, id); err != nil {
		return nil, err
	}
	in = s.normalize(in)
	values := map[string]any{
		"name":        in.Name,
		"description": in.Description,
		"type":        in.Type,
		"color":       in.Color,
		"updated_at":  gorm.Expr("NOW()"),
	}
	if in.Order != nil {
		values["order"] = *in.Order
	}
	item, err := s.repository.Update(ctx, id, values)
	if err != nil {
		return nil, s.writeError(err)
	}
	return item, nil
}

func (s *DefaultService) Delete(ctx context.Context, id int64) (*Item, error) {
	item, err := s.mutable(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repository.Delete(ctx, id); err != nil {
		return nil, s.writeError(err)
	}
	return item, nil
}

func (s *DefaultService) Reorder(ctx context.Context, kind string, ids []int64) ([]Item, error) {
	if !s.kind.Ordered {
		return nil, errors.BadRequest(s.kind.Name+" has no order", nil)
	}
	if err := s.repository.Reorder(ctx, kind, ids); err != nil {
		return nil, errors.FromDB(err, s.kind.Name)
	}
	return s.List(ctx, query.Some(kind))
}

// mutable loads the row and refuses system rows.
func (s *DefaultService) mutable(ctx context.Context, id int64) (*Item, error) {
	item, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, errors.FromDB(err, s.kind.Name)
	}
	if item.IsSystem {
		return nil, s.protected(nil)
	}
	return item, nil
}

func (s *DefaultService) protected(err error) error {
	return errors.Forbidden("System "+strings.ToLower(s.kind.Name)+" cannot be modified", err)
}

func (s *DefaultService) writeError(err error) error {
	if stderrors.Is(err, ErrSystemItem) {
		return s.protected(err)
	}
	return errors.FromDB(err, s.kind.Name)
}

func (s *DefaultService) normalize(in Input) Input {
	in.Name = strings.TrimSpace(in.Name)
	in.Type = strings.TrimSpace(in.Type)
	if in.Color == "" {
		in.Color = s.kind.DefaultColor
	}
	return in
}
