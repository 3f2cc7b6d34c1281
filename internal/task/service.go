package task

import (
	"context"
	"strings"

	"process-platform/internal/errors"
)

type Service interface {
	List(ctx context.Context, f ListFilter) ([]Task, error)
	Get(ctx context.Context, id int64) (*Task, error)
	Create(ctx context.Context, in Input, createdBy int64) (*Task, error)
	Update(ctx context.Context, id int64, in Input) (*Task, error)
	Delete(ctx context.Context, id int64) (*Task, error)
	ListComments(ctx context.Context, taskID int64) ([]Comment, error)
	AddComment(ctx context.Context, taskID, userID int64, content string) (*Comment, error)
}

type DefaultService struct {
	repository Repository
}

func NewService(repository Repository) Service {
	return &DefaultService{repository: repository}
}

func (s *DefaultService) List(ctx context.Context, f ListFilter) ([]Task, error) {
	items, err := s.repository.List(ctx, f)
	if err != nil {
		return nil, errors.FromDB(err, "Task")
	}
	return items, nil
}

func (s *DefaultService) Get(ctx context.Context, id int64) (*Task, error) {
	t, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, errors.FromDB(err, "Task")
	}
	return t, nil
}

func (s *DefaultService) Create(ctx context.Context, in Input, createdBy int64) (*Task, error) {
	in, err := validate(in)
	if err != nil {
		return nil, err
	}
	t := &Task{
		ProjectID:    in.ProjectID,
		Name:         in.Name,
		Description:  in.Description,
		AssigneeID:   in.AssigneeID,
		AssigneeType: in.AssigneeType,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Priority:     in.Priority,
		Status:       in.Status,
		Remarks:      in.Remarks,
		CreatedBy:    &createdBy,
	}
	if err := s.repository.Create(ctx, t); err != nil {
		return nil, errors.FromDB(err, "Task")
	}
	return s.Get(ctx, t.ID)
}

func (s *DefaultService) Update(ctx context.Context, id int64, in Input) (*Task, error) {
	in, err := validate(in)
	if err != nil {
		return nil, err
	}
	t, err := s.repository.Update(ctx, id, in)
	if err != nil {
		return nil, errors.FromDB(err, "Task")
	}
	return t, nil
}

func (s *DefaultService) Delete(ctx context.Context, id int64) (*Task, error) {
	t, err := s.repository.Delete(ctx, id)
	if err != nil {
		return nil, errors.FromDB(err, "Task")
	}
	return t, nil
}

func (s *DefaultService) ListComments(ctx context.Context, taskID int64) ([]Comment, error) {
	comments, err := s.repository.ListComments(ctx, taskID)
	if err != nil {
		return nil, errors.FromDB(err, "Comment")
	}
	return comments, nil
}

func (s *DefaultService) AddComment(ctx context.Context, taskID, userID int64, content string) (*Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.BadRequest("Missing required fields", nil).WithDetails("content")
	}
	if _, err := s.repository.FindByID(ctx, taskID); err != nil {
		return nil, errors.FromDB(err, "Task")
	}
	c := &Comment{TaskID: taskID, UserID: &userID, Content: content}
	if err := s.repository.CreateComment(ctx, c); err != nil {
		return nil, errors.FromDB(err, "Comment")
	}
	return c, nil
}

func validate(in Input) (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.AssigneeType == "" {
		in.AssigneeType = "user"
	}
	if in.Priority == "" {
		in.Priority = "medium"
	}
	if in.Status == "" {
		in.Status = "todo"
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return in, errors.BadRequest("End date must not be before start date", nil).WithDetails("startDate, endDate")
	}
	return in, nil
}
