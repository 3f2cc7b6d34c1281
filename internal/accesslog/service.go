package accesslog

import (
	"context"

	"process-platform/internal/errors"

	"github.com/rs/zerolog/log"
)

type Service interface {
	List(ctx context.Context, f ListFilter) ([]AccessLog, error)
	Create(ctx context.Context, entry Entry) (*AccessLog, error)
	Record(ctx context.Context, entry Entry)
	Stats(ctx context.Context) (*Stats, error)
}

type DefaultService struct {
	repository Repository
}

func NewService(repository Repository) Service {
	return &DefaultService{repository: repository}
}

func (s *DefaultService) List(ctx context.Context, f ListFilter) ([]AccessLog, error) {
	logs, err := s.repository.List(ctx, f)
	if err != nil {
		return nil, errors.FromDB(err, "Access log")
	}
	return logs, nil
}

func (s *DefaultService) Create(ctx context.Context, entry Entry) (*AccessLog, error) {
	if entry.Action == "" || entry.Resource == "" {
		return nil, errors.BadRequest("Missing required fields", nil).WithDetails("action, resource")
	}
	row := &AccessLog{
		UserID:     entry.UserID,
		UserName:   entry.UserName,
		Action:     entry.Action,
		Resource:   entry.Resource,
		ResourceID: entry.ResourceID,
		Success:    entry.Success,
		Details:    entry.Details,
		IPAddress:  entry.IPAddress,
		UserAgent:  entry.UserAgent,
	}
	if err := s.repository.Create(ctx, row); err != nil {
		return nil, errors.FromDB(err, "Access log")
	}
	return row, nil
}

// Record is Create for callers that must not fail because auditing failed.
func (s *DefaultService) Record(ctx context.Context, entry Entry) {
	if _, err := s.Create(ctx, entry); err != nil {
		log.Warn().Err(err).Str("action", entry.Action).Msg("failed to record access log")
	}
}

func (s *DefaultService) Stats(ctx context.Context) (*Stats, error) {
	stats, err := s.repository.Stats(ctx)
	if err != nil {
		return nil, errors.FromDB(err, "Access log")
	}
	return stats, nil
}
