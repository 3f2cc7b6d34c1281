package document

import (
	"context"
	"fmt"
	"strings"
	"time"

	"process-platform/internal/errors"
	"process-platform/redis"

	"github.com/rs/zerolog/log"
)

const detailTTL = 10 * time.Minute

type Service interface {
	List(ctx context.Context, f ListFilter) ([]Document, error)
	Get(ctx context.Context, id int64) (*Detail, error)
	Version(ctx context.Context, documentID, versionID int64) (*Document, *Version, error)
	Update(ctx context.Context, id int64, in Input) (*Document, error)
	Delete(ctx context.Context, id int64) (*Document, error)
	RecordVersion(ctx context.Context, in VersionInput) (*Document, *Version, error)
}

type DefaultService struct {
	repository DocumentRepository
	cache      *redis.Cache
}

// NewService creates a document service. cache may be nil.
func NewService(repository DocumentRepository, cache *redis.Cache) Service {
	return &DefaultService{repository: repository, cache: cache}
}

func detailKey(id int64) string {
	return fmt.Sprintf("document:%d:detail", id)
}

func (s *DefaultService) List(ctx context.Context, f ListFilter) ([]Document, error) {
	docs, err := s.repository.List(ctx, f)
	if err != nil {
		return nil, errors.FromDB(err, "Document")
	}
	return docs, nil
}

// Get returns the document with its versions, newest first.
func (s *DefaultService) Get(ctx context.Context, id int64) (*Detail, error) {
	var detail Detail
	if found, _ := s.cache.Get(ctx, detailKey(id), &detail); found {
		return &detail, nil
	}

	doc, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, errors.FromDB(err, "Document")
	}
	versions, err := s.repository.Versions(ctx, id)
	if err != nil {
		return nil, errors.FromDB(err, "Document")
	}
	detail = Detail{Document: *doc, Versions: versions}

	if err := s.cache.Set(ctx, detailKey(id), detail, detailTTL); err != nil && err != redis.ErrUnavailable {
		log.Warn().Err(err).Int64("document_id", id).Msg("failed to cache document")
	}
	return &detail, nil
}

// Version resolves a version for download. versionID 0 means the current one.
func (s *DefaultService) Version(ctx context.Context, documentID, versionID int64) (*Document, *Version, error) {
	doc, err := s.repository.FindByID(ctx, documentID)
	if err != nil {
		return nil, nil, errors.FromDB(err, "Document")
	}
	v, err := s.repository.FindVersion(ctx, documentID, versionID)
	if err != nil {
		return nil, nil, errors.FromDB(err, "Version")
	}
	return doc, v, nil
}

func (s *DefaultService) Update(ctx context.Context, id int64, in Input) (*Document, error) {
	doc, err := s.repository.Update(ctx, id, Normalize(in))
	if err != nil {
		return nil, errors.FromDB(err, "Document")
	}
	s.invalidate(ctx, id)
	return doc, nil
}

func (s *DefaultService) Delete(ctx context.Context, id int64) (*Document, error) {
	doc, err := s.repository.Delete(ctx, id)
	if err != nil {
		return nil, errors.FromDB(err, "Document")
	}
	s.invalidate(ctx, id)
	return doc, nil
}

// RecordVersion is the last step of every upload.
func (s *DefaultService) RecordVersion(ctx context.Context, in VersionInput) (*Document, *Version, error) {
	in.Version = strings.TrimSpace(in.Version)
	if in.Version == "" {
		return nil, nil, errors.BadRequest("Missing required fields", nil).WithDetails("version")
	}
	if in.URL == "" {
		return nil, nil, errors.BadRequest("Missing required fields", nil).WithDetails("url")
	}
	if in.DocumentID == nil {
		in.Input = Normalize(in.Input)
		if in.Input.Name == "" {
			return nil, nil, errors.BadRequest("Missing required fields", nil).WithDetails("name")
		}
	}

	doc, v, err := s.repository.RecordVersion(ctx, in)
	if in.TicketID != "" && errors.IsUniqueViolation(err) {
		return nil, nil, errors.Conflict("Upload already completed", err)
	}
	if err != nil {
		return nil, nil, errors.FromDB(err, "Document")
	}
	s.invalidate(ctx, doc.ID)
	log.Info().
		Int64("document_id", doc.ID).
		Int64("seq", v.Seq).
		Str("version", v.Version).
		Msg("document version recorded")
	return doc, v, nil
}

func (s *DefaultService) invalidate(ctx context.Context, id int64) {
	if err := s.cache.Delete(ctx, detailKey(id)); err != nil && err != redis.ErrUnavailable {
		log.Warn().Err(err).Int64("document_id", id).Msg("failed to invalidate document cache")
	}
}

// Normalize applies the column defaults to document metadata.
func Normalize(in Input) Input {
	in.Name = strings.TrimSpace(in.Name)
	if in.LinkType == "" {
		in.LinkType = "process"
		if in.ProcessID == nil && in.ProjectID != nil {
			in.LinkType = "project"
		}
	}
	return in
}
