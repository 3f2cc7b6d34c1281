package modesettings

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"

	"process-platform/internal/errors"
	"process-platform/redis"

	"github.com/rs/zerolog/log"
)

// LastKnownGoodKey holds the most recent settings read from or written to the
// store. It never expires.
const LastKnownGoodKey = "mode-settings:last-known-good"

const maxKeyLength = 100

type Service interface {
	Get(ctx context.Context) (*Result, error)
	Set(ctx context.Context, partial Settings) (*Result, error)
	Reset(ctx context.Context) (*Result, error)
}

type DefaultService struct {
	repository Repository
	cache      *redis.Cache
}

// NewService creates the settings service. Without a cache a store failure is
// always an error.
func NewService(repository Repository, cache *redis.Cache) Service {
	return &DefaultService{repository: repository, cache: cache}
}

func (s *DefaultService) Get(ctx context.Context) (*Result, error) {
	stored, err := s.repository.All(ctx)
	if err != nil {
		return s.fallback(ctx, err)
	}
	merged := Merge(stored)
	s.remember(ctx, merged)
	return &Result{Settings: merged, Source: SourceDatabase}, nil
}

// Set upserts only the supplied keys and returns the merged view.
func (s *DefaultService) Set(ctx context.Context, partial Settings) (*Result, error) {
	for k, v := range partial {
		if strings.TrimSpace(k) == "" || len(k) > maxKeyLength {
			return nil, errors.BadRequest("Invalid fields", nil).WithDetails("setting key")
		}
		if !json.Valid(v) {
			return nil, errors.BadRequest("Invalid fields", nil).WithDetails(k)
		}
	}

	if err := s.repository.Upsert(ctx, partial); err != nil {
		return nil, errors.Internal(err)
	}
	stored, err := s.repository.All(ctx)
	if err != nil {
		return nil, errors.Internal(err)
	}
	merged := Merge(stored)
	s.remember(ctx, merged)
	log.Info().Int("keys", len(partial)).Msg("mode settings saved")
	return &Result{Settings: merged, Source: SourceDatabase}, nil
}

func (s *DefaultService) Reset(ctx context.Context) (*Result, error) {
	if err := s.repository.DeleteAll(ctx); err != nil {
		return nil, errors.Internal(err)
	}
	merged := Defaults()
	s.remember(ctx, merged)
	log.Info().Msg("mode settings reset")
	return &Result{Settings: merged, Source: SourceDatabase}, nil
}

func (s *DefaultService) fallback(ctx context.Context, storeErr error) (*Result, error) {
	var cached Settings
	found, err := s.cache.Get(ctx, LastKnownGoodKey, &cached)
	if err != nil || !found {
		if err != nil && !stderrors.Is(err, redis.ErrUnavailable) {
			log.Error().Err(err).Msg("failed to read last known good mode settings")
		}
		return nil, errors.Internal(storeErr)
	}
	log.Warn().Err(storeErr).Msg("mode settings store unavailable, serving cached copy")
	return &Result{Settings: cached, Source: SourceCache, Stale: true}, nil
}

func (s *DefaultService) remember(ctx context.Context, settings Settings) {
	if err := s.cache.Set(ctx, LastKnownGoodKey, settings, 0); err != nil && !stderrors.Is(err, redis.ErrUnavailable) {
		log.Warn().Err(err).Msg("failed to refresh last known good mode settings")
	}
}
