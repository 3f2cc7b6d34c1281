package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"process-platform/internal/errors"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	defaultLimit   = 50
	maxSuggestions = 5
)

type Service interface {
	Search(ctx context.Context, q Query) ([]Result, error)
	Suggestions(ctx context.Context, term string) ([]string, error)
}

type DefaultService struct {
	repository Repository
}

func NewService(repository Repository) Service {
	return &DefaultService{repository: repository}
}

// Search queries every requested type concurrently, scores the candidates and
// returns them best first.
func (s *DefaultService) Search(ctx context.Context, q Query) ([]Result, error) {
	term := strings.TrimSpace(q.Term)
	if term == "" {
		return []Result{}, nil
	}
	types, err := normalizeTypes(q.Types)
	if err != nil {
		return nil, err
	}

	found := make([][]Candidate, len(types))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range types {
		g.Go(func() error {
			rows, err := s.repository.Candidates(gctx, kind, term)
			if err != nil {
				return fmt.Errorf("search %s: %w", kind, err)
			}
			found[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Internal(err)
	}

	needle := strings.ToLower(term)
	results := []Result{}
	for i, kind := range types {
		for _, c := range found[i] {
			if q.Category != "" && c.Category != q.Category {
				continue
			}
			score := Relevance(needle, c.Title, c.Description, c.Tags)
			if score == 0 {
				continue
			}
			results = append(results, Result{
				ID:          c.ID,
				Type:        kind,
				Title:       c.Title,
				Description: c.Description,
				Category:    c.Category,
				Tags:        c.Tags,
				URL:         fmt.Sprintf("/%s/%d", paths[kind], c.ID),
				Relevance:   score,
			})
		}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Relevance > results[b].Relevance
	})
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if len(results) > limit {
		results = results[:limit]
	}
	log.Debug().Str("term", term).Int("results", len(results)).Msg("search")
	return results, nil
}

// Suggestions offers up to five process names, categories or entity names
// containing term.
func (s *DefaultService) Suggestions(ctx context.Context, term string) ([]string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []string{}, nil
	}

	out := []string{}
	seen := map[string]bool{}
	add := func(v string) {
		if len(out) < maxSuggestions && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}

	processes, err := s.repository.Candidates(ctx, TypeProcess, term)
	if err != nil {
		return nil, errors.Internal(err)
	}
	needle := strings.ToLower(term)
	for _, p := range processes {
		if strings.Contains(strings.ToLower(p.Title), needle) {
			add(p.Title)
		}
	}
	categories, err := s.repository.Categories(ctx, term)
	if err != nil {
		return nil, errors.Internal(err)
	}
	for _, c := range categories {
		add(c)
	}
	entities, err := s.repository.Candidates(ctx, TypeEntity, term)
	if err != nil {
		return nil, errors.Internal(err)
	}
	for _, e := range entities {
		if strings.Contains(strings.ToLower(e.Title), needle) {
			add(e.Title)
		}
	}
	return out, nil
}

// Relevance scores one candidate against a lower-cased term: 10 for a title
// match plus 5 more when the title starts with it, 5 for a description match
// and 3 for every matching tag.
func Relevance(term, title, description string, tags []string) int {
	score := 0
	t := strings.ToLower(title)
	if strings.Contains(t, term) {
		score += 10
		if strings.HasPrefix(t, term) {
			score += 5
		}
	}
	if strings.Contains(strings.ToLower(description), term) {
		score += 5
	}
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), term) {
			score += 3
		}
	}
	return score
}

func normalizeTypes(types []string) ([]string, error) {
	if len(types) == 0 {
		return AllTypes, nil
	}
	var out []string
	for _, kind := range AllTypes {
		for _, t := range types {
			if t == kind {
				out = append(out, kind)
				break
			}
		}
	}
	for _, t := range types {
		if t != TypeProcess && t != TypeDocument && t != TypeEntity {
			return nil, errors.BadRequest("Invalid type", nil).WithDetails(t)
		}
	}
	return out, nil
}

var paths = map[string]string{
	TypeProcess:  "processes",
	TypeDocument: "documents",
	TypeEntity:   "entities",
}
