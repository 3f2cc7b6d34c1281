package search

import (
	"context"
	"fmt"

	"process-platform/internal/db"
	"process-platform/internal/query"

	sq "github.com/Masterminds/squirrel"
)

// perTypeLimit caps how many candidates one type contributes before scoring.
const perTypeLimit = 200

type Repository interface {
	Candidates(ctx context.Context, kind, term string) ([]Candidate, error)
	Categories(ctx context.Context, term string) ([]string, error)
}

type RepositoryImpl struct {
	pool   query.Querier
	schema *db.Provisioner
}

func NewRepository(pool query.Querier, schema *db.Provisioner) Repository {
	return &RepositoryImpl{pool: pool, schema: schema}
}

func (r *RepositoryImpl) Candidates(ctx context.Context, kind, term string) ([]Candidate, error) {
	var b *query.Builder
	switch kind {
	case TypeProcess:
		if err := r.schema.Ensure(ctx, db.ProcessesTable); err != nil {
			return nil, err
		}
		b = query.Select("id", "name AS title", "description", "category", "tags").
			From("processes").
			Search(query.String(term), "name", "description", "array_to_string(tags, ' ')")
	case TypeDocument:
		if err := r.schema.Ensure(ctx, db.DocumentsTable); err != nil {
			return nil, err
		}
		b = query.Select("id", "name AS title", "description", "link_type AS category").
			From("documents").
			Search(query.String(term), "name", "description")
	case TypeEntity:
		if err := r.schema.Ensure(ctx, db.EntitiesTable); err != nil {
			return nil, err
		}
		b = query.Select("id", "name AS title", "description", "type AS category").
			From("entities").
			Search(query.String(term), "name", "description")
	default:
		return nil, fmt.Errorf("search: unknown type %q", kind)
	}

	return query.Collect[Candidate](ctx, r.pool, b.OrderBy("updated_at DESC", "id DESC").Page(perTypeLimit, 0))
}

type category struct {
	Name string `db:"category"`
}

// Categories returns distinct process categories containing term.
func (r *RepositoryImpl) Categories(ctx context.Context, term string) ([]string, error) {
	if err := r.schema.Ensure(ctx, db.ProcessesTable); err != nil {
		return nil, err
	}
	rows, err := query.Collect[category](ctx, r.pool, query.Select("DISTINCT category").
		From("processes").
		Where(sq.Expr("category <> ''")).
		Search(query.String(term), "category").
		OrderBy("category").
		Page(perTypeLimit, 0))
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, c := range rows {
		out = append(out, c.Name)
	}
	return out, nil
}
