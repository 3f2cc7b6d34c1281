package process

import (
	"context"

	"process-platform/internal/db"
	"process-platform/internal/query"

	sq "github.com/Masterminds/squirrel"
)

type Repository interface {
	List(ctx context.Context, f ListFilter) ([]Process, error)
	FindByID(ctx context.Context, id int64) (*Process, error)
	Create(ctx context.Context, in Input, createdBy int64) (*Process, error)
	Update(ctx context.Context, id int64, in Input) (*Process, error)
	Delete(ctx context.Context, id int64) (*Process, error)
}

// RepositoryImpl goes through pgx directly because of the array columns.
type RepositoryImpl struct {
	conn   query.Conn
	schema *db.Provisioner
}

func NewRepository(conn query.Conn, schema *db.Provisioner) Repository {
	return &RepositoryImpl{conn: conn, schema: schema}
}

func (r *RepositoryImpl) ensure(ctx context.Context) error {
	return r.schema.Ensure(ctx, db.ProcessesTable, db.EntitiesTable, db.DocumentsTable)
}

const entitiesJSON = `COALESCE((
	SELECT json_agg(json_build_object('id', e.id, 'name', e.name, 'type', e.type) ORDER BY e.name, e.id)
	FROM entities e WHERE e.id = ANY(p.entity_ids)
), '[]'::json) AS entities`

func listQuery() *query.Builder {
	return query.Select(
		"p.id", "p.name", "p.description", "p.category", "p.status", "p.tags", "p.entity_ids",
		"p.created_by", "p.created_at", "p.updated_at",
		"COALESCE(u.name, '') AS created_by_name",
		"(SELECT COUNT(*) FROM documents d WHERE d.process_id = p.id) AS document_count",
		entitiesJSON,
	).
		From("processes p").
		LeftJoin("users u ON u.id = p.created_by")
}

func (r *RepositoryImpl) List(ctx context.Context, f ListFilter) ([]Process, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	b := listQuery().
		Eq("p.status", f.Status).
		Eq("p.category", f.Category).
		Eq("p.created_by", f.CreatedBy).
		Filter("p.entity_ids", query.OpAny, f.EntityID).
		Filter("p.tags", query.OpOverlap, f.Tags).
		Search(f.Search, "p.name", "p.description").
		OrderBy("p.updated_at DESC", "p.id DESC").
		Page(f.Limit, f.Offset)

	return query.Collect[Process](ctx, r.conn, b)
}

func (r *RepositoryImpl) FindByID(ctx context.Context, id int64) (*Process, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	return query.One[Process](ctx, r.conn, listQuery().Eq("p.id", query.Some(id)))
}

func (r *RepositoryImpl) Create(ctx context.Context, in Input, createdBy int64) (*Process, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	sqlStr, args, err := query.Psql.Insert("processes").
		Columns("name", "description", "category", "status", "tags", "entity_ids", "created_by").
		Values(in.Name, in.Description, in.Category, in.Status, in.Tags, in.EntityIDs, createdBy).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, err
	}
	var id int64
	if err := r.conn.QueryRow(ctx, sqlStr, args...).Scan(&id); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *RepositoryImpl) Update(ctx context.Context, id int64, in Input) (*Process, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	sqlStr, args, err := query.Psql.Update("processes").
		SetMap(map[string]any{
			"name":        in.Name,
			"description": in.Description,
			"category":    in.Category,
			"status":      in.Status,
			"tags":        in.Tags,
			"entity_ids":  in.EntityIDs,
			"updated_at":  sq.Expr("NOW()"),
		}).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, err
	}
	if err := r.conn.QueryRow(ctx, sqlStr, args...).Scan(&id); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *RepositoryImpl) Delete(ctx context.Context, id int64) (*Process, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	var p Process
	err := r.conn.QueryRow(ctx, "DELETE FROM processes WHERE id = $1 RETURNING id, name", id).Scan(&p.ID, &p.Name)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
