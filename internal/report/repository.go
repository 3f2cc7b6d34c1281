package report

import (
	"context"

	"process-platform/internal/db"
	"process-platform/internal/query"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	List(ctx context.Context, f ListFilter) ([]Report, error)
	FindByID(ctx context.Context, id int64) (*Report, error)
	Create(ctx context.Context, in Input, createdBy int64) (*Report, error)
	Update(ctx context.Context, id int64, in Input) (*Report, error)
	Delete(ctx context.Context, id int64) (*Report, error)
}

// RepositoryImpl writes the array and JSON columns through pgx. Deletes go
// through gorm, which only needs the id and name back.
type RepositoryImpl struct {
	db     *gorm.DB
	conn   query.Conn
	schema *db.Provisioner
}

func NewRepository(gormDB *gorm.DB, conn query.Conn, schema *db.Provisioner) Repository {
	return &RepositoryImpl{db: gormDB, conn: conn, schema: schema}
}

func (r *RepositoryImpl) ensure(ctx context.Context) error {
	return r.schema.Ensure(ctx, db.ReportsTable)
}

func listQuery() *query.Builder {
	return query.Select(
		"r.id", "r.name", "r.description", "r.type", "r.filters", "r.data",
		"r.created_by", "r.is_public", "r.tags", "r.created_at", "r.updated_at",
		"COALESCE(u.name, '') AS created_by_name",
	).
		From("reports r").
		LeftJoin("users u ON u.id = r.created_by")
}

func (r *RepositoryImpl) List(ctx context.Context, f ListFilter) ([]Report, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	b := listQuery().
		Eq("r.created_by", f.CreatedBy).
		Eq("r.type", f.Type).
		Eq("r.is_public", f.IsPublic).
		Search(f.Search, "r.name", "r.description").
		OrderBy("r.created_at DESC", "r.id DESC").
		Page(f.Limit, f.Offset)

	return query.Collect[Report](ctx, r.conn, b)
}

func (r *RepositoryImpl) FindByID(ctx context.Context, id int64) (*Report, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	return query.One[Report](ctx, r.conn, listQuery().Eq("r.id", query.Some(id)))
}

func (r *RepositoryImpl) Create(ctx context.Context, in Input, createdBy int64) (*Report, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	sqlStr, args, err := query.Psql.Insert("reports").
		Columns("name", "description", "type", "filters", "data", "is_public", "tags", "created_by").
		Values(in.Name, in.Description, in.Type, in.Filters, in.Data, in.IsPublic, in.Tags, createdBy).
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

func (r *RepositoryImpl) Update(ctx context.Context, id int64, in Input) (*Report, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	sqlStr, args, err := query.Psql.Update("reports").
		SetMap(map[string]any{
			"name":        in.Name,
			"description": in.Description,
			"type":        in.Type,
			"filters":     in.Filters,
			"data":        in.Data,
			"is_public":   in.IsPublic,
			"tags":        in.Tags,
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

func (r *RepositoryImpl) Delete(ctx context.Context, id int64) (*Report, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	var rep Report
	res := r.db.WithContext(ctx).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "id"}, {Name: "name"}}}).
		Where("id = ?", id).
		Delete(&rep)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rep, nil
}
