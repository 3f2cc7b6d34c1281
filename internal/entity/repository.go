package entity

import (
	"context"

	"process-platform/internal/db"
	"process-platform/internal/query"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	List(ctx context.Context, f ListFilter) ([]Entity, error)
	FindByID(ctx context.Context, id int64) (*Entity, error)
	Create(ctx context.Context, e *Entity) error
	Update(ctx context.Context, id int64, in Input) (*Entity, error)
	Delete(ctx context.Context, id int64) (*Entity, error)
}

type RepositoryImpl struct {
	db     *gorm.DB
	pool   query.Querier
	schema *db.Provisioner
}

func NewRepository(gormDB *gorm.DB, pool query.Querier, schema *db.Provisioner) Repository {
	return &RepositoryImpl{db: gormDB, pool: pool, schema: schema}
}

func (r *RepositoryImpl) ensure(ctx context.Context) error {
	// the process count reads processes.entity_ids
	return r.schema.Ensure(ctx, db.EntitiesTable, db.ProcessesTable)
}

func listQuery() *query.Builder {
	return query.Select(
		"e.id", "e.name", "e.type", "e.description", "e.parent_id", "e.manager_id",
		"e.created_at", "e.updated_at",
		"COALESCE(m.name, '') AS manager_name",
		"COALESCE(pe.name, '') AS parent_name",
		"(SELECT COUNT(*) FROM processes pr WHERE e.id = ANY(pr.entity_ids)) AS process_count",
	).
		From("entities e").
		LeftJoin("users m ON m.id = e.manager_id").
		LeftJoin("entities pe ON pe.id = e.parent_id")
}

func (r *RepositoryImpl) List(ctx context.Context, f ListFilter) ([]Entity, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	b := listQuery().
		Eq("e.id", f.ID).
		Eq("e.type", f.Type).
		Eq("e.parent_id", f.ParentID).
		Eq("e.manager_id", f.ManagerID).
		Search(f.Search, "e.name", "e.description").
		OrderBy("e.name", "e.id").
		Page(f.Limit, f.Offset)

	return query.Collect[Entity](ctx, r.pool, b)
}

// FindByID returns one entity with its display columns.
func (r *RepositoryImpl) FindByID(ctx context.Context, id int64) (*Entity, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	return query.One[Entity](ctx, r.pool, listQuery().Eq("e.id", query.Some(id)))
}

func (r *RepositoryImpl) Create(ctx context.Context, e *Entity) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *RepositoryImpl) Update(ctx context.Context, id int64, in Input) (*Entity, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	res := r.db.WithContext(ctx).Model(&Entity{}).Where("id = ?", id).Updates(map[string]any{
		"name":        in.Name,
		"type":        in.Type,
		"description": in.Description,
		"parent_id":   in.ParentID,
		"manager_id":  in.ManagerID,
	})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *RepositoryImpl) Delete(ctx context.Context, id int64) (*Entity, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	var e Entity
	res := r.db.WithContext(ctx).Clauses(clause.Returning{}).Where("id = ?", id).Delete(&e)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &e, nil
}
