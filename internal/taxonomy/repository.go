package taxonomy

import (
	"context"
	"errors"

	"process-platform/internal/db"
	"process-platform/internal/query"

	"gorm.io/gorm"
)

// ErrSystemItem is returned when a write matched a system row.
var ErrSystemItem = errors.New("system rows are read-only")

type Repository interface {
	List(ctx context.Context, kind query.Opt) ([]Item, error)
	FindByID(ctx context.Context, id int64) (*Item, error)
	Create(ctx context.Context, item *Item) error
	Update(ctx context.Context, id int64, values map[string]any) (*Item, error)
	Delete(ctx context.Context, id int64) error
	Reorder(ctx context.Context, kind string, ids []int64) error
}

type RepositoryImpl struct {
	kind   Kind
	db     *gorm.DB
	pool   query.Querier
	schema *db.Provisioner
}

func NewRepository(kind Kind, gormDB *gorm.DB, pool query.Querier, schema *db.Provisioner) Repository {
	return &RepositoryImpl{kind: kind, db: gormDB, pool: pool, schema: schema}
}

func (r *RepositoryImpl) ensure(ctx context.Context) error {
	return r.schema.Ensure(ctx, r.kind.Table)
}

func (r *RepositoryImpl) table(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table(r.kind.Table.Name)
}

func (r *RepositoryImpl) List(ctx context.Context, kind query.Opt) ([]Item, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	columns := []string{"id", "name", "description", "type", "color", "is_system", "created_at", "updated_at"}
	order := []string{"type", "name", "id"}
	if r.kind.Ordered {
		columns = append(columns, `"order"`)
		order = []string{"type", `"order"`, "name", "id"}
	}
	b := query.Select(columns...).
		From(r.kind.Table.Name).
		Eq("type", kind).
		OrderBy(order...)

	return query.Collect[Item](ctx, r.pool, b)
}

func (r *RepositoryImpl) FindByID(ctx context.Context, id int64) (*Item, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	var item Item
	if err := r.table(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts item. For ordered kinds a zero Order is replaced by the next
// position within the item's type.
func (r *RepositoryImpl) Create(ctx context.Context, item *Item) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}
	if !r.kind.Ordered {
		return r.table(ctx).Omit("order").Create(item).Error
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if item.Order == 0 {
			var next int
			err := tx.Table(r.kind.Table.Name).
				Select(`COALESCE(MAX("order"), 0) + 1`).
				Where("type = ?", item.Type).
				Scan(&next).Error
			if err != nil {
				return err
			}
			item.Order = next
		}
		return tx.Table(r.kind.Table.Name).Create(item).Error
	})
}

func (r *RepositoryImpl) Update(ctx context.Context, id int64, values map[string]any) (*Item, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	if !r.kind.Ordered {
		delete(values, "order")
	}
	res := r.table(ctx).Where("id = ? AND is_system = FALSE", id).Updates(values)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, r.missing(ctx, id)
	}
	return r.FindByID(ctx, id)
}

func (r *RepositoryImpl) Delete(ctx context.Context, id int64) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}
	res := r.table(ctx).Where("id = ? AND is_system = FALSE", id).Delete(&Item{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.missing(ctx, id)
	}
	return nil
}

// missing tells a row that does not exist from one that is protected.
func (r *RepositoryImpl) missing(ctx context.Context, id int64) error {
	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	return ErrSystemItem
}

// Reorder sets positions 1..n following ids, all or nothing.
func (r *RepositoryImpl) Reorder(ctx context.Context, kind string, ids []int64) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			res := tx.Table(r.kind.Table.Name).
				Where("id = ? AND type = ?", id, kind).
				Updates(map[string]any{"order": i + 1, "updated_at": gorm.Expr("NOW()")})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return nil
	})
}
