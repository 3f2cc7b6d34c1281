package accesslog

import (
	"context"
	"math"

	"process-platform/internal/db"
	"process-platform/internal/query"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
)

type Repository interface {
	List(ctx context.Context, f ListFilter) ([]AccessLog, error)
	Create(ctx context.Context, entry *AccessLog) error
	Stats(ctx context.Context) (*Stats, error)
}

type RepositoryImpl struct {
	db     *gorm.DB
	pool   query.Querier
	schema *db.Provisioner
}

func NewRepository(gormDB *gorm.DB, pool query.Querier, schema *db.Provisioner) Repository {
	return &RepositoryImpl{db: gormDB, pool: pool, schema: schema}
}

const displayName = "COALESCE(NULLIF(al.user_name, ''), u.name, '')"

func (r *RepositoryImpl) List(ctx context.Context, f ListFilter) ([]AccessLog, error) {
	if err := r.schema.Ensure(ctx, db.AccessLogsTable); err != nil {
		return nil, err
	}
	b := query.Select(
		"al.id", "al.user_id", displayName+" AS user_name", "al.action", "al.resource",
		"al.resource_id", "al.success", "al.details", "al.ip_address", "al.user_agent", "al.created_at",
	).
		From("access_logs al").
		LeftJoin("users u ON u.id = al.user_id").
		Eq("al.user_id", f.UserID).
		Eq("al.action", f.Action).
		Eq("al.resource", f.Resource).
		Eq("al.success", f.Success).
		OrderBy("al.created_at DESC", "al.id DESC").
		Page(f.Limit, f.Offset)

	return query.Collect[AccessLog](ctx, r.pool, b)
}

func (r *RepositoryImpl) Create(ctx context.Context, entry *AccessLog) error {
	if err := r.schema.Ensure(ctx, db.AccessLogsTable); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

type totals struct {
	Total   int64 `db:"total"`
	Success int64 `db:"success"`
	Failed  int64 `db:"failed"`
}

func (r *RepositoryImpl) Stats(ctx context.Context) (*Stats, error) {
	if err := r.schema.Ensure(ctx, db.AccessLogsTable); err != nil {
		return nil, err
	}

	t, err := query.One[totals](ctx, r.pool, query.Select(
		"COUNT(*) AS total",
		"COUNT(*) FILTER (WHERE success) AS success",
		"COUNT(*) FILTER (WHERE NOT success) AS failed",
	).From("access_logs"))
	if err != nil {
		return nil, err
	}

	actions, err := query.Collect[ActionCount](ctx, r.pool, query.Select("action", "COUNT(*) AS count").
		From("access_logs").
		GroupBy("action").
		OrderBy("count DESC", "action").
		Page(10, 0))
	if err != nil {
		return nil, err
	}

	resources, err := query.Collect[ResourceCount](ctx, r.pool, query.Select("resource", "COUNT(*) AS count").
		From("access_logs").
		GroupBy("resource").
		OrderBy("count DESC", "resource").
		Page(10, 0))
	if err != nil {
		return nil, err
	}

	users, err := query.Collect[UserCount](ctx, r.pool, query.Select(displayName+" AS user_name", "COUNT(*) AS count").
		From("access_logs al").
		LeftJoin("users u ON u.id = al.user_id").
		Where(sq.Expr(displayName+" <> ''")).
		GroupBy(displayName).
		OrderBy("count DESC", "user_name").
		Page(10, 0))
	if err != nil {
		return nil, err
	}

	return &Stats{
		Total:        t.Total,
		Success:      t.Success,
		Failed:       t.Failed,
		SuccessRate:  successRate(t.Success, t.Total),
		TopActions:   actions,
		TopResources: resources,
		TopUsers:     users,
	}, nil
}

// successRate is a percentage rounded to two decimals.
func successRate(success, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(success)/float64(total)*10000) / 100
}
