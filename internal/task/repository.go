package task

import (
	"context"
	"time"

	"process-platform/internal/db"
	"process-platform/internal/errors"
	"process-platform/internal/query"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	List(ctx context.Context, f ListFilter) ([]Task, error)
	FindByID(ctx context.Context, id int64) (*Task, error)
	Create(ctx context.Context, t *Task) error
	Update(ctx context.Context, id int64, in Input) (*Task, error)
	Delete(ctx context.Context, id int64) (*Task, error)
	ListComments(ctx context.Context, taskID int64) ([]Comment, error)
	CreateComment(ctx context.Context, c *Comment) error
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
	return r.schema.Ensure(ctx, db.TasksTable, db.TaskCommentsTable, db.EntitiesTable)
}

func listQuery() *query.Builder {
	return query.Select(
		"t.id", "t.task_number", "t.project_id", "t.name", "t.description",
		"t.assignee_id", "t.assignee_type", "t.start_date", "t.end_date",
		"t.priority", "t.status", "t.remarks", "t.created_by", "t.created_at", "t.updated_at",
		"COALESCE(p.name, '') AS project_name",
		"COALESCE(au.name, ae.name, '') AS assignee_name",
		"COALESCE(c.name, '') AS created_by_name",
		"(SELECT COUNT(*) FROM task_comments tc WHERE tc.task_id = t.id) AS comment_count",
	).
		From("tasks t").
		LeftJoin("projects p ON p.id = t.project_id").
		LeftJoin("users au ON au.id = t.assignee_id AND t.assignee_type = 'user'").
		LeftJoin("entities ae ON ae.id = t.assignee_id AND t.assignee_type = 'entity'").
		LeftJoin("users c ON c.id = t.created_by")
}

func (r *RepositoryImpl) List(ctx context.Context, f ListFilter) ([]Task, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	b := listQuery().
		Eq("t.project_id", f.ProjectID).
		Eq("t.status", f.Status).
		Eq("t.assignee_id", f.AssigneeID).
		Eq("t.priority", f.Priority).
		Search(f.Search, "t.name", "t.task_number").
		OrderBy("t.created_at DESC", "t.id DESC").
		Page(f.Limit, f.Offset)

	return query.Collect[Task](ctx, r.pool, b)
}

func (r *RepositoryImpl) FindByID(ctx context.Context, id int64) (*Task, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	return query.One[Task](ctx, r.pool, listQuery().Eq("t.id", query.Some(id)))
}

const numberAttempts = 3

// Create assigns the next task number of the current year. Two concurrent
// creates can pick the same number; the loser retries on the unique violation.
func (r *RepositoryImpl) Create(ctx context.Context, t *Task) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}
	year := time.Now().Year()
	var err error
	for attempt := 0; attempt < numberAttempts; attempt++ {
		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var last string
			err := tx.Model(&Task{}).
				Select("task_number").
				Where("task_number LIKE ?", NumberPrefix(year)+"%").
				Order("LENGTH(task_number) DESC, task_number DESC").
				Limit(1).
				Scan(&last).Error
			if err != nil {
				return err
			}
			t.ID = 0
			t.TaskNumber = NextNumber(last, year)
			return tx.Create(t).Error
		})
		if !errors.IsUniqueViolation(err) {
			return err
		}
		log.Debug().Str("task_number", t.TaskNumber).Msg("task number taken, retrying")
	}
	return err
}

func (r *RepositoryImpl) Update(ctx context.Context, id int64, in Input) (*Task, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	res := r.db.WithContext(ctx).Model(&Task{}).Where("id = ?", id).Updates(map[string]any{
		"project_id":    in.ProjectID,
		"name":          in.Name,
		"description":   in.Description,
		"assignee_id":   in.AssigneeID,
		"assignee_type": in.AssigneeType,
		"start_date":    in.StartDate,
		"end_date":      in.EndDate,
		"priority":      in.Priority,
		"status":        in.Status,
		"remarks":       in.Remarks,
	})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *RepositoryImpl) Delete(ctx context.Context, id int64) (*Task, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	var t Task
	res := r.db.WithContext(ctx).Clauses(clause.Returning{}).Where("id = ?", id).Delete(&t)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}

func (r *RepositoryImpl) ListComments(ctx context.Context, taskID int64) ([]Comment, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	b := query.Select(
		"tc.id", "tc.task_id", "tc.user_id", "tc.content", "tc.created_at",
		"COALESCE(u.name, '') AS user_name",
		"COALESCE(u.avatar, '') AS user_avatar",
	).
		From("task_comments tc").
		LeftJoin("users u ON u.id = tc.user_id").
		Eq("tc.task_id", query.Some(taskID)).
		OrderBy("tc.created_at", "tc.id")

	return query.Collect[Comment](ctx, r.pool, b)
}

func (r *RepositoryImpl) CreateComment(ctx context.Context, c *Comment) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(c).Error
}
