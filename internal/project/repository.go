package project

import (
	"context"

	"process-platform/internal/db"
	"process-platform/internal/query"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

type Repository interface {
	List(ctx context.Context, f ListFilter) ([]Project, error)
	FindByID(ctx context.Context, id int64) (*Project, error)
	Create(ctx context.Context, in Input, createdBy int64) (*Project, error)
	Update(ctx context.Context, id int64, in Input) (*Project, error)
	SetManager(ctx context.Context, id int64, managerID *int64) (*Project, error)
	Delete(ctx context.Context, id int64) (*Project, error)
}

// TxConn is a Conn that can also open transactions.
type TxConn interface {
	query.Conn
	Begin(ctx context.Context) (pgx.Tx, error)
}

type RepositoryImpl struct {
	conn   TxConn
	schema *db.Provisioner
}

func NewRepository(conn TxConn, schema *db.Provisioner) Repository {
	return &RepositoryImpl{conn: conn, schema: schema}
}

func (r *RepositoryImpl) ensure(ctx context.Context) error {
	return r.schema.Ensure(ctx, db.ProjectsTable, db.ProjectEntitiesTable, db.ProjectMembersTable)
}

func listQuery() *query.Builder {
	return query.Select(
		"p.id", "p.name", "p.description", "p.status", "p.project_type",
		"p.start_date", "p.end_date", "p.budget::float8 AS budget", "p.manager_id", "p.created_by",
		"p.tags", "p.created_at", "p.updated_at",
		"COALESCE(m.name, '') AS manager_name",
		"COALESCE(c.name, '') AS created_by_name",
		"ARRAY(SELECT pe.entity_id FROM project_entities pe WHERE pe.project_id = p.id ORDER BY pe.entity_id) AS entity_ids",
		"ARRAY(SELECT pm.user_id FROM project_members pm WHERE pm.project_id = p.id ORDER BY pm.user_id) AS member_ids",
		"(SELECT COUNT(*) FROM project_entities pe WHERE pe.project_id = p.id) AS entity_count",
		"(SELECT COUNT(*) FROM project_members pm WHERE pm.project_id = p.id) AS member_count",
		`COALESCE((
			SELECT json_agg(json_build_object(
				'id', u.id, 'name', u.name, 'email', u.email, 'avatar', u.avatar,
				'role', pm.role, 'joined_at', pm.joined_at
			) ORDER BY u.name, u.id)
			FROM project_members pm JOIN users u ON u.id = pm.user_id
			WHERE pm.project_id = p.id
		), '[]'::json) AS members`,
	).
		From("projects p").
		LeftJoin("users m ON m.id = p.manager_id").
		LeftJoin("users c ON c.id = p.created_by")
}

func (r *RepositoryImpl) List(ctx context.Context, f ListFilter) ([]Project, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	b := listQuery().
		Eq("p.status", f.Status).
		Eq("p.project_type", f.ProjectType).
		Eq("p.manager_id", f.ManagerID).
		Filter("p.tags", query.OpContains, f.Tags).
		Search(f.Search, "p.name", "p.description").
		OrderBy("p.created_at DESC", "p.id DESC").
		Page(f.Limit, f.Offset)

	return query.Collect[Project](ctx, r.conn, b)
}

func (r *RepositoryImpl) FindByID(ctx context.Context, id int64) (*Project, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	return query.One[Project](ctx, r.conn, listQuery().Eq("p.id", query.Some(id)))
}

// Create inserts the project and its links in one transaction.
func (r *RepositoryImpl) Create(ctx context.Context, in Input, createdBy int64) (*Project, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	var id int64
	err := pgx.BeginFunc(ctx, r.conn, func(tx pgx.Tx) error {
		sqlStr, args, err := query.Psql.Insert("projects").
			Columns("name", "description", "status", "project_type", "start_date", "end_date",
				"budget", "manager_id", "tags", "created_by").
			Values(in.Name, in.Description, in.Status, in.ProjectType, in.StartDate, in.EndDate,
				in.Budget, in.ManagerID, in.Tags, createdBy).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, sqlStr, args...).Scan(&id); err != nil {
			return err
		}
		return replaceLinks(ctx, tx, id, in)
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *RepositoryImpl) Update(ctx context.Context, id int64, in Input) (*Project, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	err := pgx.BeginFunc(ctx, r.conn, func(tx pgx.Tx) error {
		sqlStr, args, err := query.Psql.Update("projects").
			SetMap(map[string]any{
				"name":         in.Name,
				"description":  in.Description,
				"status":       in.Status,
				"project_type": in.ProjectType,
				"start_date":   in.StartDate,
				"end_date":     in.EndDate,
				"budget":       in.Budget,
				"manager_id":   in.ManagerID,
				"tags":         in.Tags,
				"updated_at":   sq.Expr("NOW()"),
			}).
			Where(sq.Eq{"id": id}).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, sqlStr, args...).Scan(&id); err != nil {
			return err
		}
		return replaceLinks(ctx, tx, id, in)
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *RepositoryImpl) SetManager(ctx context.Context, id int64, managerID *int64) (*Project, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	err := r.conn.QueryRow(ctx,
		"UPDATE projects SET manager_id = $1, updated_at = NOW() WHERE id = $2 RETURNING id",
		managerID, id).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *RepositoryImpl) Delete(ctx context.Context, id int64) (*Project, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	var p Project
	err := r.conn.QueryRow(ctx, "DELETE FROM projects WHERE id = $1 RETURNING id, name", id).Scan(&p.ID, &p.Name)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// replaceLinks makes the links match in. Members that stay keep their role
// and join date unless in names a new role.
func replaceLinks(ctx context.Context, tx pgx.Tx, id int64, in Input) error {
	if _, err := tx.Exec(ctx, "DELETE FROM project_entities WHERE project_id = $1", id); err != nil {
		return err
	}
	if len(in.EntityIDs) > 0 {
		_, err := tx.Exec(ctx,
			"INSERT INTO project_entities (project_id, entity_id) SELECT $1, unnest($2::bigint[]) ON CONFLICT DO NOTHING",
			id, in.EntityIDs)
		if err != nil {
			return err
		}
	}

	memberIDs := query.NonNil(in.MemberIDs)
	if _, err := tx.Exec(ctx,
		"DELETE FROM project_members WHERE project_id = $1 AND NOT (user_id = ANY($2::bigint[]))",
		id, memberIDs); err != nil {
		return err
	}
	if len(memberIDs) == 0 {
		return nil
	}
	roles := make([]string, len(memberIDs))
	for i, userID := range memberIDs {
		roles[i] = in.MemberRoles[userID]
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO project_members (project_id, user_id, role)
		SELECT $1, m.user_id, COALESCE(NULLIF(m.role, ''), $4)
		FROM unnest($2::bigint[], $3::text[]) AS m(user_id, role)
		ON CONFLICT (project_id, user_id) DO NOTHING`,
		id, memberIDs, roles, DefaultMemberRole); err != nil {
		return err
	}
	_, err := tx.Exec(ctx,
		`UPDATE project_members pm SET role = m.role
		FROM unnest($2::bigint[], $3::text[]) AS m(user_id, role)
		WHERE pm.project_id = $1 AND pm.user_id = m.user_id AND m.role <> ''`,
		id, memberIDs, roles)
	return err
}
