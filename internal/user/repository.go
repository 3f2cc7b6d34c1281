package user

import (
	"context"
	"errors"

	"process-platform/internal/db"
	"process-platform/internal/query"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
)

var ErrPasswordAlreadySet = errors.New("password already set")

// UserRepository defines the interface for user data access
type UserRepository interface {
	List(ctx context.Context, f ListFilter) ([]SafeUser, error)
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	Update(ctx context.Context, id int64, p Profile) (*User, error)
	UpdateRole(ctx context.Context, id int64, role string) (*User, error)
	SetInitialPassword(ctx context.Context, id int64, hash string) error
	Deactivate(ctx context.Context, id int64) (*User, error)
}

// UserRepositoryImpl implements UserRepository
type UserRepositoryImpl struct {
	db     *gorm.DB
	pool   query.Querier
	schema *db.Provisioner
}

// NewRepository creates a new user repository
func NewRepository(gormDB *gorm.DB, pool query.Querier, schema *db.Provisioner) UserRepository {
	return &UserRepositoryImpl{db: gormDB, pool: pool, schema: schema}
}

func (r *UserRepositoryImpl) ensure(ctx context.Context) error {
	return r.schema.Ensure(ctx, db.UsersTable)
}

func (r *UserRepositoryImpl) List(ctx context.Context, f ListFilter) ([]SafeUser, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	b := query.Select(
		"id", "name", "email", "role", "avatar", "is_active",
		"(password_hash IS NOT NULL AND password_hash <> '') AS has_password",
		"created_at", "updated_at",
	).
		From("users").
		Eq("role", f.Role).
		Search(f.Search, "name", "email")
	if !f.IncludeInactive {
		b.Where(sq.Expr("is_active"))
	}
	b.OrderBy("name", "id").Page(f.Limit, f.Offset)

	return query.Collect[SafeUser](ctx, r.pool, b)
}

// Create creates a new user
func (r *UserRepositoryImpl) Create(ctx context.Context, user *User) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByEmail finds a user by its normalized email
func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*User, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	var user User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID finds a user by ID
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id int64) (*User, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	var user User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) Update(ctx context.Context, id int64, p Profile) (*User, error) {
	return r.updates(ctx, id, map[string]any{
		"name":   p.Name,
		"email":  p.Email,
		"role":   p.Role,
		"avatar": p.Avatar,
	})
}

func (r *UserRepositoryImpl) UpdateRole(ctx context.Context, id int64, role string) (*User, error) {
	return r.updates(ctx, id, map[string]any{"role": role})
}

// SetInitialPassword only writes to accounts that have no password yet.
func (r *UserRepositoryImpl) SetInitialPassword(ctx context.Context, id int64, hash string) error {
	if err := r.ensure(ctx); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(&User{}).
		Where("id = ? AND (password_hash IS NULL OR password_hash = '')", id).
		Update("password_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPasswordAlreadySet
	}
	return nil
}

// Deactivate deactivates a user; users are never deleted
func (r *UserRepositoryImpl) Deactivate(ctx context.Context, id int64) (*User, error) {
	return r.updates(ctx, id, map[string]any{"is_active": false})
}

func (r *UserRepositoryImpl) updates(ctx context.Context, id int64, values map[string]any) (*User, error) {
	if err := r.ensure(ctx); err != nil {
		return nil, err
	}
	res := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}
