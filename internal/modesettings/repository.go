package modesettings

import (
	"context"
	"encoding/json"
	"sort"

	"process-platform/internal/db"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	All(ctx context.Context) (Settings, error)
	Upsert(ctx context.Context, values Settings) error
	DeleteAll(ctx context.Context) error
}

type RepositoryImpl struct {
	db     *gorm.DB
	schema *db.Provisioner
}

func NewRepository(gormDB *gorm.DB, schema *db.Provisioner) Repository {
	return &RepositoryImpl{db: gormDB, schema: schema}
}

func (r *RepositoryImpl) All(ctx context.Context) (Settings, error) {
	if err := r.schema.Ensure(ctx, db.ModeSettingsTable); err != nil {
		return nil, err
	}
	var rows []Setting
	if err := r.db.WithContext(ctx).Order("setting_key").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make(Settings, len(rows))
	for _, row := range rows {
		if !json.Valid([]byte(row.Value)) {
			log.Warn().Str("key", row.Key).Msg("skipping mode setting with invalid JSON")
			continue
		}
		out[row.Key] = json.RawMessage(row.Value)
	}
	return out, nil
}

// Upsert writes every key in one statement.
func (r *RepositoryImpl) Upsert(ctx context.Context, values Settings) error {
	if len(values) == 0 {
		return nil
	}
	if err := r.schema.Ensure(ctx, db.ModeSettingsTable); err != nil {
		return err
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([]Setting, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, Setting{Key: k, Value: string(values[k])})
	}

	return r.db.WithContext(ctx).
		Omit("id").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "setting_key"}},
			DoUpdates: clause.Assignments(map[string]any{
				"setting_value": gorm.Expr("EXCLUDED.setting_value"),
				"updated_at":    gorm.Expr("NOW()"),
			}),
		}).
		Create(&rows).Error
}

func (r *RepositoryImpl) DeleteAll(ctx context.Context) error {
	if err := r.schema.Ensure(ctx, db.ModeSettingsTable); err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&Setting{}).Error
}
