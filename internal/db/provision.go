package db

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

// Execer is the part of *pgxpool.Pool the provisioner needs.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Column is a column added after the table's first release.
type Column struct {
	Name       string
	Definition string
}

// Table describes how to bring one table into existence. Create must be a
// CREATE TABLE IF NOT EXISTS statement and Indexes CREATE INDEX IF NOT EXISTS
// statements; nothing here may alter an existing compatible schema.
type Table struct {
	Name    string
	Create  string
	Columns []Column
	Indexes []string
	Depends []Table
}

// Provisioner creates missing tables and columns on first use. Repositories
// call Ensure before their statements, so it runs on every request and may run
// concurrently for the same table.
type Provisioner struct {
	db      Execer
	ensured sync.Map
}

func NewProvisioner(db Execer) *Provisioner {
	return &Provisioner{db: db}
}

// Ensure provisions tables, dependencies first. Once a table has been ensured
// successfully later calls for it return immediately.
func (p *Provisioner) Ensure(ctx context.Context, tables ...Table) error {
	for _, t := range tables {
		if _, ok := p.ensured.Load(t.Name); ok {
			continue
		}
		if err := p.Ensure(ctx, t.Depends...); err != nil {
			return err
		}
		if err := p.ensure(ctx, t); err != nil {
			return fmt.Errorf("provision %s: %w", t.Name, err)
		}
		if _, loaded := p.ensured.LoadOrStore(t.Name, struct{}{}); !loaded {
			log.Debug().Str("table", t.Name).Msg("table ensured")
		}
	}
	return nil
}

func (p *Provisioner) ensure(ctx context.Context, t Table) error {
	statements := make([]string, 0, 1+len(t.Columns)+len(t.Indexes))
	statements = append(statements, t.Create)
	for _, c := range t.Columns {
		statements = append(statements,
			fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s", t.Name, c.Name, c.Definition))
	}
	statements = append(statements, t.Indexes...)

	for _, stmt := range statements {
		if _, err := p.db.Exec(ctx, stmt); err != nil && !IsAlreadyExists(err) {
			return err
		}
	}
	return nil
}

// IsAlreadyExists matches the errors Postgres raises when two sessions race
// on the same IF NOT EXISTS statement.
func IsAlreadyExists(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "42P07", // duplicate_table
		"42701", // duplicate_column
		"42710", // duplicate_object
		"23505": // unique_violation on pg_type_typname_nsp_index
		return true
	}
	return false
}
