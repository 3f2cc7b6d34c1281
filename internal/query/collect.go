package query

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Collect runs b and maps every row onto T by its db tags. The result is never
// nil, so an empty table still serializes as [].
func Collect[T any](ctx context.Context, q Querier, b *Builder) ([]T, error) {
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	items, err := collect[T](ctx, q, sqlStr, args)
	// reads are idempotent, so one more attempt is allowed when the
	// statement never reached the server
	if err != nil && pgconn.SafeToRetry(err) && ctx.Err() == nil {
		items, err = collect[T](ctx, q, sqlStr, args)
	}
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// One runs b and returns its single row, or pgx.ErrNoRows.
func One[T any](ctx context.Context, q Querier, b *Builder) (*T, error) {
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	item, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func collect[T any](ctx context.Context, q Querier, sqlStr string, args []any) ([]T, error) {
	rows, err := q.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
}

// NonNil is the normalization step for slices that were not produced by Collect.
func NonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// Conn is what repositories that write through pgx need. *pgxpool.Pool and
// pgx.Tx satisfy it.
type Conn interface {
	Querier
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}
