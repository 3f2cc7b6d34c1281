// Package query builds parameterized list statements from optional filters.
//
// Column and table names passed to a Builder are code constants. Values only
// ever travel as bound $n parameters.
package query

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// Psql builds statements with $n placeholders.
var Psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Op is the comparison applied by a filter.
type Op string

const (
	OpEq       Op = "="
	OpILike    Op = "ILIKE"
	OpOverlap  Op = "&&"
	OpContains Op = "@>"
	OpAny      Op = "ANY"
	OpGTE      Op = ">="
	OpLTE      Op = "<="
)

// Opt is a filter value that may be absent. Presence is tracked separately
// from the value so that false, 0 and "" can still be filtered on.
type Opt struct {
	value   any
	present bool
}

func Some(v any) Opt { return Opt{value: v, present: true} }

func None() Opt { return Opt{} }

// String treats the empty string as absent.
func String(s string) Opt {
	if s == "" {
		return None()
	}
	return Some(s)
}

// Strings treats an empty slice as absent.
func Strings(s []string) Opt {
	if len(s) == 0 {
		return None()
	}
	return Some(s)
}

func Ptr[T any](p *T) Opt {
	if p == nil {
		return None()
	}
	return Some(*p)
}

func (o Opt) Present() bool { return o.present }

func (o Opt) Value() any { return o.value }

type join struct {
	clause string
	args   []any
}

// Builder accumulates a SELECT. Predicates are emitted in the order they were
// added, AND-joined, and LIMIT/OFFSET always come last.
type Builder struct {
	columns []string
	from    string
	joins   []join
	preds   []sq.Sqlizer
	groupBy []string
	orderBy []string
	paged   bool
	limit   uint64
	offset  uint64
}

func Select(columns ...string) *Builder {
	return &Builder{columns: columns}
}

func (b *Builder) From(from string) *Builder {
	b.from = from
	return b
}

func (b *Builder) LeftJoin(clause string, args ...any) *Builder {
	b.joins = append(b.joins, join{clause: clause, args: args})
	return b
}

// Where adds an unconditional predicate.
func (b *Builder) Where(pred sq.Sqlizer) *Builder {
	b.preds = append(b.preds, pred)
	return b
}

func (b *Builder) Eq(column string, v Opt) *Builder {
	return b.Filter(column, OpEq, v)
}

// Filter adds "column op $n" when v is present and does nothing otherwise.
func (b *Builder) Filter(column string, op Op, v Opt) *Builder {
	if !v.present {
		return b
	}
	b.preds = append(b.preds, predicate(column, op, v.value))
	return b
}

// Search adds one OR-group matching v case-insensitively against columns.
func (b *Builder) Search(v Opt, columns ...string) *Builder {
	if !v.present || len(columns) == 0 {
		return b
	}
	or := make(sq.Or, 0, len(columns))
	for _, col := range columns {
		or = append(or, predicate(col, OpILike, v.value))
	}
	b.preds = append(b.preds, or)
	return b
}

func (b *Builder) GroupBy(columns ...string) *Builder {
	b.groupBy = append(b.groupBy, columns...)
	return b
}

// OrderBy sets the ordering. Callers finish with a unique column so pages are stable.
func (b *Builder) OrderBy(order ...string) *Builder {
	b.orderBy = append(b.orderBy, order...)
	return b
}

func (b *Builder) Page(limit, offset uint64) *Builder {
	b.paged = true
	b.limit = limit
	b.offset = offset
	return b
}

// Filters returns how many predicates will be emitted.
func (b *Builder) Filters() int {
	return len(b.preds)
}

func (b *Builder) ToSql() (string, []any, error) {
	if b.from == "" {
		return "", nil, fmt.Errorf("query: select without FROM")
	}
	sel := Psql.Select(b.columns...).From(b.from)
	for _, j := range b.joins {
		sel = sel.LeftJoin(j.clause, j.args...)
	}
	for _, p := range b.preds {
		sel = sel.Where(p)
	}
	if len(b.groupBy) > 0 {
		sel = sel.GroupBy(b.groupBy...)
	}
	if len(b.orderBy) > 0 {
		sel = sel.OrderBy(b.orderBy...)
	}
	if b.paged {
		sel = sel.Suffix("LIMIT ? OFFSET ?", b.limit, b.offset)
	}
	return sel.ToSql()
}

func predicate(column string, op Op, v any) sq.Sqlizer {
	switch op {
	case OpILike:
		return sq.Expr(column+" ILIKE ?", fmt.Sprintf("%%%v%%", v))
	case OpAny:
		return sq.Expr("? = ANY("+column+")", v)
	default:
		return sq.Expr(column+" "+string(op)+" ?", v)
	}
}
