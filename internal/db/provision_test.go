package db

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecer emulates a catalog: the first CREATE of a table wins, later
// ones fail the way a racing session does unless the statement is guarded.
type fakeExecer struct {
	mu         sync.Mutex
	statements []string
	errFor     map[string]error
	created    map[string]int
}

func newFakeExecer() *fakeExecer {
	return &fakeExecer{errFor: map[string]error{}, created: map[string]int{}}
}

func (f *fakeExecer) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statements = append(f.statements, sql)
	for prefix, err := range f.errFor {
		if strings.HasPrefix(sql, prefix) {
			return pgconn.CommandTag{}, err
		}
	}
	if strings.HasPrefix(sql, "CREATE TABLE IF NOT EXISTS") {
		name := strings.Fields(sql)[5]
		f.created[name]++
		if f.created[name] > 1 {
			// concurrent creator lost the pg_type race
			return pgconn.CommandTag{}, &pgconn.PgError{Code: "23505"}
		}
	}
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func (f *fakeExecer) count(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.statements {
		if strings.HasPrefix(s, prefix) {
			n++
		}
	}
	return n
}

var widgets = Table{
	Name:   "widgets",
	Create: "CREATE TABLE IF NOT EXISTS widgets (id BIGSERIAL PRIMARY KEY)",
	Columns: []Column{
		{Name: "tags", Definition: "TEXT[] NOT NULL DEFAULT '{}'"},
	},
	Indexes: []string{"CREATE INDEX IF NOT EXISTS widgets_tags_idx ON widgets USING GIN (tags)"},
}

func TestEnsure_StatementsInOrder(t *testing.T) {
	exec := newFakeExecer()
	p := NewProvisioner(exec)

	require.NoError(t, p.Ensure(context.Background(), widgets))

	assert.Equal(t, []string{
		"CREATE TABLE IF NOT EXISTS widgets (id BIGSERIAL PRIMARY KEY)",
		"ALTER TABLE widgets ADD COLUMN IF NOT EXISTS tags TEXT[] NOT NULL DEFAULT '{}'",
		"CREATE INDEX IF NOT EXISTS widgets_tags_idx ON widgets USING GIN (tags)",
	}, exec.statements)
}

func TestEnsure_MemoizesSuccess(t *testing.T) {
	exec := newFakeExecer()
	p := NewProvisioner(exec)

	require.NoError(t, p.Ensure(context.Background(), widgets))
	require.NoError(t, p.Ensure(context.Background(), widgets))

	assert.Equal(t, 1, exec.count("CREATE TABLE"))
}

func TestEnsure_ConcurrentCallsDoNotFail(t *testing.T) {
	exec := newFakeExecer()
	// two provisioners model two server processes sharing a database
	first, second := NewProvisioner(exec), NewProvisioner(exec)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, p := range []*Provisioner{first, second} {
		wg.Add(1)
		go func(p *Provisioner) {
			defer wg.Done()
			errs <- p.Ensure(context.Background(), widgets)
		}(p)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 2, exec.count("CREATE TABLE"))
	assert.Equal(t, 2, exec.created["widgets"])
}

func TestEnsure_IgnoresDuplicateObjectCodes(t *testing.T) {
	for _, code := range []string{"42P07", "42701", "42710", "23505"} {
		exec := newFakeExecer()
		exec.errFor["ALTER TABLE"] = &pgconn.PgError{Code: code}
		p := NewProvisioner(exec)

		assert.NoError(t, p.Ensure(context.Background(), widgets), code)
	}
}

func TestEnsure_FailsAndRetriesLater(t *testing.T) {
	exec := newFakeExecer()
	exec.errFor["ALTER TABLE"] = &pgconn.PgError{Code: "42501", Message: "permission denied"}
	p := NewProvisioner(exec)

	err := p.Ensure(context.Background(), widgets)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provision widgets")

	delete(exec.errFor, "ALTER TABLE")
	require.NoError(t, p.Ensure(context.Background(), widgets))
	assert.Equal(t, 2, exec.count("ALTER TABLE"))
}

func TestEnsure_DependenciesFirst(t *testing.T) {
	exec := newFakeExecer()
	p := NewProvisioner(exec)

	require.NoError(t, p.Ensure(context.Background(), TaskCommentsTable))

	var order []string
	for _, s := range exec.statements {
		if strings.HasPrefix(s, "CREATE TABLE IF NOT EXISTS") {
			order = append(order, strings.Fields(s)[5])
		}
	}
	assert.Equal(t, []string{"users", "projects", "tasks", "task_comments"}, order)
}

func TestIsAlreadyExists(t *testing.T) {
	assert.True(t, IsAlreadyExists(&pgconn.PgError{Code: "42P07"}))
	assert.False(t, IsAlreadyExists(&pgconn.PgError{Code: "42601"}))
	assert.False(t, IsAlreadyExists(errors.New("boom")))
}
