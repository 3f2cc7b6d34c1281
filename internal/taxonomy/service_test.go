package taxonomy

import (
	"context"
	"net/http"
	"testing"

	apiError "process-platform/internal/errors"
	"process-platform/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeRepository is an in-memory Repository
type fakeRepository struct {
	items   map[int64]*Item
	nextID  int64
	deleted []int64
	updated []int64
	// stale makes reads miss the system flag, as a read that lost a race would
	stale bool
}

func newFakeRepository(items ...Item) *fakeRepository {
	r := &fakeRepository{items: map[int64]*Item{}}
	for i := range items {
		item := items[i]
		r.nextID++
		item.ID = r.nextID
		r.items[item.ID] = &item
	}
	return r
}

func (r *fakeRepository) List(ctx context.Context, kind query.Opt) ([]Item, error) {
	out := []Item{}
	for _, item := range r.items {
		if !kind.Present() || kind.Value() == item.Type {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *fakeRepository) FindByID(ctx context.Context, id int64) (*Item, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *item
	if r.stale {
		cp.IsSystem = false
	}
	return &cp, nil
}

func (r *fakeRepository) Create(ctx context.Context, item *Item) error {
	for _, existing := range r.items {
		if existing.Name == item.Name && existing.Type == item.Type {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextID++
	item.ID = r.nextID
	cp := *item
	r.items[item.ID] = &cp
	return nil
}

func (r *fakeRepository) Update(ctx context.Context, id int64, values map[string]any) (*Item, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if item.IsSystem {
		return nil, ErrSystemItem
	}
	r.updated = append(r.updated, id)
	item.Name = values["name"].(string)
	item.Color = values["color"].(string)
	return r.FindByID(ctx, id)
}

func (r *fakeRepository) Delete(ctx context.Context, id int64) error {
	item, ok := r.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if item.IsSystem {
		return ErrSystemItem
	}
	r.deleted = append(r.deleted, id)
	delete(r.items, id)
	return nil
}

func (r *fakeRepository) Reorder(ctx context.Context, kind string, ids []int64) error {
	for i, id := range ids {
		item, ok := r.items[id]
		if !ok || item.Type != kind {
			return gorm.ErrRecordNotFound
		}
		item.Order = i + 1
	}
	return nil
}

func appStatus(t *testing.T, err error) int {
	t.Helper()
	var appErr *apiError.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Status
}

func TestSystemRowsAreProtected(t *testing.T) {
	repo := newFakeRepository(Item{Name: "Active", Type: "process", IsSystem: true})
	svc := NewService(Statuses, repo)

	_, err := svc.Update(context.Background(), 1, Input{Name: "Renamed", Type: "process"})
	assert.Equal(t, http.StatusForbidden, appStatus(t, err))

	_, err = svc.Delete(context.Background(), 1)
	assert.Equal(t, http.StatusForbidden, appStatus(t, err))

	assert.Empty(t, repo.updated)
	assert.Empty(t, repo.deleted)
	assert.Equal(t, "Active", repo.items[1].Name)
}

func TestSystemRowsAreProtectedByTheWrite(t *testing.T) {
	repo := newFakeRepository(Item{Name: "General", Type: "process", IsSystem: true})
	repo.stale = true
	svc := NewService(Categories, repo)

	_, err := svc.Update(context.Background(), 1, Input{Name: "Renamed", Type: "process"})
	assert.Equal(t, http.StatusForbidden, appStatus(t, err))

	_, err = svc.Delete(context.Background(), 1)
	assert.Equal(t, http.StatusForbidden, appStatus(t, err))

	assert.Empty(t, repo.updated)
	assert.Empty(t, repo.deleted)
	assert.Equal(t, "General", repo.items[1].Name)
}

func TestCreate_DefaultColorPerKind(t *testing.T) {
	cats := NewService(Categories, newFakeRepository())
	c, err := cats.Create(context.Background(), Input{Name: "Finance", Type: "process"})
	require.NoError(t, err)
	assert.Equal(t, "#3B82F6", c.Color)
	assert.False(t, c.IsSystem)

	statuses := NewService(Statuses, newFakeRepository())
	s, err := statuses.Create(context.Background(), Input{Name: "Review", Type: "process"})
	require.NoError(t, err)
	assert.Equal(t, "#10B981", s.Color)
}

func TestCreate_Duplicate(t *testing.T) {
	svc := NewService(Categories, newFakeRepository(Item{Name: "Finance", Type: "process"}))

	_, err := svc.Create(context.Background(), Input{Name: "Finance", Type: "process"})
	assert.Equal(t, http.StatusConflict, appStatus(t, err))
	assert.EqualError(t, err, "Category already exists: "+gorm.ErrDuplicatedKey.Error())
}

func TestUpdate_UnknownID(t *testing.T) {
	svc := NewService(Categories, newFakeRepository())

	_, err := svc.Update(context.Background(), 42, Input{Name: "x", Type: "process"})
	assert.Equal(t, http.StatusNotFound, appStatus(t, err))
}

func TestReorder(t *testing.T) {
	repo := newFakeRepository(
		Item{Name: "A", Type: "project", Order: 1},
		Item{Name: "B", Type: "project", Order: 2},
	)
	svc := NewService(Statuses, repo)

	_, err := svc.Reorder(context.Background(), "project", []int64{2, 1})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.items[2].Order)
	assert.Equal(t, 2, repo.items[1].Order)

	_, err = NewService(Categories, repo).Reorder(context.Background(), "project", []int64{1})
	assert.Equal(t, http.StatusBadRequest, appStatus(t, err))
}
