package modesettings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	apiError "process-platform/internal/errors"
	"process-platform/redis"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	rows map[string]string
	down bool
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{rows: map[string]string{}}
}

var errDown = errors.New("connection refused")

func (r *fakeRepository) All(ctx context.Context) (Settings, error) {
	if r.down {
		return nil, errDown
	}
	out := Settings{}
	for k, v := range r.rows {
		out[k] = json.RawMessage(v)
	}
	return out, nil
}

func (r *fakeRepository) Upsert(ctx context.Context, values Settings) error {
	if r.down {
		return errDown
	}
	for k, v := range values {
		r.rows[k] = string(v)
	}
	return nil
}

func (r *fakeRepository) DeleteAll(ctx context.Context) error {
	if r.down {
		return errDown
	}
	r.rows = map[string]string{}
	return nil
}

func newCache(t *testing.T) (*redis.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return redis.NewCache(client), mr
}

func decode(t *testing.T, s Settings) map[string]any {
	t.Helper()
	raw, err := json.Marshal(s)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestGet_DefaultsWhenEmpty(t *testing.T) {
	svc := NewService(newFakeRepository(), nil)

	res, err := svc.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SourceDatabase, res.Source)
	assert.False(t, res.Stale)
	assert.Equal(t, decode(t, Defaults()), decode(t, res.Settings))
	assert.Len(t, res.Settings, 6)
}

func TestSet_MergesPartialUpdates(t *testing.T) {
	svc := NewService(newFakeRepository(), nil)
	ctx := context.Background()

	_, err := svc.Set(ctx, Settings{"a": json.RawMessage(`1`)})
	require.NoError(t, err)
	_, err = svc.Set(ctx, Settings{"b": json.RawMessage(`2`), "defaultTheme": json.RawMessage(`"dark"`)})
	require.NoError(t, err)

	res, err := svc.Get(ctx)
	require.NoError(t, err)
	got := decode(t, res.Settings)
	assert.Equal(t, float64(1), got["a"])
	assert.Equal(t, float64(2), got["b"])
	assert.Equal(t, "dark", got["defaultTheme"])
	assert.Equal(t, true, got["autoSwitch"])
}

func TestReset_RestoresDefaults(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.Set(ctx, Settings{"a": json.RawMessage(`1`)})
	require.NoError(t, err)
	_, err = svc.Reset(ctx)
	require.NoError(t, err)

	res, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, repo.rows)
	assert.Equal(t, decode(t, Defaults()), decode(t, res.Settings))
}

func TestSet_RejectsInvalidValue(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)

	_, err := svc.Set(context.Background(), Settings{"a": json.RawMessage(`{bad`)})

	var appErr *apiError.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Empty(t, repo.rows)
}

func TestGet_FallsBackToLastKnownGood(t *testing.T) {
	repo := newFakeRepository()
	cache, mr := newCache(t)
	svc := NewService(repo, cache)
	ctx := context.Background()

	_, err := svc.Set(ctx, Settings{"defaultTheme": json.RawMessage(`"dark"`)})
	require.NoError(t, err)
	assert.True(t, mr.Exists(LastKnownGoodKey))

	repo.down = true
	res, err := svc.Get(ctx)
	require.NoError(t, err)

	assert.True(t, res.Stale)
	assert.Equal(t, SourceCache, res.Source)
	assert.Equal(t, "dark", decode(t, res.Settings)["defaultTheme"])
}

func TestGet_FailsWithoutStoreOrCache(t *testing.T) {
	repo := newFakeRepository()
	repo.down = true
	cache, _ := newCache(t)

	for _, svc := range []Service{NewService(repo, nil), NewService(repo, cache)} {
		_, err := svc.Get(context.Background())

		var appErr *apiError.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	}
}

func TestSet_StoreFailureIsNotMasked(t *testing.T) {
	repo := newFakeRepository()
	cache, _ := newCache(t)
	svc := NewService(repo, cache)
	ctx := context.Background()

	_, err := svc.Get(ctx)
	require.NoError(t, err)

	repo.down = true
	_, err = svc.Set(ctx, Settings{"a": json.RawMessage(`1`)})
	assert.Error(t, err)
}
