package report

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	apiError "process-platform/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context, f ListFilter) ([]Report, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Report), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id int64) (*Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Report), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, in Input, createdBy int64) (*Report, error) {
	args := m.Called(ctx, in, createdBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Report), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id int64, in Input) (*Report, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Report), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) (*Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Report), args.Error(1)
}

func appError(t *testing.T, err error) *apiError.AppError {
	t.Helper()
	var appErr *apiError.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr
}

func TestCreate_RequiresNameAndType(t *testing.T) {
	svc := NewService(new(MockRepository))

	_, err := svc.Create(context.Background(), Input{Name: "  "}, 1)

	appErr := appError(t, err)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "name, type", appErr.Details)
}

func TestCreate_Defaults(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(in Input) bool {
		return in.Name == "Q3 audit" &&
			string(in.Filters) == "{}" &&
			string(in.Data) == `{"rows":3}` &&
			assert.ObjectsAreEqual([]string{"audit"}, in.Tags)
	}), int64(4)).Return(&Report{ID: 1, Name: "Q3 audit"}, nil)

	rep, err := svc.Create(context.Background(), Input{
		Name: " Q3 audit ",
		Type: "process",
		Data: json.RawMessage(`{"rows":3}`),
		Tags: []string{"audit", " audit", ""},
	}, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rep.ID)
	repo.AssertExpectations(t)
}

func TestCreate_FiltersMustBeAnObject(t *testing.T) {
	svc := NewService(new(MockRepository))

	_, err := svc.Create(context.Background(), Input{Name: "r", Type: "process", Filters: json.RawMessage(`[1,2]`)}, 1)

	appErr := appError(t, err)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "filters (object)", appErr.Details)
}

func TestUpdate_UnknownReport(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)

	repo.On("Update", mock.Anything, int64(9), mock.Anything).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Update(context.Background(), 9, Input{Name: "r", Type: "project"})

	appErr := appError(t, err)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "Report not found", appErr.Message)
}
