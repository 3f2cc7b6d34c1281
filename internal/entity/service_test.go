package entity

import (
	"context"
	"net/http"
	"testing"

	apiError "process-platform/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context, f ListFilter) ([]Entity, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]Entity), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id int64) (*Entity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Entity), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, e *Entity) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockRepository) Update(ctx context.Context, id int64, in Input) (*Entity, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Entity), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) (*Entity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Entity), args.Error(1)
}

func TestCreate_DefaultsType(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(e *Entity) bool {
		return e.Type == "department" && e.Name == "Finance"
	})).Return(nil)

	e, err := svc.Create(context.Background(), Input{Name: "  Finance "})
	require.NoError(t, err)
	assert.Equal(t, "department", e.Type)
	repo.AssertExpectations(t)
}

func TestUpdate_OwnParent(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo)
	self := int64(3)

	_, err := svc.Update(context.Background(), 3, Input{Name: "Loop", ParentID: &self})

	var appErr *apiError.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}
