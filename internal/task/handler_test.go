package task

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"process-platform/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context, f ListFilter) ([]Task, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]Task), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id int64) (*Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Task), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, t *Task) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockRepository) Update(ctx context.Context, id int64, in Input) (*Task, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Task), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) (*Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Task), args.Error(1)
}

func (m *MockRepository) ListComments(ctx context.Context, taskID int64) ([]Comment, error) {
	args := m.Called(ctx, taskID)
	return args.Get(0).([]Comment), args.Error(1)
}

func (m *MockRepository) CreateComment(ctx context.Context, c *Comment) error {
	return m.Called(ctx, c).Error(0)
}

func setupRouter(repo *MockRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(NewService(repo))
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.Use(func(c *gin.Context) {
		c.Set("user_id", int64(2))
		c.Next()
	})
	router.GET("/tasks", handler.List)
	router.POST("/tasks", handler.Create)
	router.DELETE("/tasks", handler.Delete)
	router.GET("/comments", handler.ListComments)
	router.POST("/comments", handler.AddComment)
	return router
}

func post(router *gin.Engine, url, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, url, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestListComments_RequiresTaskID(t *testing.T) {
	repo := new(MockRepository)
	router := setupRouter(repo)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/comments", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Missing required fields","details":"task_id"}`, w.Body.String())
	repo.AssertNotCalled(t, "ListComments", mock.Anything, mock.Anything)
}

func TestListComments(t *testing.T) {
	repo := new(MockRepository)
	router := setupRouter(repo)

	repo.On("ListComments", mock.Anything, int64(8)).Return([]Comment{}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/comments?task_id=8", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestAddComment_AuthorIsCaller(t *testing.T) {
	repo := new(MockRepository)
	router := setupRouter(repo)

	repo.On("FindByID", mock.Anything, int64(8)).Return(&Task{ID: 8}, nil)
	repo.On("CreateComment", mock.Anything, mock.MatchedBy(func(c *Comment) bool {
		return c.TaskID == 8 && c.UserID != nil && *c.UserID == 2 && c.Content == "looks good"
	})).Return(nil)

	w := post(router, "/comments", `{"taskId":8,"content":" looks good "}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	repo.AssertExpectations(t)
}

func TestAddComment_UnknownTask(t *testing.T) {
	repo := new(MockRepository)
	router := setupRouter(repo)

	repo.On("FindByID", mock.Anything, int64(99)).Return(nil, gorm.ErrRecordNotFound)

	w := post(router, "/comments", `{"taskId":99,"content":"hello"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	repo.AssertNotCalled(t, "CreateComment", mock.Anything, mock.Anything)
}

func TestCreate_Defaults(t *testing.T) {
	repo := new(MockRepository)
	router := setupRouter(repo)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(task *Task) bool {
		return task.Priority == "medium" && task.Status == "todo" && task.AssigneeType == "user" &&
			task.CreatedBy != nil && *task.CreatedBy == 2
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*Task).ID = 11
	}).Return(nil)
	repo.On("FindByID", mock.Anything, int64(11)).Return(&Task{ID: 11, TaskNumber: "T-2025-001", Name: "Kickoff"}, nil)

	w := post(router, "/tasks", `{"name":"Kickoff"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"task_number":"T-2025-001"`)
	repo.AssertExpectations(t)
}

func TestCreate_InvalidPriority(t *testing.T) {
	repo := new(MockRepository)
	router := setupRouter(repo)

	w := post(router, "/tasks", `{"name":"Kickoff","priority":"urgent"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "priority (oneof=low medium high)")
}
