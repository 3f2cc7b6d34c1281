package errors

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type createRequest struct {
	Name  string `json:"name" binding:"required"`
	Type  string `json:"type" binding:"required"`
	Color string `json:"color" binding:"omitempty,len=7"`
}

func bindBody(t *testing.T, body string) error {
	t.Helper()
	gin.SetMode(gin.TestMode)
	RegisterJSONFieldNames()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	var req createRequest
	return c.ShouldBindJSON(&req)
}

func TestNewValidationError_NamesMissingFields(t *testing.T) {
	err := bindBody(t, `{"color":"#fff"}`)
	require.Error(t, err)

	appErr := NewValidationError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "Missing required fields", appErr.Message)
	assert.Equal(t, "name, type", appErr.Details)
}

func TestNewValidationError_InvalidField(t *testing.T) {
	err := bindBody(t, `{"name":"a","type":"process","color":"#fff"}`)
	require.Error(t, err)

	appErr := NewValidationError(err)
	assert.Equal(t, "Invalid fields", appErr.Message)
	assert.Equal(t, "color (len=7)", appErr.Details)
}

func TestNewValidationError_MalformedJSON(t *testing.T) {
	err := bindBody(t, `{"name":`)
	require.Error(t, err)

	appErr := NewValidationError(err)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "Invalid request body", appErr.Message)
}

func TestFromDB(t *testing.T) {
	assert.Nil(t, FromDB(nil, "Category"))

	notFound := FromDB(gorm.ErrRecordNotFound, "Category").(*AppError)
	assert.Equal(t, http.StatusNotFound, notFound.Status)
	assert.Equal(t, "Category not found", notFound.Message)

	assert.Equal(t, http.StatusNotFound, FromDB(pgx.ErrNoRows, "User").(*AppError).Status)

	dup := FromDB(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), "Category").(*AppError)
	assert.Equal(t, http.StatusConflict, dup.Status)
	assert.Equal(t, "Category already exists", dup.Message)

	assert.Equal(t, http.StatusConflict, FromDB(gorm.ErrDuplicatedKey, "User").(*AppError).Status)

	internal := FromDB(fmt.Errorf("connection refused"), "User").(*AppError)
	assert.Equal(t, http.StatusInternalServerError, internal.Status)
	assert.Equal(t, "Internal server error", internal.Message)

	forbidden := Forbidden("nope", nil)
	assert.Same(t, forbidden, FromDB(forbidden, "User"))
}

func TestConfigurationHidesDetails(t *testing.T) {
	err := Configuration("BLOB_ACCESS_KEY")
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.NotContains(t, err.Message, "BLOB_ACCESS_KEY")
	assert.Contains(t, err.Error(), "BLOB_ACCESS_KEY")
}
