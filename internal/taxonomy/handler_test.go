package taxonomy

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"process-platform/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupRouter(kind Kind, repo Repository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(NewService(kind, repo))
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.GET("/items", handler.List)
	router.POST("/items", handler.Create)
	router.PUT("/items", handler.Update)
	router.DELETE("/items", handler.Delete)
	router.PATCH("/items/order", handler.Reorder)
	return router
}

func send(router *gin.Engine, method, url, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestCreate_MissingFieldsInsertsNothing(t *testing.T) {
	repo := newFakeRepository()
	router := setupRouter(Categories, repo)

	w := send(router, http.MethodPost, "/items", `{"description":"x"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Missing required fields","details":"name, type"}`, w.Body.String())
	assert.Empty(t, repo.items)
}

func TestCreate_BadColor(t *testing.T) {
	router := setupRouter(Categories, newFakeRepository())

	w := send(router, http.MethodPost, "/items", `{"name":"A","type":"process","color":"blue"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "color (hexcolor)")
}

func TestDelete_ResponseNamesKind(t *testing.T) {
	repo := newFakeRepository(Item{Name: "Review", Type: "process"})
	router := setupRouter(Statuses, repo)

	w := send(router, http.MethodDelete, "/items?id=1", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"deletedStatus":{"id":1,"name":"Review"}}`, w.Body.String())
}

func TestDelete_SystemRow(t *testing.T) {
	repo := newFakeRepository(Item{Name: "General", Type: "process", IsSystem: true})
	router := setupRouter(Categories, repo)

	w := send(router, http.MethodDelete, "/items?id=1", "")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Len(t, repo.items, 1)
}

func TestUpdate_SystemRowUnchanged(t *testing.T) {
	repo := newFakeRepository(Item{Name: "General", Type: "process", Color: "#3B82F6", IsSystem: true})
	router := setupRouter(Categories, repo)

	w := send(router, http.MethodPut, "/items", `{"id":1,"name":"Other","type":"process","color":"#000000"}`)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "General", repo.items[1].Name)
	assert.Equal(t, "#3B82F6", repo.items[1].Color)
}

func TestList_EmptyIsArray(t *testing.T) {
	router := setupRouter(Categories, newFakeRepository())

	w := send(router, http.MethodGet, "/items?type=document", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestReorder_RequiresIDs(t *testing.T) {
	router := setupRouter(Statuses, newFakeRepository())

	w := send(router, http.MethodPatch, "/items/order", `{"type":"process","statusIds":[]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
