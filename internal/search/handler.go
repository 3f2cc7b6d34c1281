package search

import (
	"net/http"
	"strconv"

	"process-platform/internal/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Search handles GET /api/search?q=&type=process,document&category=&limit=
func (h *Handler) Search(c *gin.Context) {
	var types []string
	if opt := utils.QueryStrings(c, "type"); opt.Present() {
		types = opt.Value().([]string)
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit > 500 {
		limit = 500
	}

	results, err := h.service.Search(c.Request.Context(), Query{
		Term:     c.Query("q"),
		Types:    types,
		Category: c.Query("category"),
		Limit:    limit,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// Suggestions handles GET /api/search/suggestions?q=
func (h *Handler) Suggestions(c *gin.Context) {
	out, err := h.service.Suggestions(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}
