package report

import (
	"encoding/json"
	"net/http"

	"process-platform/internal/errors"
	"process-platform/internal/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /api/reports?createdBy=&type=&isPublic=&q=; with ?id= it
// returns one report. isPublic=false filters for private reports.
func (h *Handler) List(c *gin.Context) {
	if _, ok := c.GetQuery("id"); ok {
		id, err := utils.ParseID(c, "id")
		if err != nil {
			c.Error(err)
			return
		}
		rep, err := h.service.Get(c.Request.Context(), id)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, rep)
		return
	}

	createdBy, err := utils.QueryInt64(c, "createdBy")
	if err != nil {
		c.Error(err)
		return
	}
	isPublic, err := utils.QueryBool(c, "isPublic")
	if err != nil {
		c.Error(err)
		return
	}
	limit, offset := utils.GetLimitOffset(c, 50, 500)

	items, err := h.service.List(c.Request.Context(), ListFilter{
		CreatedBy: createdBy,
		Type:      utils.QueryString(c, "type"),
		IsPublic:  isPublic,
		Search:    utils.QueryString(c, "q"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, items)
}

type Request struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name" binding:"max=255"`
	Description string          `json:"description"`
	Type        string          `json:"type" binding:"max=50"`
	Filters     json.RawMessage `json:"filters"`
	Data        json.RawMessage `json:"data"`
	IsPublic    bool            `json:"isPublic"`
	Tags        []string        `json:"tags"`
}

func (r Request) input() Input {
	return Input{
		Name:        r.Name,
		Description: r.Description,
		Type:        r.Type,
		Filters:     r.Filters,
		Data:        r.Data,
		IsPublic:    r.IsPublic,
		Tags:        r.Tags,
	}
}

// Create handles POST /api/reports. The report belongs to the caller.
func (h *Handler) Create(c *gin.Context) {
	userID, err := utils.RequireUserID(c)
	if err != nil {
		c.Error(err)
		return
	}
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}
	rep, err := h.service.Create(c.Request.Context(), req.input(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, rep)
}

// Update handles PUT /api/reports
func (h *Handler) Update(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}
	id, err := utils.IDFrom(c, req.ID)
	if err != nil {
		c.Error(err)
		return
	}
	rep, err := h.service.Update(c.Request.Context(), id, req.input())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// Delete handles DELETE /api/reports?id=
func (h *Handler) Delete(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	rep, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"deletedReport": gin.H{"id": rep.ID, "name": rep.Name},
	})
}
