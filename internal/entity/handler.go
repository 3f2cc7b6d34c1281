package entity

import (
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

// List handles GET /api/entities?type=&parentId=&managerId=&q=; with ?id= it returns one entity.
func (h *Handler) List(c *gin.Context) {
	if _, ok := c.GetQuery("id"); ok {
		id, err := utils.ParseID(c, "id")
		if err != nil {
			c.Error(err)
			return
		}
		e, err := h.service.Get(c.Request.Context(), id)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, e)
		return
	}

	parentID, err := utils.QueryInt64(c, "parentId")
	if err != nil {
		c.Error(err)
		return
	}
	managerID, err := utils.QueryInt64(c, "managerId")
	if err != nil {
		c.Error(err)
		return
	}
	limit, offset := utils.GetLimitOffset(c, 50, 500)

	items, err := h.service.List(c.Request.Context(), ListFilter{
		Type:      utils.QueryString(c, "type"),
		ParentID:  parentID,
		ManagerID: managerID,
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
	ID          int64  `json:"id"`
	Name        string `json:"name" binding:"required,max=255"`
	Type        string `json:"type" binding:"omitempty,oneof=department team project"`
	Description string `json:"description"`
	ParentID    *int64 `json:"parentId"`
	ManagerID   *int64 `json:"managerId"`
}

func (r Request) input() Input {
	return Input{
		Name:        r.Name,
		Type:        r.Type,
		Description: r.Description,
		ParentID:    r.ParentID,
		ManagerID:   r.ManagerID,
	}
}

// Create handles POST /api/entities
func (h *Handler) Create(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}
	e, err := h.service.Create(c.Request.Context(), req.input())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// Update handles PUT /api/entities
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
	e, err := h.service.Update(c.Request.Context(), id, req.input())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// Delete handles DELETE /api/entities?id=
func (h *Handler) Delete(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	e, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"deletedEntity": gin.H{"id": e.ID, "name": e.Name},
	})
}
