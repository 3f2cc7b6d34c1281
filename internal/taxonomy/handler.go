package taxonomy

import (
	"net/http"

	"process-platform/internal/errors"
	"process-platform/internal/utils"

	"github.com/gin-gonic/gin"
)

// Handler serves one vocabulary; main mounts one per Kind.
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// List handles GET ?type=, or ?id= for a single row.
func (h *Handler) List(c *gin.Context) {
	if _, ok := c.GetQuery("id"); ok {
		id, err := utils.ParseID(c, "id")
		if err != nil {
			c.Error(err)
			return
		}
		item, err := h.service.Get(c.Request.Context(), id)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, item)
		return
	}

	items, err := h.service.List(c.Request.Context(), utils.QueryString(c, "type"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, items)
}

type Request struct {
	ID          int64  `json:"id"`
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
	Type        string `json:"type" binding:"required,max=50"`
	Color       string `json:"color" binding:"omitempty,hexcolor,len=7"`
	Order       *int   `json:"order" binding:"omitempty,min=0"`
}

func (r Request) input() Input {
	return Input{
		Name:        r.Name,
		Description: r.Description,
		Type:        r.Type,
		Color:       r.Color,
		Order:       r.Order,
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}
	item, err := h.service.Create(c.Request.Context(), req.input())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

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
	item, err := h.service.Update(c.Request.Context(), id, req.input())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	item, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	body := gin.H{"success": true}
	body["deleted"+h.service.Kind().Key] = gin.H{"id": item.ID, "name": item.Name}
	c.JSON(http.StatusOK, body)
}

type ReorderRequest struct {
	Type      string  `json:"type" binding:"required"`
	StatusIDs []int64 `json:"statusIds" binding:"required,min=1,dive,gt=0"`
}

// Reorder handles PATCH /api/statuses/order
func (h *Handler) Reorder(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}
	items, err := h.service.Reorder(c.Request.Context(), req.Type, req.StatusIDs)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, items)
}
