package process

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

// List handles GET /api/processes?status=&category=&createdBy=&entityId=&tag=&q=
func (h *Handler) List(c *gin.Context) {
	if _, ok := c.GetQuery("id"); ok {
		id, err := utils.ParseID(c, "id")
		if err != nil {
			c.Error(err)
			return
		}
		p, err := h.service.Get(c.Request.Context(), id)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, p)
		return
	}

	createdBy, err := utils.QueryInt64(c, "createdBy")
	if err != nil {
		c.Error(err)
		return
	}
	entityID, err := utils.QueryInt64(c, "entityId")
	if err != nil {
		c.Error(err)
		return
	}
	limit, offset := utils.GetLimitOffset(c, 50, 500)

	items, err := h.service.List(c.Request.Context(), ListFilter{
		Status:    utils.QueryString(c, "status"),
		Category:  utils.QueryString(c, "category"),
		CreatedBy: createdBy,
		EntityID:  entityID,
		Tags:      utils.QueryStrings(c, "tag"),
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
	ID          int64    `json:"id"`
	Name        string   `json:"name" binding:"required,max=255"`
	Description string   `json:"description"`
	Category    string   `json:"category" binding:"max=100"`
	Status      string   `json:"status" binding:"max=50"`
	Tags        []string `json:"tags"`
	EntityIDs   []int64  `json:"entityIds"`
}

func (r Request) input() Input {
	return Input{
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Status:      r.Status,
		Tags:        r.Tags,
		EntityIDs:   r.EntityIDs,
	}
}

// Create handles POST /api/processes
func (h *Handler) Create(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}
	userID, err := utils.RequireUserID(c)
	if err != nil {
		c.Error(err)
		return
	}
	p, err := h.service.Create(c.Request.Context(), req.input(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Update handles PUT /api/processes
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
	p, err := h.service.Update(c.Request.Context(), id, req.input())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /api/processes?id=
func (h *Handler) Delete(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	p, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"deletedProcess": gin.H{"id": p.ID, "name": p.Name},
	})
}
