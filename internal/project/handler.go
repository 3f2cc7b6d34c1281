package project

import (
	"net/http"
	"strings"

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

// List handles GET /api/projects?status=&projectType=&managerId=&tag=&q=
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

	managerID, err := utils.QueryInt64(c, "managerId")
	if err != nil {
		c.Error(err)
		return
	}
	limit, offset := utils.GetLimitOffset(c, 50, 500)

	items, err := h.service.List(c.Request.Context(), ListFilter{
		Status:      utils.QueryString(c, "status"),
		ProjectType: utils.QueryString(c, "projectType"),
		ManagerID:   managerID,
		Tags:        utils.QueryStrings(c, "tag"),
		Search:      utils.QueryString(c, "q"),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, items)
}

type Request struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name" binding:"required,max=255"`
	Description string          `json:"description"`
	Status      string          `json:"status" binding:"max=50"`
	ProjectType string          `json:"projectType" binding:"max=100"`
	StartDate   string          `json:"startDate"`
	EndDate     string          `json:"endDate"`
	Budget      *float64        `json:"budget"`
	ManagerID   *int64          `json:"managerId"`
	Tags        []string        `json:"tags"`
	EntityIDs   []int64         `json:"entityIds"`
	MemberIDs   []int64         `json:"memberIds"`
	Members     []MemberRequest `json:"members" binding:"omitempty,dive"`
}

// MemberRequest adds a member with an explicit role.
type MemberRequest struct {
	UserID int64  `json:"userId" binding:"required,gt=0"`
	Role   string `json:"role" binding:"max=50"`
}

func (r Request) input() (Input, error) {
	start, err := utils.ParseDate(r.StartDate, "startDate")
	if err != nil {
		return Input{}, err
	}
	end, err := utils.ParseDate(r.EndDate, "endDate")
	if err != nil {
		return Input{}, err
	}
	memberIDs := r.MemberIDs
	roles := map[int64]string{}
	for _, m := range r.Members {
		memberIDs = append(memberIDs, m.UserID)
		if role := strings.TrimSpace(m.Role); role != "" {
			roles[m.UserID] = role
		}
	}
	return Input{
		Name:        r.Name,
		Description: r.Description,
		Status:      r.Status,
		ProjectType: r.ProjectType,
		StartDate:   start,
		EndDate:     end,
		Budget:      r.Budget,
		ManagerID:   r.ManagerID,
		Tags:        r.Tags,
		EntityIDs:   r.EntityIDs,
		MemberIDs:   memberIDs,
		MemberRoles: roles,
	}, nil
}

// Create handles POST /api/projects
func (h *Handler) Create(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}
	in, err := req.input()
	if err != nil {
		c.Error(err)
		return
	}
	userID, err := utils.RequireUserID(c)
	if err != nil {
		c.Error(err)
		return
	}
	p, err := h.service.Create(c.Request.Context(), in, userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Update handles PUT /api/projects
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
	in, err := req.input()
	if err != nil {
		c.Error(err)
		return
	}
	p, err := h.service.Update(c.Request.Context(), id, in)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type ManagerRequest struct {
	ProjectID int64  `json:"projectId" binding:"required"`
	ManagerID *int64 `json:"managerId"`
}

// SetManager handles PUT /api/projects/manager. A null managerId clears it.
func (h *Handler) SetManager(c *gin.Context) {
	var req ManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}
	p, err := h.service.SetManager(c.Request.Context(), req.ProjectID, req.ManagerID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /api/projects?id=
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
		"deletedProject": gin.H{"id": p.ID, "name": p.Name},
	})
}
