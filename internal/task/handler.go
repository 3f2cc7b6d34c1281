package task

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

// List handles GET /api/tasks?projectId=&status=&assigneeId=&priority=&q=
func (h *Handler) List(c *gin.Context) {
	if _, ok := c.GetQuery("id"); ok {
		id, err := utils.ParseID(c, "id")
		if err != nil {
			c.Error(err)
			return
		}
		t, err := h.service.Get(c.Request.Context(), id)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, t)
		return
	}

	projectID, err := utils.QueryInt64(c, "projectId")
	if err != nil {
		c.Error(err)
		return
	}
	assigneeID, err := utils.QueryInt64(c, "assigneeId")
	if err != nil {
		c.Error(err)
		return
	}
	limit, offset := utils.GetLimitOffset(c, 50, 500)

	items, err := h.service.List(c.Request.Context(), ListFilter{
		ProjectID:  projectID,
		Status:     utils.QueryString(c, "status"),
		AssigneeID: assigneeID,
		Priority:   utils.QueryString(c, "priority"),
		Search:     utils.QueryString(c, "q"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, items)
}

type Request struct {
	ID           int64  `json:"id"`
	ProjectID    *int64 `json:"projectId"`
	Name         string `json:"name" binding:"required,max=255"`
	Description  string `json:"description"`
	AssigneeID   *int64 `json:"assigneeId"`
	AssigneeType string `json:"assigneeType" binding:"omitempty,oneof=user entity"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	Priority     string `json:"priority" binding:"omitempty,oneof=low medium high"`
	Status       string `json:"status" binding:"omitempty,oneof=todo in_progress done"`
	Remarks      string `json:"remarks"`
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
	return Input{
		ProjectID:    r.ProjectID,
		Name:         r.Name,
		Description:  r.Description,
		AssigneeID:   r.AssigneeID,
		AssigneeType: r.AssigneeType,
		StartDate:    start,
		EndDate:      end,
		Priority:     r.Priority,
		Status:       r.Status,
		Remarks:      r.Remarks,
	}, nil
}

// Create handles POST /api/tasks
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
	t, err := h.service.Create(c.Request.Context(), in, userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// Update handles PUT /api/tasks
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
	t, err := h.service.Update(c.Request.Context(), id, in)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// Delete handles DELETE /api/tasks?id=
func (h *Handler) Delete(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	t, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"deletedTask": gin.H{"id": t.ID, "name": t.Name, "task_number": t.TaskNumber},
	})
}

// ListComments handles GET /api/comments?task_id=
func (h *Handler) ListComments(c *gin.Context) {
	taskID, err := utils.ParseID(c, "task_id")
	if err != nil {
		c.Error(err)
		return
	}
	comments, err := h.service.ListComments(c.Request.Context(), taskID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

type CommentRequest struct {
	TaskID  int64  `json:"taskId" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// AddComment handles POST /api/comments
func (h *Handler) AddComment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}
	userID, err := utils.RequireUserID(c)
	if err != nil {
		c.Error(err)
		return
	}
	comment, err := h.service.AddComment(c.Request.Context(), req.TaskID, userID, req.Content)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}
