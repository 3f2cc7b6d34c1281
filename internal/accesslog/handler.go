package accesslog

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

// List handles GET /api/access-logs?userId=&action=&resource=&success=&limit=&offset=
func (h *Handler) List(c *gin.Context) {
	userID, err := utils.QueryInt64(c, "userId")
	if err != nil {
		c.Error(err)
		return
	}
	success, err := utils.QueryBool(c, "success")
	if err != nil {
		c.Error(err)
		return
	}
	limit, offset := utils.GetLimitOffset(c, 100, 1000)

	logs, err := h.service.List(c.Request.Context(), ListFilter{
		UserID:   userID,
		Action:   utils.QueryString(c, "action"),
		Resource: utils.QueryString(c, "resource"),
		Success:  success,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, logs)
}

type CreateRequest struct {
	UserID     *int64 `json:"userId"`
	UserName   string `json:"userName"`
	Action     string `json:"action" binding:"required"`
	Resource   string `json:"resource" binding:"required"`
	ResourceID string `json:"resourceId"`
	Success    *bool  `json:"success"`
	Details    string `json:"details"`
	IPAddress  string `json:"ipAddress"`
	UserAgent  string `json:"userAgent"`
}

// Create handles POST /api/access-logs. success defaults to true only when
// the field is absent; ip and user agent default to the caller's.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	entry := Entry{
		UserID:     req.UserID,
		UserName:   req.UserName,
		Action:     req.Action,
		Resource:   req.Resource,
		ResourceID: req.ResourceID,
		Success:    true,
		Details:    req.Details,
		IPAddress:  req.IPAddress,
		UserAgent:  req.UserAgent,
	}
	if req.Success != nil {
		entry.Success = *req.Success
	}
	if entry.UserID == nil {
		if id, ok := utils.CurrentUserID(c); ok {
			entry.UserID = &id
		}
	}
	if entry.IPAddress == "" {
		entry.IPAddress = c.ClientIP()
	}
	if entry.UserAgent == "" {
		entry.UserAgent = c.Request.UserAgent()
	}

	row, err := h.service.Create(c.Request.Context(), entry)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, row)
}

// Stats handles GET /api/access-logs/stats
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Patch handles PATCH /api/access-logs?action=stats, the older spelling of Stats.
func (h *Handler) Patch(c *gin.Context) {
	if c.Query("action") != "stats" {
		c.Error(errors.BadRequest("Invalid action", nil))
		return
	}
	h.Stats(c)
}
