package modesettings

import (
	"net/http"

	"process-platform/internal/errors"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func respond(c *gin.Context, res *Result) {
	body := gin.H{
		"success":  true,
		"settings": res.Settings,
		"source":   res.Source,
	}
	if res.Stale {
		body["stale"] = true
	}
	c.JSON(http.StatusOK, body)
}

// Get handles GET /api/mode-settings
func (h *Handler) Get(c *gin.Context) {
	res, err := h.service.Get(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, res)
}

// Set handles POST /api/mode-settings. The body is a partial settings object;
// keys it does not mention keep their stored value.
func (h *Handler) Set(c *gin.Context) {
	var partial Settings
	if err := c.ShouldBindJSON(&partial); err != nil || partial == nil {
		c.Error(errors.BadRequest("Invalid request body", err))
		return
	}
	res, err := h.service.Set(c.Request.Context(), partial)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, res)
}

// Reset handles DELETE /api/mode-settings
func (h *Handler) Reset(c *gin.Context) {
	res, err := h.service.Reset(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, res)
}
