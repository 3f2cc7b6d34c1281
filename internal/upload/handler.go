package upload

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"process-platform/internal/accesslog"
	"process-platform/internal/errors"
	"process-platform/internal/utils"

	"github.com/gin-gonic/gin"
)

// Auditor records upload events. A nil Auditor records nothing.
type Auditor interface {
	Record(ctx context.Context, entry accesslog.Entry)
}

type Handler struct {
	service Service
	auditor Auditor
}

func NewHandler(service Service, auditor Auditor) *Handler {
	return &Handler{service: service, auditor: auditor}
}

type TicketRequest struct {
	DocumentID  *int64 `json:"documentId" binding:"omitempty,gt=0"`
	ProcessID   *int64 `json:"processId"`
	ProjectID   *int64 `json:"projectId"`
	LinkType    string `json:"linkType" binding:"omitempty,oneof=process project"`
	Name        string `json:"name" binding:"max=255"`
	Description string `json:"description" binding:"max=2000"`
	Version     string `json:"version" binding:"max=50"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

func (r TicketRequest) payload() Payload {
	return Payload{
		DocumentID:  r.DocumentID,
		ProcessID:   r.ProcessID,
		ProjectID:   r.ProjectID,
		LinkType:    r.LinkType,
		Name:        r.Name,
		Description: r.Description,
		Version:     r.Version,
		FileName:    r.FileName,
		ContentType: r.ContentType,
		Size:        r.Size,
	}
}

// Ticket handles POST /api/uploads/ticket
func (h *Handler) Ticket(c *gin.Context) {
	userID, err := utils.RequireUserID(c)
	if err != nil {
		c.Error(err)
		return
	}
	var req TicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	ticket, err := h.service.IssueTicket(c.Request.Context(), userID, req.payload())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

type CompleteRequest struct {
	Ticket string `json:"ticket" binding:"required"`
	URL    string `json:"url" binding:"omitempty,url"`
}

// Complete handles POST /api/uploads/complete. The ticket is the credential,
// so this route sits outside the session middleware.
func (h *Handler) Complete(c *gin.Context) {
	var req CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	res, err := h.service.Complete(c.Request.Context(), req.Ticket, req.URL)
	if err != nil {
		c.Error(err)
		return
	}
	h.recorded(c, res)
	c.JSON(http.StatusCreated, res)
}

// Upload handles POST /api/uploads with a multipart "file" and the ticket
// fields as form values.
func (h *Handler) Upload(c *gin.Context) {
	userID, err := utils.RequireUserID(c)
	if err != nil {
		c.Error(err)
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.Error(errors.BadRequest("Missing required fields", err).WithDetails("file"))
		return
	}

	p := Payload{
		LinkType:    c.PostForm("linkType"),
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Version:     c.PostForm("version"),
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	}
	if p.Name == "" {
		p.Name = fh.Filename
	}
	if len(p.Description) > 2000 {
		p.Description = p.Description[:2000]
	}
	for key, dst := range map[string]**int64{
		"documentId": &p.DocumentID,
		"processId":  &p.ProcessID,
		"projectId":  &p.ProjectID,
	} {
		if *dst, err = formInt64(c, key); err != nil {
			c.Error(err)
			return
		}
	}

	file, err := fh.Open()
	if err != nil {
		c.Error(errors.BadRequest("Invalid request body", err))
		return
	}
	defer file.Close()

	res, err := h.service.Upload(c.Request.Context(), userID, p, file)
	if err != nil {
		c.Error(err)
		return
	}
	h.recorded(c, res)
	c.JSON(http.StatusCreated, res)
}

// Diagnostics handles GET /api/uploads
func (h *Handler) Diagnostics(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Diagnostics(c.Request.Context()))
}

func formInt64(c *gin.Context, key string) (*int64, error) {
	raw := strings.TrimSpace(c.PostForm(key))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return nil, errors.BadRequest("Invalid "+key, err)
	}
	return &n, nil
}

func (h *Handler) recorded(c *gin.Context, res *Result) {
	if h.auditor == nil {
		return
	}
	uploader := res.Version.UploadedBy
	h.auditor.Record(c.Request.Context(), accesslog.Entry{
		UserID:     uploader,
		Action:     "upload",
		Resource:   "documents",
		ResourceID: strconv.FormatInt(res.Document.ID, 10),
		Success:    true,
		Details:    "version " + res.Version.Version,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
}
