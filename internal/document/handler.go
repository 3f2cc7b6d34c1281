package document

import (
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"process-platform/internal/blob"
	"process-platform/internal/errors"
	"process-platform/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service Service
	fetcher *blob.Fetcher
}

func NewHandler(service Service, fetcher *blob.Fetcher) *Handler {
	return &Handler{service: service, fetcher: fetcher}
}

// List handles GET /api/documents?processId=&projectId=&linkType=&createdBy=&q=;
// with ?id= it returns the document and its versions.
func (h *Handler) List(c *gin.Context) {
	if _, ok := c.GetQuery("id"); ok {
		id, err := utils.ParseID(c, "id")
		if err != nil {
			c.Error(err)
			return
		}
		detail, err := h.service.Get(c.Request.Context(), id)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, detail)
		return
	}

	processID, err := utils.QueryInt64(c, "processId")
	if err != nil {
		c.Error(err)
		return
	}
	projectID, err := utils.QueryInt64(c, "projectId")
	if err != nil {
		c.Error(err)
		return
	}
	createdBy, err := utils.QueryInt64(c, "createdBy")
	if err != nil {
		c.Error(err)
		return
	}
	limit, offset := utils.GetLimitOffset(c, 50, 500)

	docs, err := h.service.List(c.Request.Context(), ListFilter{
		ProcessID: processID,
		ProjectID: projectID,
		LinkType:  utils.QueryString(c, "linkType"),
		CreatedBy: createdBy,
		Search:    utils.QueryString(c, "q"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

type UpdateRequest struct {
	ID          int64  `json:"id"`
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
	ProcessID   *int64 `json:"processId"`
	ProjectID   *int64 `json:"projectId"`
	LinkType    string `json:"linkType" binding:"omitempty,oneof=process project"`
}

// Update handles PUT /api/documents. Metadata only; files go through uploads.
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}
	id, err := utils.IDFrom(c, req.ID)
	if err != nil {
		c.Error(err)
		return
	}
	doc, err := h.service.Update(c.Request.Context(), id, Input{
		Name:        req.Name,
		Description: req.Description,
		ProcessID:   req.ProcessID,
		ProjectID:   req.ProjectID,
		LinkType:    req.LinkType,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// Delete handles DELETE /api/documents?id=
func (h *Handler) Delete(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	doc, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"deletedDocument": gin.H{"id": doc.ID, "name": doc.Name},
	})
}

// Download handles GET /api/documents/download?id=&versionId=. The stored file
// is streamed back as an attachment.
func (h *Handler) Download(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	versionID, err := utils.QueryInt64(c, "versionId")
	if err != nil {
		c.Error(err)
		return
	}
	var vid int64
	if versionID.Present() {
		vid = versionID.Value().(int64)
	}

	doc, version, err := h.service.Version(c.Request.Context(), id, vid)
	if err != nil {
		c.Error(err)
		return
	}

	dl, err := h.fetcher.Open(c.Request.Context(), version.URL)
	if err != nil {
		c.Error(errors.BadGateway("Failed to fetch file", err))
		return
	}
	defer dl.Body.Close()

	contentType := version.ContentType
	if contentType == "" {
		contentType = dl.ContentType
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": FileName(doc.Name, version),
	}))
	c.Header("Content-Type", contentType)
	if dl.ContentLength >= 0 {
		c.Header("Content-Length", strconv.FormatInt(dl.ContentLength, 10))
	}
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, dl.Body); err != nil {
		log.Warn().Err(err).Int64("document_id", doc.ID).Msg("download interrupted")
	}
}

// FileName builds the download name from the document name, the version label
// and the extension of the stored object.
func FileName(name string, v *Version) string {
	base := strings.TrimSpace(name)
	if base == "" {
		base = "document"
	}
	ext := path.Ext(strings.SplitN(v.URL, "?", 2)[0])
	if ext != "" && strings.HasSuffix(strings.ToLower(base), strings.ToLower(ext)) {
		base = base[:len(base)-len(ext)]
	}
	if v.Version != "" {
		base += "_" + v.Version
	}
	return base + ext
}
