package user

import (
	"context"
	"net/http"
	"strconv"

	"process-platform/auth"
	"process-platform/internal/accesslog"
	"process-platform/internal/errors"
	"process-platform/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Auditor records security relevant events. A nil Auditor records nothing.
type Auditor interface {
	Record(ctx context.Context, entry accesslog.Entry)
}

type Handler struct {
	service Service
	auditor Auditor
	revoker *auth.Revoker
}

func NewHandler(service Service, auditor Auditor, revoker *auth.Revoker) *Handler {
	return &Handler{service: service, auditor: auditor, revoker: revoker}
}

// List handles GET /api/users; with ?id= it returns one user.
func (h *Handler) List(c *gin.Context) {
	if _, ok := c.GetQuery("id"); ok {
		h.Get(c)
		return
	}
	includeInactive, err := utils.QueryBool(c, "includeInactive")
	if err != nil {
		c.Error(err)
		return
	}
	limit, offset := utils.GetLimitOffset(c, 50, 500)

	users, err := h.service.List(c.Request.Context(), ListFilter{
		Role:            utils.QueryString(c, "role"),
		Search:          utils.QueryString(c, "q"),
		IncludeInactive: includeInactive.Present() && includeInactive.Value() == true,
		Limit:           limit,
		Offset:          offset,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	user, err := h.service.GetUserByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user.ToSafeUser())
}

type CreateRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Email    string `json:"email" binding:"required,email"`
	Role     string `json:"role" binding:"omitempty,oneof=admin contributor reader"`
	Avatar   string `json:"avatar" binding:"max=500"`
	Password string `json:"password"`
}

// Create handles POST /api/users
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}
	if req.Role == "" {
		req.Role = "reader"
	}

	user, err := h.service.Create(c.Request.Context(), CreateInput{
		Profile:  Profile{Name: req.Name, Email: req.Email, Role: req.Role, Avatar: req.Avatar},
		Password: req.Password,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, user.ToSafeUser())
}

type UpdateRequest struct {
	ID     int64  `json:"id"`
	Name   string `json:"name" binding:"required,max=255"`
	Email  string `json:"email" binding:"required,email"`
	Role   string `json:"role" binding:"omitempty,oneof=admin contributor reader"`
	Avatar string `json:"avatar" binding:"max=500"`
}

// Update handles PUT /api/users. Every editable field is overwritten.
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
	if req.Role == "" {
		req.Role = "reader"
	}

	user, err := h.service.Update(c.Request.Context(), id, Profile{
		Name: req.Name, Email: req.Email, Role: req.Role, Avatar: req.Avatar,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user.ToSafeUser())
}

// Delete handles DELETE /api/users?id=. The account is deactivated, not removed.
func (h *Handler) Delete(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	actorID, err := utils.RequireUserID(c)
	if err != nil {
		c.Error(err)
		return
	}

	user, err := h.service.Deactivate(c.Request.Context(), id, actorID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"deactivatedUser": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
		},
	})
}

type UpdateRoleRequest struct {
	UserID int64  `json:"userId" binding:"required"`
	Role   string `json:"role" binding:"required,oneof=admin contributor reader"`
}

// UpdateRole handles PUT /api/users/role
func (h *Handler) UpdateRole(c *gin.Context) {
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}
	user, err := h.service.UpdateRole(c.Request.Context(), req.UserID, req.Role)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user.ToSafeUser())
}

type InviteRequest struct {
	Name  string `json:"name" binding:"required,max=255"`
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"omitempty,oneof=admin contributor reader"`
}

// Invite handles POST /api/users/invite
func (h *Handler) Invite(c *gin.Context) {
	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}
	actorID, err := utils.RequireUserID(c)
	if err != nil {
		c.Error(err)
		return
	}
	if req.Role == "" {
		req.Role = "reader"
	}

	inv, err := h.service.Invite(c.Request.Context(), InviteInput{
		Name: req.Name, Email: req.Email, Role: req.Role,
	}, actorID)
	if err != nil {
		c.Error(err)
		return
	}
	h.record(c, accesslog.Entry{
		UserID:     &actorID,
		Action:     "invite",
		Resource:   "users",
		ResourceID: strconv.FormatInt(inv.User.ID, 10),
		Success:    true,
		Details:    inv.User.Email,
	})
	c.JSON(http.StatusCreated, inv)
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	user, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.record(c, accesslog.Entry{
			UserName: NormalizeEmail(req.Email),
			Action:   "login",
			Resource: "auth",
			Success:  false,
			Details:  "invalid credentials",
		})
		c.Error(err)
		return
	}

	token, claims, err := auth.GenerateJWT(user.ID, user.Role)
	if err != nil {
		c.Error(errors.Internal(err))
		return
	}
	h.record(c, accesslog.Entry{
		UserID:     &user.ID,
		UserName:   user.Name,
		Action:     "login",
		Resource:   "auth",
		ResourceID: strconv.FormatInt(user.ID, 10),
		Success:    true,
	})

	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"user":      user.ToSafeUser(),
		"expiresAt": claims.ExpiresAt.Time,
	})
}

// Logout handles POST /api/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	v, ok := c.Get("token_claims")
	claims, _ := v.(*auth.Claims)
	if !ok || claims == nil {
		c.Error(errors.Unauthorized("Authentication required", nil))
		return
	}
	if err := h.revoker.Revoke(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		log.Warn().Err(err).Msg("failed to revoke token")
	}
	h.record(c, accesslog.Entry{
		UserID:   &claims.UserID,
		Action:   "logout",
		Resource: "auth",
		Success:  true,
	})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me handles GET /api/auth/me
func (h *Handler) Me(c *gin.Context) {
	id, err := utils.RequireUserID(c)
	if err != nil {
		c.Error(err)
		return
	}
	user, err := h.service.GetUserByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user.ToSafeUser())
}

type SetupPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SetupPassword handles POST /api/auth/setup-password
func (h *Handler) SetupPassword(c *gin.Context) {
	var req SetupPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}
	user, err := h.service.SetupPassword(c.Request.Context(), req.Token, req.Password)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user.ToSafeUser()})
}

func (h *Handler) record(c *gin.Context, entry accesslog.Entry) {
	if h.auditor == nil {
		return
	}
	entry.IPAddress = c.ClientIP()
	entry.UserAgent = c.Request.UserAgent()
	h.auditor.Record(c.Request.Context(), entry)
}
