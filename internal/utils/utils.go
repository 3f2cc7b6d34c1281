package utils

import (
	"strconv"
	"strings"
	"time"

	"process-platform/internal/errors"
	"process-platform/internal/query"

	"github.com/gin-gonic/gin"
)

// GetLimitOffset reads limit/offset, clamping limit to [1, max].
func GetLimitOffset(c *gin.Context, defaultLimit, maxLimit int) (uint64, uint64) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return uint64(limit), uint64(offset)
}

// ParseID reads a positive identifier from the query string.
func ParseID(c *gin.Context, key string) (int64, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return 0, errors.BadRequest("Missing required fields", nil).WithDetails(key)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.BadRequest("Invalid "+key, err)
	}
	return id, nil
}

// QueryString is present when the key is supplied with a non-empty value.
func QueryString(c *gin.Context, key string) query.Opt {
	return query.String(strings.TrimSpace(c.Query(key)))
}

// QueryInt64 is present when the key is supplied; a malformed value is a 400.
func QueryInt64(c *gin.Context, key string) (query.Opt, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return query.None(), nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return query.None(), errors.BadRequest("Invalid "+key, err)
	}
	return query.Some(n), nil
}

// QueryBool is present whenever the key is supplied, so ?success=false filters.
func QueryBool(c *gin.Context, key string) (query.Opt, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return query.None(), nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return query.None(), errors.BadRequest("Invalid "+key, err)
	}
	return query.Some(b), nil
}

// QueryStrings collects repeated and comma separated values: ?tag=a&tag=b,c.
func QueryStrings(c *gin.Context, key string) query.Opt {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return query.Strings(out)
}

// CurrentUserID returns the authenticated user id set by the auth middleware.
func CurrentUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

// RequireUserID is CurrentUserID or a 401.
func RequireUserID(c *gin.Context) (int64, error) {
	id, ok := CurrentUserID(c)
	if !ok {
		return 0, errors.Unauthorized("Authentication required", nil)
	}
	return id, nil
}

// IDFrom prefers an identifier sent in the body and falls back to ?id=.
func IDFrom(c *gin.Context, bodyID int64) (int64, error) {
	if bodyID > 0 {
		return bodyID, nil
	}
	return ParseID(c, "id")
}

// ParseDate accepts YYYY-MM-DD or a full RFC 3339 timestamp. Empty is no date.
func ParseDate(s, field string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, errors.BadRequest("Invalid fields", nil).WithDetails(field + " (date)")
}
