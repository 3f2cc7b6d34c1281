package middleware

import (
	"errors"

	apiError "process-platform/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ErrorHandler is the boundary for every handler: whatever ends up in c.Errors
// is classified and written as {"error": ..., "details": ...}.
func ErrorHandler() gin.HandlerFunc {
	apiError.RegisterJSONFieldNames()

	return func(c *gin.Context) {
		c.Next() // Execute the handler first

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var apiErr *apiError.AppError
		if !errors.As(err, &apiErr) {
			// a raw error nobody classified
			apiErr = apiError.Internal(err)
		}

		if apiErr.Status >= 500 {
			log.Error().Err(apiErr.Err).
				Str("method", c.Request.Method).
				Str("path", c.FullPath()).
				Msg(apiErr.Message)
		} else {
			log.Info().Err(apiErr.Err).
				Int("status", apiErr.Status).
				Str("path", c.FullPath()).
				Msg(apiErr.Message)
		}

		if c.Writer.Written() {
			return
		}
		c.AbortWithStatusJSON(apiErr.Status, apiErr)
	}
}
