package auth

import (
	"context"
	"strings"

	"process-platform/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Account is the stored state of a token's user.
type Account struct {
	Role   string
	Active bool
}

// Accounts looks up the user behind a session token.
type Accounts interface {
	Account(ctx context.Context, id int64) (*Account, error)
}

// AuthMiddleWare accepts a bearer token or a ?token= query parameter and puts
// user_id, user_role and token_claims into the context. With accounts set,
// the role comes from the stored user and inactive users are turned away.
func AuthMiddleWare(revoker *Revoker, accounts Accounts) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var token string
		if authHeader := ctx.GetHeader("Authorization"); authHeader != "" {
			token = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		} else {
			token = ctx.Query("token")
		}
		if token == "" {
			ctx.Error(errors.Unauthorized("Authorization is not found", nil))
			ctx.Abort()
			return
		}

		claims, err := VerifyJWT(token, PurposeAccess)
		if err != nil {
			ctx.Error(errors.Unauthorized("Invalid token", err))
			ctx.Abort()
			return
		}

		revoked, err := revoker.IsRevoked(ctx.Request.Context(), claims.ID)
		if err != nil {
			// revocation store down: the signature is still valid, keep serving
			log.Warn().Err(err).Msg("token revocation check failed")
		}
		if revoked {
			ctx.Error(errors.Unauthorized("Token has been revoked", nil))
			ctx.Abort()
			return
		}

		role := claims.Role
		if accounts != nil {
			account, err := accounts.Account(ctx.Request.Context(), claims.UserID)
			switch {
			case errors.IsNotFound(err):
				ctx.Error(errors.Unauthorized("Invalid token", err))
				ctx.Abort()
				return
			case err != nil:
				ctx.Error(errors.FromDB(err, "User"))
				ctx.Abort()
				return
			case !account.Active:
				ctx.Error(errors.Unauthorized("Account is disabled", nil))
				ctx.Abort()
				return
			}
			role = account.Role
		}

		ctx.Set("user_id", claims.UserID)
		ctx.Set("user_role", role)
		ctx.Set("token_claims", claims)
		ctx.Next()
	}
}
