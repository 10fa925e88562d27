package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zevix-io/zevix/internal/infrastructure/auth"
	apperrors "github.com/zevix-io/zevix/internal/shared/errors"
	"github.com/zevix-io/zevix/internal/shared/utils"
)

// Context keys set by the auth middleware.
const (
	ContextKeyAuthEmail = "auth_email"
	ContextKeyAuthPlan  = "auth_plan"
)

// OptionalBearerAuth decodes a bearer token when one is present and
// puts the authenticated email and plan snapshot on the context. A
// missing header passes through untouched (legacy clients identify by
// body email); a present but expired or invalid token is rejected.
func OptionalBearerAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header || token == "" {
			utils.ErrorResponseWithError(c,
				apperrors.NewUnauthorizedError("invalid_token", "authorization header must be a bearer token"))
			c.Abort()
			return
		}

		claims, err := jwtService.Decode(token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				utils.ErrorResponseWithError(c,
					apperrors.NewUnauthorizedError("token_expired", "token has expired"))
			} else {
				utils.ErrorResponseWithError(c,
					apperrors.NewUnauthorizedError("invalid_token", "token is invalid"))
			}
			c.Abort()
			return
		}

		c.Set(ContextKeyAuthEmail, claims.Email)
		c.Set(ContextKeyAuthPlan, claims.Plan)
		c.Next()
	}
}

// AuthenticatedEmail returns the email bound by the bearer token, if any.
func AuthenticatedEmail(c *gin.Context) (string, bool) {
	email := c.GetString(ContextKeyAuthEmail)
	return email, email != ""
}
