package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatql-server/internal/auth"
	"github.com/vovakirdan/chatql-server/internal/proto"
)

// ContextKeyMember is the gin context key for the acting member's name.
const ContextKeyMember = "member"

// ErrorResponse is a GraphQL-shaped error body for requests rejected before execution.
type ErrorResponse struct {
	Errors []proto.Error `json:"errors"`
}

func errorResponse(code, msg string) ErrorResponse {
	return ErrorResponse{Errors: []proto.Error{{
		Message:    msg,
		Extensions: map[string]interface{}{"code": code},
	}}}
}

// IdentityMiddleware attaches the member named by a bearer token to the
// request. Requests without an Authorization header pass through untouched,
// as do all requests when identity tokens are disabled.
func IdentityMiddleware(jwtConfig *auth.JWTConfig, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !jwtConfig.Enabled() {
			c.Next()
			return
		}

		token, err := auth.BearerToken(header)
		if err != nil {
			logger.Debug().Msg("invalid authorization header format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse("unauthorized", "invalid authorization header format"))
			return
		}

		claims, err := auth.ValidateToken(jwtConfig, token)
		if err != nil {
			logger.Debug().Err(err).Msg("invalid token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse("unauthorized", "invalid token"))
			return
		}

		c.Set(ContextKeyMember, claims.Member)
		c.Request = c.Request.WithContext(auth.WithMember(c.Request.Context(), claims.Member))
		c.Next()
	}
}
