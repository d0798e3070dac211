package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/agenda-api/internal/model"
	"github.com/jwalitptl/agenda-api/pkg/auth"
	apperrors "github.com/jwalitptl/agenda-api/pkg/errors"
	"github.com/jwalitptl/agenda-api/pkg/httputil"
	"github.com/jwalitptl/agenda-api/pkg/slotgrid"
)

const ContextSession = "session"

// AuthMiddleware turns the bearer token issued by the auth backend into an
// explicit model.Session on the request context.
type AuthMiddleware struct {
	verifier auth.TokenVerifier
}

func NewAuthMiddleware(verifier auth.TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Authenticate verifies the token and stores the session.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.Abort(c, apperrors.Unauthorized(errors.New("missing authorization header")))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httputil.Abort(c, apperrors.Unauthorized(errors.New("invalid authorization format")))
			return
		}

		session, err := m.verifier.VerifyToken(parts[1])
		if err != nil {
			httputil.Abort(c, apperrors.Unauthorized(err))
			return
		}

		c.Set(ContextSession, session)
		if l := zerolog.Ctx(c.Request.Context()); l.GetLevel() != zerolog.Disabled {
			l.UpdateContext(func(ctx zerolog.Context) zerolog.Context {
				return ctx.Str("subject", session.Subject).Str("role", session.Role.String())
			})
		}
		c.Next()
	}
}

// RequireRole rejects sessions whose role is not listed.
func RequireRole(roles ...slotgrid.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := GetSession(c)
		if !ok {
			httputil.Abort(c, apperrors.Unauthorized(errors.New("no session")))
			return
		}
		for _, r := range roles {
			if session.Role == r {
				c.Next()
				return
			}
		}
		httputil.Abort(c, apperrors.Forbidden("permission denied"))
	}
}

// GetSession returns the session stored by Authenticate.
func GetSession(c *gin.Context) (model.Session, bool) {
	v, ok := c.Get(ContextSession)
	if !ok {
		return model.Session{}, false
	}
	session, ok := v.(model.Session)
	return session, ok
}
