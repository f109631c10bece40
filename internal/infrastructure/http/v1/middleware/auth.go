package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"facturador/internal/core/apperror"
	appctx "facturador/internal/core/context"
	"facturador/internal/core/id"
	"facturador/internal/domain/auth"
	"facturador/internal/domain/catalogs/business"
)

// Identifier resolves a bearer token to a user account.
type Identifier interface {
	Identify(ctx context.Context, token string) (*auth.User, error)
}

// BusinessDirectory resolves the business a user belongs to.
type BusinessDirectory interface {
	GetForUser(ctx context.Context, userID id.ID) (*business.Business, string, error)
}

// Auth middleware validates bearer tokens and populates the user context.
func Auth(identifier Identifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "missing or malformed authorization header")
			return
		}

		user, err := identifier.Identify(c.Request.Context(), token)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		ctx := appctx.WithUser(c.Request.Context(), &appctx.UserContext{
			UserID: user.ID.String(),
			Email:  user.Email,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Set("user_id", user.ID.String())

		c.Next()
	}
}

// BusinessScope middleware resolves the caller's business membership and
// requires one. Membership is read per request rather than baked into the
// token, so a business registered a moment ago is visible immediately.
func BusinessScope(directory BusinessDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := appctx.GetUser(c.Request.Context())
		if user == nil {
			abortUnauthorized(c, "authentication required")
			return
		}

		userID, err := id.Parse(user.UserID)
		if err != nil {
			abortUnauthorized(c, "invalid user identity")
			return
		}

		b, role, err := directory.GetForUser(c.Request.Context(), userID)
		if err != nil {
			if apperror.IsNotFound(err) {
				_ = c.Error(apperror.NewForbidden("no business registered for this account"))
				c.Abort()
				return
			}
			_ = c.Error(err)
			c.Abort()
			return
		}

		scoped := *user
		scoped.BusinessID = b.ID.String()
		scoped.Role = role

		ctx := appctx.WithUser(c.Request.Context(), &scoped)
		c.Request = c.Request.WithContext(ctx)
		c.Set("business_id", b.ID.String())

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
