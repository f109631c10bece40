// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// UserContext contains authenticated session information.
// BusinessID is resolved from the user-business link after authentication;
// it is empty until the user has registered a business.
type UserContext struct {
	UserID     string
	Email      string
	BusinessID string
	Role       string
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// GetBusinessID returns the caller's business ID or empty string.
func GetBusinessID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.BusinessID
	}
	return ""
}

// IsAdmin reports whether the caller holds the ADMIN role on its business.
func IsAdmin(ctx context.Context) bool {
	u := GetUser(ctx)
	return u != nil && u.Role == "ADMIN"
}
