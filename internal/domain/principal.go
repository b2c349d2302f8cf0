package domain

import (
	"context"
	"strings"
)

type accessTokenKey struct{}

// ContextWithAccessToken attaches the caller's backend access token so that
// row level security applies to repository calls made with ctx.
func ContextWithAccessToken(ctx context.Context, token string) context.Context {
	if strings.TrimSpace(token) == "" {
		return ctx
	}
	return context.WithValue(ctx, accessTokenKey{}, token)
}

// AccessTokenFromContext returns the access token stored in ctx.
func AccessTokenFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(accessTokenKey{}).(string); ok {
		return v
	}
	return ""
}
