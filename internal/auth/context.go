package auth

import (
	"context"

	"github.com/dukerupert/grocer/internal/model"
)

type contextKey struct{}

// WithUser returns a context carrying the signed-in user.
func WithUser(ctx context.Context, u model.User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

func UserFromContext(ctx context.Context) (model.User, bool) {
	u, ok := ctx.Value(contextKey{}).(model.User)
	return u, ok
}

// Username returns the signed-in username or "" when there is none.
func Username(ctx context.Context) string {
	u, ok := UserFromContext(ctx)
	if !ok {
		return ""
	}
	return u.Username
}
