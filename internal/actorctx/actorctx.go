package actorctx

import (
	"context"

	"github.com/arabian-ops/login-project/internal/http/middlewares"
)

// WithUserID threads the authenticated user id into the call chain as a
// typed context value instead of mutating shared request state.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, middlewares.KeyUserID, userID)
}

func UserIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(middlewares.KeyUserID).(string)

	return v, ok && v != ""
}
