package middlewares

// gin context keys
const (
	CtxUserID    = "auth.userID"
	CtxRequestID = "request_id"
)

type ctxKey string

// KeyUserID is the typed key used on the request's context.Context, so
// repositories and services never touch gin state.
const KeyUserID ctxKey = "user_id"
